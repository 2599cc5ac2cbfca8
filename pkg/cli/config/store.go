package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"github.com/secmon-lab/hovertodo/pkg/repository/file"
	"github.com/secmon-lab/hovertodo/pkg/repository/firestore"
	"github.com/secmon-lab/hovertodo/pkg/repository/memory"
	"github.com/secmon-lab/hovertodo/pkg/repository/sqlite"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Supported store backends
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Store holds CLI flags for the task store backend
type Store struct {
	backend          string
	dir              string
	sqlitePath       string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for store configuration
func (s *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Task store backend [memory|file|sqlite|firestore]",
			Value:       BackendFile,
			Category:    "Store",
			Sources:     cli.EnvVars("HOVERTODO_STORE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "store-dir",
			Usage:       "Directory for the file backend",
			Value:       "data",
			Category:    "Store",
			Sources:     cli.EnvVars("HOVERTODO_STORE_DIR"),
			Destination: &s.dir,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Database file for the sqlite backend",
			Value:       "hovertodo.db",
			Category:    "Store",
			Sources:     cli.EnvVars("HOVERTODO_SQLITE_PATH"),
			Destination: &s.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Store",
			Sources:     cli.EnvVars("HOVERTODO_FIRESTORE_PROJECT_ID"),
			Destination: &s.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Store",
			Sources:     cli.EnvVars("HOVERTODO_FIRESTORE_DATABASE_ID"),
			Destination: &s.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore collection",
			Category:    "Store",
			Sources:     cli.EnvVars("HOVERTODO_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &s.collectionPrefix,
		},
	}
}

// LogAttrs returns log attributes for the store configuration
func (s *Store) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("backend", s.backend),
		slog.String("dir", s.dir),
		slog.String("sqlite_path", s.sqlitePath),
		slog.String("firestore_project_id", s.projectID),
	}
}

// Configure opens the configured backend. The caller is responsible for
// calling Close() on the returned store.
func (s *Store) Configure(ctx context.Context) (interfaces.KVStore, error) {
	logger := logging.From(ctx)

	switch s.backend {
	case BackendMemory:
		logger.Warn("Using in-memory task store, tasks are lost on exit")
		return memory.New(), nil

	case BackendFile:
		store, err := file.New(s.dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize file store", goerr.V("dir", s.dir))
		}
		logger.Info("Using file task store", "dir", s.dir)
		return store, nil

	case BackendSQLite:
		store, err := sqlite.New(ctx, s.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite store", goerr.V("path", s.sqlitePath))
		}
		logger.Info("Using sqlite task store", "path", s.sqlitePath)
		return store, nil

	case BackendFirestore:
		if s.projectID == "" {
			return nil, goerr.Wrap(ErrMissingCredentials, "firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if s.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(s.collectionPrefix))
		}
		store, err := firestore.New(ctx, s.projectID, s.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore store")
		}
		logger.Info("Using Firestore task store",
			"project_id", s.projectID,
			"database_id", s.databaseID,
		)
		return store, nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid store backend", goerr.V(BackendKey, s.backend))
	}
}
