package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hovertodo/pkg/cli/config"
)

func TestStore_Configure(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.NewStoreForTest(backend, filepath.Join(dir, "data"), filepath.Join(dir, "kv.db"))

			store, err := cfg.Configure(context.Background())
			gt.NoError(t, err).Required()
			defer func() { gt.NoError(t, store.Close()) }()

			gt.NoError(t, store.Put(context.Background(), "todos", []byte("[]"))).Required()
			got, err := store.Get(context.Background(), "todos")
			gt.NoError(t, err).Required()
			gt.Value(t, string(got)).Equal("[]")
		})
	}

	t.Run("firestore requires project", func(t *testing.T) {
		cfg := config.NewStoreForTest(config.BackendFirestore, "", "")
		_, err := cfg.Configure(context.Background())
		gt.Error(t, err).Is(config.ErrMissingCredentials)
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		cfg := config.NewStoreForTest("redis", "", "")
		_, err := cfg.Configure(context.Background())
		gt.Error(t, err).Is(config.ErrUnknownBackend)
	})
}
