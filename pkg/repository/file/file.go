package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/gofrs/flock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"github.com/secmon-lab/hovertodo/pkg/repository/internal/staging"
	"github.com/secmon-lab/hovertodo/pkg/utils/safe"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrInvalidKey is returned for keys that cannot be used as file names
var ErrInvalidKey = errors.New("invalid key")

// File stores each key as <dir>/<key>.json. Writes are atomic (temp file and
// rename) and serialized across processes by a lock file in dir. Transactions
// hold the same lock.
type File struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
}

var _ interfaces.KVStore = &File{}

func New(dir string) (*File, error) {
	if dir == "" {
		return nil, goerr.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create store directory", goerr.V("dir", dir))
	}

	return &File{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

func (f *File) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", goerr.Wrap(ErrInvalidKey, "key must match "+keyPattern.String(), goerr.V("key", key))
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.RLock(); err != nil {
		return nil, goerr.Wrap(err, "failed to acquire read lock", goerr.V("dir", f.dir))
	}
	defer func() { _ = f.lock.Unlock() }()

	return f.read(key)
}

func (f *File) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(); err != nil {
		return goerr.Wrap(err, "failed to acquire write lock", goerr.V("dir", f.dir))
	}
	defer func() { _ = f.lock.Unlock() }()

	return f.write(ctx, key, value)
}

// Transaction holds the exclusive lock across fn and the staged writes, so a
// read-modify-write cannot interleave with another process
func (f *File) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.KVTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(); err != nil {
		return goerr.Wrap(err, "failed to acquire write lock", goerr.V("dir", f.dir))
	}
	defer func() { _ = f.lock.Unlock() }()

	tx := staging.New(func(ctx context.Context, key string) ([]byte, error) {
		return f.read(key)
	})
	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx, f.write)
}

// read and write expect the caller to hold the lock

func (f *File) read(key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - file name is restricted by keyPattern
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "value not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to read value", goerr.V("key", key), goerr.V("path", p))
	}

	return data, nil
}

func (f *File) write(ctx context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V("key", key))
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		safe.Close(ctx, tmp)
		return goerr.Wrap(err, "failed to write value", goerr.V("key", key))
	}
	if err := tmp.Sync(); err != nil {
		safe.Close(ctx, tmp)
		return goerr.Wrap(err, "failed to sync value", goerr.V("key", key))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp file", goerr.V("key", key))
	}

	if err := os.Rename(tmpName, p); err != nil {
		return goerr.Wrap(err, "failed to replace value", goerr.V("key", key), goerr.V("path", p))
	}

	return nil
}

func (f *File) Close() error {
	return f.lock.Close()
}
