package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"github.com/secmon-lab/hovertodo/pkg/repository/internal/staging"
)

// Memory is an in-process KVStore used for development and tests
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ interfaces.KVStore = &Memory{}

func New() *Memory {
	return &Memory{
		values: make(map[string][]byte),
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(key)
}

func (m *Memory) get(key string) ([]byte, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "value not found", goerr.V("key", key))
	}
	return slices.Clone(v), nil
}

func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = slices.Clone(value)
	return nil
}

func (m *Memory) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.KVTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := staging.New(func(ctx context.Context, key string) ([]byte, error) {
		return m.get(key)
	})
	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx, func(ctx context.Context, key string, value []byte) error {
		m.values[key] = value
		return nil
	})
}

func (m *Memory) Close() error {
	return nil
}
