// Package staging buffers transaction writes for backends that hold an
// exclusive lock instead of having native transactions.
package staging

import (
	"context"
	"slices"

	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
)

type ReadFunc func(ctx context.Context, key string) ([]byte, error)
type WriteFunc func(ctx context.Context, key string, value []byte) error

// Tx collects Puts in order and serves Gets from them before falling back to
// the backend
type Tx struct {
	read   ReadFunc
	keys   []string
	values map[string][]byte
}

var _ interfaces.KVTx = &Tx{}

func New(read ReadFunc) *Tx {
	return &Tx{
		read:   read,
		values: make(map[string][]byte),
	}
}

func (t *Tx) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := t.values[key]; ok {
		return slices.Clone(v), nil
	}
	return t.read(ctx, key)
}

func (t *Tx) Put(ctx context.Context, key string, value []byte) error {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = slices.Clone(value)
	return nil
}

// Commit writes the staged values in the order they were first put
func (t *Tx) Commit(ctx context.Context, write WriteFunc) error {
	for _, key := range t.keys {
		if err := write(ctx, key, t.values[key]); err != nil {
			return err
		}
	}
	return nil
}
