package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type kvDocument struct {
	Value     []byte    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.KVStore = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) kvCollection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_kv"
	}
	return "kv"
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	docSnap, err := f.client.Collection(f.kvCollection()).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "value not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get value", goerr.V("key", key))
	}

	var doc kvDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode value", goerr.V("key", key))
	}

	return doc.Value, nil
}

func (f *Firestore) Put(ctx context.Context, key string, value []byte) error {
	doc := &kvDocument{
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	if _, err := f.client.Collection(f.kvCollection()).Doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put value", goerr.V("key", key))
	}

	return nil
}

// Transaction delegates to Firestore's optimistic transactions. fn may run more
// than once on contention, so it must not keep side effects outside tx.
func (f *Firestore) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.KVTx) error) error {
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{tx: tx, store: f})
	})
	if err != nil {
		return goerr.Wrap(err, "firestore transaction failed", goerr.V("collection", f.kvCollection()))
	}
	return nil
}

// firestoreTx requires every Get to happen before the first Put, which is a
// Firestore transaction rule
type firestoreTx struct {
	tx    *firestore.Transaction
	store *Firestore
}

func (t *firestoreTx) Get(ctx context.Context, key string) ([]byte, error) {
	docSnap, err := t.tx.Get(t.store.client.Collection(t.store.kvCollection()).Doc(key))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "value not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get value in transaction", goerr.V("key", key))
	}

	var doc kvDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode value", goerr.V("key", key))
	}

	return doc.Value, nil
}

func (t *firestoreTx) Put(ctx context.Context, key string, value []byte) error {
	doc := &kvDocument{
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	if err := t.tx.Set(t.store.client.Collection(t.store.kvCollection()).Doc(key), doc); err != nil {
		return goerr.Wrap(err, "failed to put value in transaction", goerr.V("key", key))
	}

	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
