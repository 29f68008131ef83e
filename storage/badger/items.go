package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) *ItemRepository {
	return &ItemRepository{backend: backend}
}

// Close releases repository resources. The backend owns the database handle,
// so there is nothing to release here.
func (r *ItemRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutItems stores items keyed by their content IDs. Identical natural keys
// hash to identical IDs, so refetching a known article replaces its record.
func (r *ItemRepository) PutItems(ctx context.Context, items ...*core.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeItemKey(item.ID())
			if err := tx.Set(key, storage.MarshalItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetItem retrieves a single item by ID.
func (r *ItemRepository) GetItem(ctx context.Context, id core.ID) (*core.Item, error) {
	var result *core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readItem(tx, makeItemKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetItems retrieves multiple items by their IDs, skipping missing ones.
func (r *ItemRepository) GetItems(ctx context.Context, ids ...core.ID) ([]*core.Item, error) {
	var result []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := readItem(tx, makeItemKey(id))
			if err != nil {
				return err
			}
			if item != nil {
				result = append(result, item)
			}
		}
		return nil
	}, false)
	return result, err
}

// AllItems retrieves every stored item.
func (r *ItemRepository) AllItems(ctx context.Context) ([]*core.Item, error) {
	var results []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = itemKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.Item
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalItem(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, item)
		}
		return nil
	}, false)
	return results, err
}

// DeleteFetchedBefore removes items whose FetchedAt is before the cutoff.
func (r *ItemRepository) DeleteFetchedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = itemKeyPrefix()
		iter := tx.NewIterator(opts)

		// Collect stale keys first; deleting while iterating the same
		// transaction invalidates the iterator.
		var (
			stale   [][]byte
			iterErr error
		)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.Item
			iterErr = iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalItem(val)
				return err
			})
			if iterErr != nil {
				break
			}
			if item.FetchedAt.Before(cutoff) {
				stale = append(stale, iter.Item().KeyCopy(nil))
			}
		}
		iter.Close()
		if iterErr != nil {
			return iterErr
		}

		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		removed = len(stale)
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// readItem reads an item from the transaction.
// Returns nil, nil if the key does not exist.
func readItem(tx *badger.Txn, key []byte) (*core.Item, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.Item
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalItem(val)
		return unmarshalErr
	})
	return record, err
}
