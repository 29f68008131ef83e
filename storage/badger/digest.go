package badger

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
)

// DigestRepository implements storage.DigestRepository for BadgerDB.
type DigestRepository struct {
	backend *Backend
}

var _ storage.DigestRepository = (*DigestRepository)(nil)

// NewDigestRepository creates a new DigestRepository.
func NewDigestRepository(backend *Backend) *DigestRepository {
	return &DigestRepository{backend: backend}
}

// Close releases repository resources. The backend owns the database handle,
// so there is nothing to release here.
func (r *DigestRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DigestRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveDigest persists a digest under its date key. A digest already stored
// for the date is merged with the incoming one inside the same transaction,
// so concurrent same-day runs cannot clobber each other's sections.
func (r *DigestRepository) SaveDigest(ctx context.Context, digest *core.Digest) (*core.Digest, error) {
	if err := validDate(digest.Date); err != nil {
		return nil, err
	}

	var merged *core.Digest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDigestKey(digest.Date)
		stored, err := readDigest(tx, key)
		if err != nil {
			return err
		}

		merged = storage.MergeDigests(stored, digest)
		merged.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalDigest(merged)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// GetDigest retrieves the digest stored for a date key.
func (r *DigestRepository) GetDigest(ctx context.Context, date string) (*core.Digest, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}

	var result *core.Digest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDigest(tx, makeDigestKey(date))
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

// ListDigests retrieves up to limit digests, newest date first.
func (r *DigestRepository) ListDigests(ctx context.Context, limit int) ([]*core.Digest, error) {
	var results []*core.Digest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = digestKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the largest possible date key so the reverse iterator
		// starts at the newest stored digest.
		seekKey := append(digestKeyPrefix(), 0xff)

		for iter.Seek(seekKey); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			var digest *core.Digest
			err := iter.Item().Value(func(val []byte) error {
				var err error
				digest, err = storage.UnmarshalDigest(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, digest)
		}
		return nil
	}, false)
	return results, err
}

// DeleteBefore removes digests dated strictly before the cutoff date key.
func (r *DigestRepository) DeleteBefore(ctx context.Context, cutoff string) (int, error) {
	if err := validDate(cutoff); err != nil {
		return 0, err
	}

	removed := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		boundary := makeDigestKey(cutoff)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = digestKeyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		// Collect stale keys first; deleting while iterating the same
		// transaction invalidates the iterator.
		var stale [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			if bytes.Compare(key, boundary) >= 0 {
				break
			}
			stale = append(stale, key)
		}
		iter.Close()

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

// validDate checks a digest date key against the YYYY-MM-DD form.
func validDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: %q", storage.ErrInvalidDate, date)
	}
	return nil
}

// readDigest reads a digest from the transaction.
// Returns nil, nil if the key does not exist.
func readDigest(tx *badger.Txn, key []byte) (*core.Digest, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var digest *core.Digest
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		digest, unmarshalErr = storage.UnmarshalDigest(val)
		return unmarshalErr
	})
	return digest, err
}
