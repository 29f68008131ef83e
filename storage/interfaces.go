package storage

import (
	"context"
	"time"

	"github.com/poiesic/curator/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DigestRepository provides operations for date-keyed digest documents.
type DigestRepository interface {
	Repository
	// SaveDigest persists a digest under its date key.
	// If a digest is already stored for that date, the two documents are
	// combined with MergeDigests instead of overwritten; the merged document
	// is what gets stored and returned. Sets UpdatedAt on the stored document.
	// Returns ErrInvalidDate if the digest's date is not YYYY-MM-DD.
	SaveDigest(ctx context.Context, digest *core.Digest) (*core.Digest, error)

	// GetDigest retrieves the digest stored for a date key (YYYY-MM-DD).
	// Returns ErrNotFound if no digest exists for that date.
	GetDigest(ctx context.Context, date string) (*core.Digest, error)

	// ListDigests retrieves up to limit digests, newest date first.
	// A non-positive limit returns all stored digests.
	ListDigests(ctx context.Context, limit int) ([]*core.Digest, error)

	// DeleteBefore removes digests dated strictly before the cutoff date key.
	// The digest stored for the cutoff date itself is kept.
	// Returns the number of digests removed.
	DeleteBefore(ctx context.Context, cutoff string) (int, error)
}

// ItemRepository provides operations for per-item records.
type ItemRepository interface {
	Repository
	// PutItems stores one or more items, keyed by their content IDs.
	// An existing record with the same ID is replaced.
	PutItems(ctx context.Context, items ...*core.Item) error

	// GetItem retrieves a single item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.Item, error)

	// GetItems retrieves multiple items by their IDs.
	// Returns only the items that exist (no error for missing items).
	GetItems(ctx context.Context, ids ...core.ID) ([]*core.Item, error)

	// AllItems retrieves every stored item, in no particular order.
	AllItems(ctx context.Context) ([]*core.Item, error)

	// DeleteFetchedBefore removes items whose FetchedAt is before the cutoff
	// instant. Returns the number of items removed.
	DeleteFetchedBefore(ctx context.Context, cutoff time.Time) (int, error)
}
