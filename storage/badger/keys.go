package badger

import (
	"fmt"

	"github.com/poiesic/curator/core"
)

// Key prefixes for different data types
const (
	digestPrefix = "d"
	itemPrefix   = "i"
)

// makeDigestKey generates a key for a digest by date.
// Date keys (YYYY-MM-DD) sort lexicographically, so prefix iteration walks
// digests in date order and retention can cut at a boundary key.
func makeDigestKey(date string) []byte {
	return []byte(fmt.Sprintf("%s:%s", digestPrefix, date))
}

// digestKeyPrefix returns the iteration prefix for digest keys.
func digestKeyPrefix() []byte {
	return []byte(digestPrefix + ":")
}

// makeItemKey generates a key for an item by ID.
func makeItemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", itemPrefix, id))
}

// itemKeyPrefix returns the iteration prefix for item keys.
func itemKeyPrefix() []byte {
	return []byte(itemPrefix + ":")
}
