// Package memory provides an in-memory Collection implementation.
//
// Records are kept JSON-encoded, so callers always receive independent
// copies and the codec behavior matches the durable backends exactly.
// Intended for tests and ephemeral single-process deployments.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"

	"context"

	"github.com/zeroten/pindex/pkg/store"
)

// Collection is an in-memory, thread-safe implementation of
// store.Collection. The zero value is not usable; use NewCollection.
type Collection[T store.Record] struct {
	mu sync.RWMutex

	// records holds the encoded collection contents in save order
	records [][]byte
}

// NewCollection creates an empty in-memory collection.
func NewCollection[T store.Record]() *Collection[T] {
	return &Collection[T]{}
}

// LoadAll returns all records in the collection.
//
// Entries that fail to decode are skipped; a collection that was never
// written returns an empty slice.
func (c *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.records))
	for _, data := range c.records {
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveAll replaces the collection contents with records.
func (c *Collection[T]) SaveAll(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded := make([][]byte, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %q: %w", rec.Key(), err)
		}
		encoded = append(encoded, data)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = encoded
	return nil
}

// Corrupt overwrites the stored bytes of every record with data. Test hook
// for exercising the malformed-data-is-empty behavior.
func (c *Collection[T]) Corrupt(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.records {
		c.records[i] = append([]byte(nil), data...)
	}
}
