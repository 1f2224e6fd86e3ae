// Package badger provides a durable Collection implementation backed by
// BadgerDB.
//
// Key Design:
//   - One shared database, one key prefix per collection
//   - Key format: "<prefix>:<record id>" (e.g. "file:f1")
//   - Values are the JSON encoding of the record
//
// SaveAll runs as a single transaction that drops every existing key under
// the collection prefix and writes the new set, so a collection replace is
// atomic: a crash leaves either the old contents or the new ones.
package badger

import (
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/store"
)

// Collection stores records of one kind under a dedicated key prefix.
type Collection[T store.Record] struct {
	db     *badger.DB
	prefix []byte
}

// Open opens (or creates) a Badger database at path, tuned for the small
// JSON values this store writes.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", path, err)
	}
	return db, nil
}

// NewCollection creates a collection over db using the given key prefix.
// Prefixes must be unique per record kind within one database.
func NewCollection[T store.Record](db *badger.DB, prefix string) *Collection[T] {
	return &Collection[T]{
		db:     db,
		prefix: []byte(prefix + ":"),
	}
}

// LoadAll returns all records in the collection.
//
// Values that fail to decode are logged and skipped, so one corrupted entry
// does not take the collection down with it. A never-written collection
// returns an empty slice.
func (c *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []T

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = c.prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var rec T
				if err := json.Unmarshal(val, &rec); err != nil {
					logger.Warn("skipping malformed record at key %s: %v", item.Key(), err)
					return nil
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", c.prefix, err)
	}

	if out == nil {
		out = []T{}
	}
	return out, nil
}

// SaveAll replaces the collection contents with records in one transaction.
func (c *Collection[T]) SaveAll(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded := make(map[string][]byte, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %q: %w", rec.Key(), err)
		}
		encoded[rec.Key()] = data
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		// Drop every existing key under the prefix first; records removed
		// from the in-memory set must not survive the replace.
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = c.prefix

		it := txn.NewIterator(opts)
		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for id, data := range encoded {
			if err := txn.Set(c.key(id), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save collection %s: %w", c.prefix, err)
	}
	return nil
}

func (c *Collection[T]) key(id string) []byte {
	key := make([]byte, 0, len(c.prefix)+len(id))
	key = append(key, c.prefix...)
	key = append(key, id...)
	return key
}
