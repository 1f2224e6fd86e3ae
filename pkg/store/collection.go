// Package store defines the durable record collection contract used by the
// metadata layer.
//
// A Collection is a typed, keyed set of records with whole-collection
// semantics: LoadAll reads everything, SaveAll atomically replaces
// everything. There is no partial or streaming access. This matches how the
// metadata layer mutates state: load, modify in memory, commit once.
//
// Implementations:
//   - pkg/store/memory: in-memory, for tests and ephemeral deployments
//   - pkg/store/badger: durable, backed by BadgerDB
package store

import "context"

// Record is any value that can live in a Collection. Key returns the unique
// id the record is stored under.
type Record interface {
	Key() string
}

// Collection is a durable set of records of one kind.
//
// Contract:
//   - LoadAll returns every record. A collection that has never been written
//     yields an empty slice, not an error. Malformed persisted entries are
//     skipped rather than failing the whole load.
//   - SaveAll atomically replaces the entire collection. After a crash the
//     collection holds either the previous contents or the new ones, never a
//     mix.
//   - Returned slices and records are copies; mutating them does not affect
//     the stored state.
//
// Concurrent load-modify-save cycles on the same collection must be
// serialized by the caller. The metadata store holds one mutation lock per
// collection for exactly this reason.
type Collection[T Record] interface {
	// LoadAll returns all records in the collection.
	LoadAll(ctx context.Context) ([]T, error)

	// SaveAll replaces the collection contents with records.
	SaveAll(ctx context.Context, records []T) error
}
