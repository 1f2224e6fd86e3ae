// Package testing provides a shared conformance suite for Collection
// implementations. Every backend runs the same tests, so the
// whole-collection contract (empty load, atomic replace, copies out)
// holds regardless of storage engine.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroten/pindex/pkg/metadata"
	"github.com/zeroten/pindex/pkg/store"
)

// CollectionFactory creates a fresh, empty collection for each test. File
// records stand in for all record kinds; the backends are generic.
type CollectionFactory func(test *testing.T) store.Collection[metadata.FileRecord]

// CollectionTestSuite runs the conformance tests against one backend.
type CollectionTestSuite struct {
	NewCollection CollectionFactory
}

// RunAll runs every conformance test.
func (suite *CollectionTestSuite) RunAll(test *testing.T) {
	test.Run("LoadAll_Empty", suite.TestLoadAll_Empty)
	test.Run("SaveAll_Roundtrip", suite.TestSaveAll_Roundtrip)
	test.Run("SaveAll_Replace", suite.TestSaveAll_Replace)
	test.Run("SaveAll_Clear", suite.TestSaveAll_Clear)
	test.Run("LoadAll_ReturnsCopies", suite.TestLoadAll_ReturnsCopies)
	test.Run("ContextCancelled", suite.TestContextCancelled)
}

// sampleFile builds a valid file record with the given id.
func sampleFile(id string) metadata.FileRecord {
	return metadata.FileRecord{
		ID:            id,
		Name:          id + ".bin",
		Size:          42,
		UploadDate:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		MimeType:      "application/octet-stream",
		ContentHandle: metadata.ContentHandle("handle-" + id),
		Owner:         "u1@example.com",
	}
}

// TestLoadAll_Empty verifies a never-written collection loads empty.
func (suite *CollectionTestSuite) TestLoadAll_Empty(test *testing.T) {
	coll := suite.NewCollection(test)

	records, err := coll.LoadAll(context.Background())
	require.NoError(test, err)
	assert.Empty(test, records)
}

// TestSaveAll_Roundtrip verifies records survive a save/load cycle intact.
func (suite *CollectionTestSuite) TestSaveAll_Roundtrip(test *testing.T) {
	coll := suite.NewCollection(test)
	ctx := context.Background()

	want := []metadata.FileRecord{sampleFile("f1"), sampleFile("f2")}
	require.NoError(test, coll.SaveAll(ctx, want))

	got, err := coll.LoadAll(ctx)
	require.NoError(test, err)
	assert.ElementsMatch(test, want, got)
}

// TestSaveAll_Replace verifies SaveAll replaces the whole collection:
// records absent from the new set must not survive.
func (suite *CollectionTestSuite) TestSaveAll_Replace(test *testing.T) {
	coll := suite.NewCollection(test)
	ctx := context.Background()

	require.NoError(test, coll.SaveAll(ctx, []metadata.FileRecord{
		sampleFile("f1"), sampleFile("f2"), sampleFile("f3"),
	}))
	require.NoError(test, coll.SaveAll(ctx, []metadata.FileRecord{sampleFile("f2")}))

	got, err := coll.LoadAll(ctx)
	require.NoError(test, err)
	require.Len(test, got, 1)
	assert.Equal(test, "f2", got[0].ID)
}

// TestSaveAll_Clear verifies saving an empty set empties the collection.
func (suite *CollectionTestSuite) TestSaveAll_Clear(test *testing.T) {
	coll := suite.NewCollection(test)
	ctx := context.Background()

	require.NoError(test, coll.SaveAll(ctx, []metadata.FileRecord{sampleFile("f1")}))
	require.NoError(test, coll.SaveAll(ctx, []metadata.FileRecord{}))

	got, err := coll.LoadAll(ctx)
	require.NoError(test, err)
	assert.Empty(test, got)
}

// TestLoadAll_ReturnsCopies verifies mutating a loaded record does not leak
// into the stored state.
func (suite *CollectionTestSuite) TestLoadAll_ReturnsCopies(test *testing.T) {
	coll := suite.NewCollection(test)
	ctx := context.Background()

	require.NoError(test, coll.SaveAll(ctx, []metadata.FileRecord{sampleFile("f1")}))

	first, err := coll.LoadAll(ctx)
	require.NoError(test, err)
	require.Len(test, first, 1)
	first[0].Name = "mutated"

	second, err := coll.LoadAll(ctx)
	require.NoError(test, err)
	require.Len(test, second, 1)
	assert.Equal(test, "f1.bin", second[0].Name)
}

// TestContextCancelled verifies both operations respect cancellation.
func (suite *CollectionTestSuite) TestContextCancelled(test *testing.T) {
	coll := suite.NewCollection(test)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := coll.LoadAll(ctx)
	assert.ErrorIs(test, err, context.Canceled)

	err = coll.SaveAll(ctx, []metadata.FileRecord{sampleFile("f1")})
	assert.ErrorIs(test, err, context.Canceled)
}
