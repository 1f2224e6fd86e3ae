//go:build integration

package badger_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zeroten/pindex/pkg/metadata"
	pinmemory "github.com/zeroten/pindex/pkg/pin/memory"
	"github.com/zeroten/pindex/pkg/store/badger"
)

func newBadgerStore(t *testing.T, dbPath string, gateway *pinmemory.Gateway) (*metadata.Store, func()) {
	t.Helper()

	db, err := badger.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open badger database: %v", err)
	}

	store := metadata.NewStore(metadata.StoreConfig{
		Files:   badger.NewCollection[metadata.FileRecord](db, "file"),
		Folders: badger.NewCollection[metadata.FolderRecord](db, "folder"),
		Shares:  badger.NewCollection[metadata.ShareRecord](db, "share"),
		Unpins:  badger.NewCollection[metadata.UnpinTask](db, "unpin"),
		Policy:  metadata.NewAccessPolicy(nil),
		Gateway: gateway,
	})

	return store, func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close badger database: %v", err)
		}
	}
}

// TestBadgerStore_Integration exercises the metadata store against a real
// BadgerDB database on disk.
//
// Prerequisites:
//   - None (BadgerDB is embedded, no external services needed)
//   - Run with: go test -tags=integration ./test/integration/badger/...
func TestBadgerStore_Integration(t *testing.T) {
	ctx := context.Background()

	// ========================================================================
	// Setup: Create temporary directory for test database
	// ========================================================================

	tempDir, err := os.MkdirTemp("", "pindex-badger-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "metadata.db")
	gateway := &pinmemory.Gateway{}

	// ========================================================================
	// Phase 1: Create records and close
	// ========================================================================

	{
		store, closeStore := newBadgerStore(t, dbPath, gateway)

		handle, err := gateway.Pin(ctx, "report.pdf", strings.NewReader("pdf bytes"))
		if err != nil {
			t.Fatalf("Failed to pin content: %v", err)
		}

		folder := metadata.FolderRecord{
			ID:        "docs",
			Name:      "documents",
			CreatedAt: time.Now(),
			Owner:     "alice",
		}
		if err := store.CreateFolder(ctx, folder); err != nil {
			t.Fatalf("Failed to create folder: %v", err)
		}

		file := metadata.FileRecord{
			ID:            "f1",
			Name:          "report.pdf",
			Size:          9,
			UploadDate:    time.Now(),
			MimeType:      "application/pdf",
			ContentHandle: handle,
			Owner:         "alice",
			FolderID:      "docs",
		}
		if err := store.CreateFile(ctx, file); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}

		if _, err := store.ShareFile(ctx, "f1", "alice", "bob"); err != nil {
			t.Fatalf("Failed to share file: %v", err)
		}

		closeStore()
	}

	// ========================================================================
	// Phase 2: Reopen and verify everything persisted
	// ========================================================================

	{
		store, closeStore := newBadgerStore(t, dbPath, gateway)
		defer closeStore()

		files, err := store.ListFiles(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to list files: %v", err)
		}
		if len(files) != 1 || files[0].ID != "f1" {
			t.Fatalf("Expected file f1 to persist, got %v", files)
		}

		folders, err := store.ListFolders(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to list folders: %v", err)
		}
		if len(folders) != 1 || folders[0].ID != "docs" {
			t.Fatalf("Expected folder docs to persist, got %v", folders)
		}

		views, err := store.ListSharedWithMe(ctx, "bob")
		if err != nil {
			t.Fatalf("Failed to list shared files: %v", err)
		}
		if len(views) != 1 || views[0].File.ID != "f1" {
			t.Fatalf("Expected share of f1 to persist, got %v", views)
		}

		// Cascade delete must work against the reopened database
		if err := store.DeleteFolder(ctx, "docs", "alice"); err != nil {
			t.Fatalf("Failed to delete folder: %v", err)
		}

		files, err = store.ListFiles(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to list files after delete: %v", err)
		}
		if len(files) != 0 {
			t.Fatalf("Expected no files after cascade, got %v", files)
		}
	}
}

// TestBadgerStore_UnpinBacklogPersists verifies that failed unpins journaled
// during a cascade survive a restart and can be drained afterwards.
func TestBadgerStore_UnpinBacklogPersists(t *testing.T) {
	ctx := context.Background()

	tempDir, err := os.MkdirTemp("", "pindex-badger-backlog-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "metadata.db")
	gateway := &pinmemory.Gateway{}

	// Phase 1: Delete a file while the gateway is down
	{
		store, closeStore := newBadgerStore(t, dbPath, gateway)

		handle, err := gateway.Pin(ctx, "a.txt", strings.NewReader("hello"))
		if err != nil {
			t.Fatalf("Failed to pin content: %v", err)
		}

		file := metadata.FileRecord{
			ID:            "f1",
			Name:          "a.txt",
			Size:          5,
			UploadDate:    time.Now(),
			MimeType:      "text/plain",
			ContentHandle: handle,
			Owner:         "alice",
		}
		if err := store.CreateFile(ctx, file); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}

		gateway.UnpinErr = context.DeadlineExceeded
		if err := store.DeleteFile(ctx, "f1", "alice"); err != nil {
			t.Fatalf("Delete should succeed despite unpin failure: %v", err)
		}

		closeStore()
	}

	// Phase 2: Reopen with a healthy gateway and drain the backlog
	{
		store, closeStore := newBadgerStore(t, dbPath, gateway)
		defer closeStore()

		gateway.UnpinErr = nil
		stats, err := store.RetryUnpins(ctx, 10, false)
		if err != nil {
			t.Fatalf("Failed to retry unpins: %v", err)
		}
		if stats.Released != 1 {
			t.Fatalf("Expected 1 released unpin, got %d", stats.Released)
		}
		if stats.Remaining != 0 {
			t.Fatalf("Expected empty backlog, got %d remaining", stats.Remaining)
		}
	}
}
