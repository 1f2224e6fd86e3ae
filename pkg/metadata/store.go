// Package metadata implements the hierarchical metadata store for pindex:
// file and folder records organized in per-owner trees, share grants for
// cross-identity read access, and cascading lifecycle management that keeps
// local metadata and remote pinned content consistent.
//
// The store reads and rewrites whole collections on every mutation. Each
// collection has one mutation lock, so concurrent load-modify-save cycles
// never interleave and lost updates cannot occur. Reads take no lock: they
// see either the previous committed state or the next one.
package metadata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/store"
)

// Store is the metadata layer over the three record collections plus the
// unpin backlog, gated by an AccessPolicy and talking to the pin gateway
// for content side effects.
//
// Thread safety: every mutation serializes on the collection's lock.
// Cascading folder deletion touches folders and files; it always acquires
// the folders lock before the files lock.
type Store struct {
	files   store.Collection[FileRecord]
	folders store.Collection[FolderRecord]
	shares  store.Collection[ShareRecord]
	unpins  store.Collection[UnpinTask]

	filesMu   sync.Mutex
	foldersMu sync.Mutex
	sharesMu  sync.Mutex
	unpinsMu  sync.Mutex

	policy  *AccessPolicy
	gateway PinGateway
}

// StoreConfig carries the collaborators a Store needs.
type StoreConfig struct {
	Files   store.Collection[FileRecord]
	Folders store.Collection[FolderRecord]
	Shares  store.Collection[ShareRecord]
	Unpins  store.Collection[UnpinTask]
	Policy  *AccessPolicy
	Gateway PinGateway
}

// NewStore creates a metadata store over the given collections.
func NewStore(cfg StoreConfig) *Store {
	return &Store{
		files:   cfg.Files,
		folders: cfg.Folders,
		shares:  cfg.Shares,
		unpins:  cfg.Unpins,
		policy:  cfg.Policy,
		gateway: cfg.Gateway,
	}
}

// Policy returns the store's access policy.
func (s *Store) Policy() *AccessPolicy {
	return s.policy
}

// ============================================================================
// Unpin backlog
// ============================================================================

// enqueueUnpin journals a failed unpin for background retry. Best-effort:
// if the backlog itself cannot be written, the handle is lost and logged.
func (s *Store) enqueueUnpin(ctx context.Context, fileID string, handle ContentHandle) {
	task := UnpinTask{
		ID:         uuid.NewString(),
		Handle:     handle,
		FileID:     fileID,
		EnqueuedAt: time.Now(),
	}

	s.unpinsMu.Lock()
	defer s.unpinsMu.Unlock()

	tasks, err := s.unpins.LoadAll(ctx)
	if err != nil {
		logger.Error("unpin backlog load failed, dropping handle %s: %v", handle, err)
		return
	}
	tasks = append(tasks, task)
	if err := s.unpins.SaveAll(ctx, tasks); err != nil {
		logger.Error("unpin backlog save failed, dropping handle %s: %v", handle, err)
	}
}

// UnpinBacklogStats summarizes one backlog retry pass.
type UnpinBacklogStats struct {
	// Attempted is the number of tasks tried this pass
	Attempted int

	// Released is the number of handles successfully unpinned
	Released int

	// Dropped is the number of tasks discarded after exhausting retries
	Dropped int

	// Remaining is the backlog size after the pass
	Remaining int
}

// Summary returns a human-readable summary of the pass.
func (s UnpinBacklogStats) Summary() string {
	return fmt.Sprintf("attempted=%d released=%d dropped=%d remaining=%d",
		s.Attempted, s.Released, s.Dropped, s.Remaining)
}

// RetryUnpins runs one pass over the unpin backlog: every task is retried
// against the gateway, resolved tasks are removed, failed ones keep their
// attempt count and tasks past maxAttempts are dropped.
//
// When dryRun is true the backlog is only inspected, nothing is unpinned
// or rewritten.
func (s *Store) RetryUnpins(ctx context.Context, maxAttempts int, dryRun bool) (UnpinBacklogStats, error) {
	s.unpinsMu.Lock()
	defer s.unpinsMu.Unlock()

	var stats UnpinBacklogStats

	tasks, err := s.unpins.LoadAll(ctx)
	if err != nil {
		return stats, err
	}

	if dryRun {
		stats.Remaining = len(tasks)
		return stats, nil
	}

	var remaining []UnpinTask
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			remaining = append(remaining, task)
			continue
		}

		stats.Attempted++
		if err := s.gateway.Unpin(ctx, task.Handle); err != nil {
			task.Attempts++
			if maxAttempts > 0 && task.Attempts >= maxAttempts {
				logger.Warn("dropping unpin task %s after %d attempts: %v", task.ID, task.Attempts, err)
				stats.Dropped++
				continue
			}
			logger.Debug("unpin retry failed for handle %s (attempt %d): %v", task.Handle, task.Attempts, err)
			remaining = append(remaining, task)
			continue
		}
		stats.Released++
	}

	stats.Remaining = len(remaining)
	if remaining == nil {
		remaining = []UnpinTask{}
	}
	if err := s.unpins.SaveAll(ctx, remaining); err != nil {
		return stats, err
	}
	return stats, nil
}
