package metadata

import (
	"context"

	"github.com/zeroten/pindex/internal/logger"
)

// validateFolder checks the required fields of a folder record.
func validateFolder(rec FolderRecord) error {
	switch {
	case rec.ID == "":
		return &StoreError{Code: ErrInvalidInput, Message: "folder id is required"}
	case rec.Name == "":
		return &StoreError{Code: ErrInvalidInput, Message: "folder name is required", ID: rec.ID}
	case rec.CreatedAt.IsZero():
		return &StoreError{Code: ErrInvalidInput, Message: "folder creation date is required", ID: rec.ID}
	case rec.Owner == "":
		return &StoreError{Code: ErrInvalidInput, Message: "folder owner is required", ID: rec.ID}
	}
	return nil
}

// ListFolders returns the folder records visible to identity.
func (s *Store) ListFolders(ctx context.Context, identity string) ([]FolderRecord, error) {
	folders, err := s.folders.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.policy.IsAdmin(identity) {
		return folders, nil
	}

	visible := make([]FolderRecord, 0, len(folders))
	for _, f := range folders {
		if s.policy.CanView(identity, f.Owner) {
			visible = append(visible, f)
		}
	}
	return visible, nil
}

// CreateFolder appends a new folder record and links it into the hierarchy.
//
// If ParentID is set, the parent must be a folder owned by the same
// identity; the new id is then added to the parent's SubFolderIDs. A
// missing parent does not fail the call: the folder is created unlinked.
func (s *Store) CreateFolder(ctx context.Context, rec FolderRecord) error {
	if err := validateFolder(rec); err != nil {
		return err
	}

	// Child links are system-maintained; whatever the caller sent is noise.
	rec.SubFolderIDs = []string{}

	s.foldersMu.Lock()
	defer s.foldersMu.Unlock()

	folders, err := s.folders.LoadAll(ctx)
	if err != nil {
		return err
	}

	for _, f := range folders {
		if f.ID == rec.ID {
			return &StoreError{Code: ErrInvalidInput, Message: "folder id already in use", ID: rec.ID}
		}
	}

	if rec.ParentID != "" {
		linked := false
		for i, f := range folders {
			if f.ID == rec.ParentID && f.Owner == rec.Owner {
				if !containsID(f.SubFolderIDs, rec.ID) {
					folders[i].SubFolderIDs = append(folders[i].SubFolderIDs, rec.ID)
				}
				linked = true
				break
			}
		}
		if !linked {
			logger.Warn("parent folder %s not found for %s, creating unlinked", rec.ParentID, rec.ID)
		}
	}

	folders = append(folders, rec)
	if err := s.folders.SaveAll(ctx, folders); err != nil {
		return err
	}

	logger.Debug("created folder %s (owner %s, parent %q)", rec.ID, rec.Owner, rec.ParentID)
	return nil
}

// UpdateFolder replaces the folder record with the given id.
//
// Id, owner and child links are fixed: the stored values win over the
// caller's. Re-parenting moves the folder in the hierarchy, keeping both
// the old and the new parent's SubFolderIDs consistent. Moving a folder
// under itself or one of its own descendants is rejected as InvalidInput.
func (s *Store) UpdateFolder(ctx context.Context, id string, rec FolderRecord, identity string) error {
	rec.ID = id
	if rec.Owner == "" {
		rec.Owner = identity
	}
	if err := validateFolder(rec); err != nil {
		return err
	}

	s.foldersMu.Lock()
	defer s.foldersMu.Unlock()

	folders, err := s.folders.LoadAll(ctx)
	if err != nil {
		return err
	}

	current := -1
	for i, f := range folders {
		if f.ID == id {
			current = i
			break
		}
	}
	if current < 0 || !s.policy.CanMutate(identity, folders[current].Owner) {
		return &StoreError{Code: ErrNotFoundOrDenied, Message: "folder not found", ID: id}
	}

	existing := folders[current]
	rec.Owner = existing.Owner
	rec.SubFolderIDs = existing.SubFolderIDs

	if rec.ParentID != existing.ParentID {
		if rec.ParentID == id {
			return &StoreError{Code: ErrInvalidInput, Message: "folder cannot be its own parent", ID: id}
		}
		children := childIndex(folders)
		if isDescendant(children, id, rec.ParentID) {
			return &StoreError{Code: ErrInvalidInput, Message: "folder cannot move under its own descendant", ID: id}
		}

		for i, f := range folders {
			if f.ID == existing.ParentID {
				folders[i].SubFolderIDs = removeID(f.SubFolderIDs, id)
			}
			if f.ID == rec.ParentID && f.Owner == existing.Owner {
				if !containsID(f.SubFolderIDs, id) {
					folders[i].SubFolderIDs = append(folders[i].SubFolderIDs, id)
				}
			}
		}
	}

	folders[current] = rec
	return s.folders.SaveAll(ctx, folders)
}

// DeleteFolder removes the folder and its whole subtree: every descendant
// folder, and every file in the subtree the caller has rights over. Each
// removed file's content handle is unpinned best-effort; gateway failures
// are logged, journaled for retry and never block the metadata removal.
//
// The subtree is resolved fully in memory and each collection is committed
// exactly once, so a crash mid-delete leaves either the old consistent
// state or the new one, never a half-removed tree.
//
// Returns NotFoundOrDenied, with no mutation at all, when the target does
// not resolve under the caller's rights. Once the target resolves the
// operation cannot fail outright on gateway errors.
func (s *Store) DeleteFolder(ctx context.Context, id string, identity string) error {
	s.foldersMu.Lock()
	defer s.foldersMu.Unlock()
	s.filesMu.Lock()
	defer s.filesMu.Unlock()

	folders, err := s.folders.LoadAll(ctx)
	if err != nil {
		return err
	}
	files, err := s.files.LoadAll(ctx)
	if err != nil {
		return err
	}

	var target *FolderRecord
	for i, f := range folders {
		if f.ID == id {
			target = &folders[i]
			break
		}
	}
	if target == nil || !s.policy.CanMutate(identity, target.Owner) {
		return &StoreError{Code: ErrNotFoundOrDenied, Message: "folder not found", ID: id}
	}

	// ========================================================================
	// Step 1: Resolve the subtree in memory
	// ========================================================================

	// Adjacency is built once per call; the traversal never rescans the
	// collections. Children come from both sides of the bidirectional link
	// so folders with a broken half-link are still collected.
	children := childIndex(folders)
	removedFolders := subtreeIDs(children, id)

	admin := s.policy.IsAdmin(identity)
	var removedFiles []FileRecord
	keptFiles := make([]FileRecord, 0, len(files))
	for _, f := range files {
		if removedFolders[f.FolderID] && (admin || f.Owner == identity) {
			removedFiles = append(removedFiles, f)
			continue
		}
		keptFiles = append(keptFiles, f)
	}

	keptFolders := make([]FolderRecord, 0, len(folders))
	for _, f := range folders {
		if removedFolders[f.ID] {
			continue
		}
		if f.ID == target.ParentID {
			f.SubFolderIDs = removeID(f.SubFolderIDs, id)
		}
		keptFolders = append(keptFolders, f)
	}

	// ========================================================================
	// Step 2: Release pinned content, best-effort
	// ========================================================================

	var backlog []FileRecord
	for _, f := range removedFiles {
		if err := s.gateway.Unpin(ctx, f.ContentHandle); err != nil {
			logger.Warn("unpin failed for file %s (handle %s): %v", f.ID, f.ContentHandle, err)
			backlog = append(backlog, f)
		}
	}

	// ========================================================================
	// Step 3: Commit each collection exactly once
	// ========================================================================

	if err := s.folders.SaveAll(ctx, keptFolders); err != nil {
		return err
	}
	if err := s.files.SaveAll(ctx, keptFiles); err != nil {
		return err
	}

	logger.Info("deleted folder %s: %d folders, %d files removed", id, len(removedFolders), len(removedFiles))

	for _, f := range backlog {
		s.enqueueUnpin(ctx, f.ID, f.ContentHandle)
	}
	return nil
}

// ============================================================================
// Hierarchy helpers
// ============================================================================

// childIndex builds the id -> child ids adjacency from both directions of
// the parent/child link: a folder's SubFolderIDs and every folder naming it
// as ParentID.
func childIndex(folders []FolderRecord) map[string][]string {
	index := make(map[string][]string, len(folders))
	seen := make(map[string]map[string]bool, len(folders))

	add := func(parent, child string) {
		if parent == "" || child == parent {
			return
		}
		if seen[parent] == nil {
			seen[parent] = make(map[string]bool)
		}
		if seen[parent][child] {
			return
		}
		seen[parent][child] = true
		index[parent] = append(index[parent], child)
	}

	for _, f := range folders {
		for _, child := range f.SubFolderIDs {
			add(f.ID, child)
		}
		add(f.ParentID, f.ID)
	}
	return index
}

// subtreeIDs collects root and every id reachable from it through the
// adjacency, in iterative post-order. The visited set makes traversal
// terminate even on link cycles that should not exist.
func subtreeIDs(children map[string][]string, root string) map[string]bool {
	type frame struct {
		id       string
		expanded bool
	}

	visited := make(map[string]bool)
	collected := make(map[string]bool)
	stack := []frame{{id: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.expanded {
			collected[f.id] = true
			continue
		}
		if visited[f.id] {
			continue
		}
		visited[f.id] = true

		stack = append(stack, frame{id: f.id, expanded: true})
		for _, child := range children[f.id] {
			if !visited[child] {
				stack = append(stack, frame{id: child})
			}
		}
	}
	return collected
}

// isDescendant reports whether candidate lies in the subtree rooted at id.
func isDescendant(children map[string][]string, id, candidate string) bool {
	if candidate == "" {
		return false
	}
	return subtreeIDs(children, id)[candidate]
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
