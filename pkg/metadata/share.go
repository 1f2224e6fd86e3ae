package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeroten/pindex/internal/logger"
)

// findOwnedFile returns the file with the given id if identity may mutate
// it. The not-found and not-yours cases collapse into one error so callers
// cannot probe for files they have no rights over.
func (s *Store) findOwnedFile(ctx context.Context, fileID, identity string) (FileRecord, error) {
	files, err := s.files.LoadAll(ctx)
	if err != nil {
		return FileRecord{}, err
	}
	for _, f := range files {
		if f.ID == fileID && s.policy.CanMutate(identity, f.Owner) {
			return f, nil
		}
	}
	return FileRecord{}, &StoreError{Code: ErrNotFoundOrDenied, Message: "file not found", ID: fileID}
}

// ShareFile grants target read access to the file with the given id.
//
// The caller must own the file (or be admin). Sharing the same file to the
// same identity twice returns AlreadyShared and leaves the existing grant
// untouched.
func (s *Store) ShareFile(ctx context.Context, fileID, identity, target string) (ShareRecord, error) {
	if target == "" {
		return ShareRecord{}, &StoreError{Code: ErrInvalidInput, Message: "share target is required", ID: fileID}
	}

	file, err := s.findOwnedFile(ctx, fileID, identity)
	if err != nil {
		return ShareRecord{}, err
	}

	s.sharesMu.Lock()
	defer s.sharesMu.Unlock()

	shares, err := s.shares.LoadAll(ctx)
	if err != nil {
		return ShareRecord{}, err
	}

	for _, sh := range shares {
		if sh.FileID == fileID && sh.SharedWith == target {
			return ShareRecord{}, &StoreError{Code: ErrAlreadyShared, Message: "file already shared with identity", ID: fileID}
		}
	}

	// V7 ids are time-ordered, so the share list sorts by grant time for free.
	id, err := uuid.NewV7()
	if err != nil {
		return ShareRecord{}, fmt.Errorf("failed to generate share id: %w", err)
	}

	rec := ShareRecord{
		ID:         id.String(),
		FileID:     fileID,
		Owner:      file.Owner,
		SharedWith: target,
		SharedAt:   time.Now(),
	}

	shares = append(shares, rec)
	if err := s.shares.SaveAll(ctx, shares); err != nil {
		return ShareRecord{}, err
	}

	logger.Debug("shared file %s with %s", fileID, target)
	return rec, nil
}

// RevokeShare removes the grant for (fileID, target).
//
// The caller must own the file. Returns NotFound when no matching grant
// exists; existence leaking is not a concern here since ownership was
// already proven.
func (s *Store) RevokeShare(ctx context.Context, fileID, target, identity string) error {
	if _, err := s.findOwnedFile(ctx, fileID, identity); err != nil {
		return err
	}

	s.sharesMu.Lock()
	defer s.sharesMu.Unlock()

	shares, err := s.shares.LoadAll(ctx)
	if err != nil {
		return err
	}

	kept := make([]ShareRecord, 0, len(shares))
	found := false
	for _, sh := range shares {
		if sh.FileID == fileID && sh.SharedWith == target {
			found = true
			continue
		}
		kept = append(kept, sh)
	}

	if !found {
		return &StoreError{Code: ErrNotFound, Message: "share not found", ID: fileID}
	}

	return s.shares.SaveAll(ctx, kept)
}

// ListSharedWithMe returns the files other identities have shared with
// identity. Grants whose file has since been deleted are silently dropped;
// the join is best-effort.
func (s *Store) ListSharedWithMe(ctx context.Context, identity string) ([]SharedFileView, error) {
	shares, err := s.shares.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.files.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]FileRecord, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}

	views := make([]SharedFileView, 0)
	for _, sh := range shares {
		if sh.SharedWith != identity {
			continue
		}
		file, ok := byID[sh.FileID]
		if !ok {
			continue
		}
		views = append(views, SharedFileView{
			File:     file,
			SharedBy: file.Owner,
			SharedAt: sh.SharedAt,
		})
	}
	return views, nil
}

// ListSharesForFile returns every grant on the file with the given id. The
// caller must own the file (or be admin).
func (s *Store) ListSharesForFile(ctx context.Context, fileID, identity string) ([]ShareRecord, error) {
	if _, err := s.findOwnedFile(ctx, fileID, identity); err != nil {
		return nil, err
	}

	shares, err := s.shares.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ShareRecord, 0)
	for _, sh := range shares {
		if sh.FileID == fileID {
			out = append(out, sh)
		}
	}
	return out, nil
}
