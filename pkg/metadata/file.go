package metadata

import (
	"context"

	"github.com/zeroten/pindex/internal/logger"
)

// validateFile checks the required fields of a file record. Runs before any
// store access so rejected input never causes a partial write.
func validateFile(rec FileRecord) error {
	switch {
	case rec.ID == "":
		return &StoreError{Code: ErrInvalidInput, Message: "file id is required"}
	case rec.Name == "":
		return &StoreError{Code: ErrInvalidInput, Message: "file name is required", ID: rec.ID}
	case rec.Size <= 0:
		return &StoreError{Code: ErrInvalidInput, Message: "file size is required", ID: rec.ID}
	case rec.UploadDate.IsZero():
		return &StoreError{Code: ErrInvalidInput, Message: "file upload date is required", ID: rec.ID}
	case rec.MimeType == "":
		return &StoreError{Code: ErrInvalidInput, Message: "file mime type is required", ID: rec.ID}
	case rec.ContentHandle == "":
		return &StoreError{Code: ErrInvalidInput, Message: "file content handle is required", ID: rec.ID}
	case rec.Owner == "":
		return &StoreError{Code: ErrInvalidInput, Message: "file owner is required", ID: rec.ID}
	}
	return nil
}

// ListFiles returns the file records visible to identity: every record for
// admins, only owned records for standard identities. Files reachable only
// through a share are not listed here; see ListSharedWithMe.
func (s *Store) ListFiles(ctx context.Context, identity string) ([]FileRecord, error) {
	files, err := s.files.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.policy.IsAdmin(identity) {
		return files, nil
	}

	visible := make([]FileRecord, 0, len(files))
	for _, f := range files {
		if s.policy.CanView(identity, f.Owner) {
			visible = append(visible, f)
		}
	}
	return visible, nil
}

// CreateFile appends a new file record.
//
// All required fields must be present and the id must not already be in
// use; violations return InvalidInput before anything is written.
func (s *Store) CreateFile(ctx context.Context, rec FileRecord) error {
	if err := validateFile(rec); err != nil {
		return err
	}

	s.filesMu.Lock()
	defer s.filesMu.Unlock()

	files, err := s.files.LoadAll(ctx)
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.ID == rec.ID {
			return &StoreError{Code: ErrInvalidInput, Message: "file id already in use", ID: rec.ID}
		}
	}

	files = append(files, rec)
	if err := s.files.SaveAll(ctx, files); err != nil {
		return err
	}

	logger.Debug("created file %s (owner %s)", rec.ID, rec.Owner)
	return nil
}

// UpdateFile replaces the file record with the given id.
//
// The record's id and owner are fixed at creation time; the stored values
// win over whatever the caller put in rec. Callers lacking mutation rights
// get NotFoundOrDenied whether or not the record exists.
func (s *Store) UpdateFile(ctx context.Context, id string, rec FileRecord, identity string) error {
	rec.ID = id
	if rec.Owner == "" {
		rec.Owner = identity
	}
	if err := validateFile(rec); err != nil {
		return err
	}

	s.filesMu.Lock()
	defer s.filesMu.Unlock()

	files, err := s.files.LoadAll(ctx)
	if err != nil {
		return err
	}

	for i, f := range files {
		if f.ID != id {
			continue
		}
		if !s.policy.CanMutate(identity, f.Owner) {
			break
		}
		rec.Owner = f.Owner
		files[i] = rec
		return s.files.SaveAll(ctx, files)
	}

	return &StoreError{Code: ErrNotFoundOrDenied, Message: "file not found", ID: id}
}

// DeleteFile removes the file record and releases its pinned content.
//
// The unpin is best-effort: a gateway failure is logged, journaled for
// background retry and does not block the metadata removal. Local state
// must never become undeletable because the remote service is down.
func (s *Store) DeleteFile(ctx context.Context, id string, identity string) error {
	s.filesMu.Lock()

	files, err := s.files.LoadAll(ctx)
	if err != nil {
		s.filesMu.Unlock()
		return err
	}

	var removed *FileRecord
	kept := make([]FileRecord, 0, len(files))
	for _, f := range files {
		if f.ID == id && removed == nil && s.policy.CanMutate(identity, f.Owner) {
			rec := f
			removed = &rec
			continue
		}
		kept = append(kept, f)
	}

	if removed == nil {
		s.filesMu.Unlock()
		return &StoreError{Code: ErrNotFoundOrDenied, Message: "file not found", ID: id}
	}

	if err := s.files.SaveAll(ctx, kept); err != nil {
		s.filesMu.Unlock()
		return err
	}
	s.filesMu.Unlock()

	if err := s.gateway.Unpin(ctx, removed.ContentHandle); err != nil {
		logger.Warn("unpin failed for file %s (handle %s): %v", removed.ID, removed.ContentHandle, err)
		s.enqueueUnpin(ctx, removed.ID, removed.ContentHandle)
	}
	return nil
}
