package metadata

import (
	"context"
	"io"
	"time"
)

// ContentHandle is an opaque identifier returned by the pin gateway after
// storing content. It is the only reference the metadata layer keeps to the
// remote bytes; unpinning by handle releases them.
type ContentHandle string

// FileRecord describes one pinned file.
//
// The id is caller-assigned and unique within the Files collection. FolderID
// is optional: an empty value means the file lives at the root. A non-empty
// FolderID should reference an existing folder, but violations are tolerated
// as orphaned entries rather than treated as fatal.
type FileRecord struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Size          int64         `json:"size"`
	UploadDate    time.Time     `json:"uploadDate"`
	MimeType      string        `json:"mimeType"`
	ContentHandle ContentHandle `json:"contentHandle"`
	Owner         string        `json:"owner"`
	FolderID      string        `json:"folderId,omitempty"`
}

// Key returns the record's collection key.
func (f FileRecord) Key() string { return f.ID }

// FolderRecord describes one folder in a per-owner hierarchy.
//
// ParentID and SubFolderIDs are maintained bidirectionally: SubFolderIDs of a
// folder is exactly the set of folders whose ParentID equals that folder's id.
// Every create, update and delete keeps the two sides consistent; the links
// are never derived lazily.
type FolderRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	Owner        string    `json:"owner"`
	ParentID     string    `json:"parentFolderId,omitempty"`
	SubFolderIDs []string  `json:"subFolderIds"`
}

// Key returns the record's collection key.
func (f FolderRecord) Key() string { return f.ID }

// ShareRecord grants one non-owner identity read access to one file.
//
// At most one active record exists per (FileID, SharedWith) pair. The id is
// a time-ordered UUID, so shares sort by creation time.
type ShareRecord struct {
	ID         string    `json:"id"`
	FileID     string    `json:"fileId"`
	Owner      string    `json:"owner"`
	SharedWith string    `json:"sharedWith"`
	SharedAt   time.Time `json:"sharedAt"`
}

// Key returns the record's collection key.
func (s ShareRecord) Key() string { return s.ID }

// SharedFileView is one entry of a "shared with me" listing: the file's
// metadata joined with the grant that makes it visible.
type SharedFileView struct {
	File     FileRecord `json:"file"`
	SharedBy string     `json:"sharedBy"`
	SharedAt time.Time  `json:"sharedAt"`
}

// UnpinTask is a journaled unpin that failed during a cascading delete and
// is retried in the background. Attempts counts delivery tries so the
// collector can give up on handles that will never unpin.
type UnpinTask struct {
	ID         string        `json:"id"`
	Handle     ContentHandle `json:"handle"`
	FileID     string        `json:"fileId,omitempty"`
	EnqueuedAt time.Time     `json:"enqueuedAt"`
	Attempts   int           `json:"attempts"`
}

// Key returns the record's collection key.
func (t UnpinTask) Key() string { return t.ID }

// PinGateway is the metadata layer's view of the remote content-addressing
// service: store bytes and get back a handle, or release a handle.
//
// Implementations live in pkg/pin. Errors are returned as-is; callers decide
// whether a gateway failure is fatal (direct upload/unpin) or best-effort
// (cascading delete).
type PinGateway interface {
	// Pin stores content and returns the handle referencing it.
	Pin(ctx context.Context, name string, content io.Reader) (ContentHandle, error)

	// Unpin releases previously pinned content. Unpinning an unknown handle
	// is not an error.
	Unpin(ctx context.Context, handle ContentHandle) error
}
