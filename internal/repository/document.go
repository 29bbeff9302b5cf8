package repository

import (
	"context"
	"errors"

	"casedocs/internal/model"
)

var (
	// ErrDuplicate is returned by Create when a non-deleted document with the same
	// content hash and download URL already exists.
	ErrDuplicate = errors.New("document with same content hash and url already exists")
	// ErrConflict is returned by UpdateMetadata when the document status changed
	// between the read and the write.
	ErrConflict = errors.New("document was modified concurrently")
	// ErrStatusLocked is returned by UpdateStatus when the document is validated.
	ErrStatusLocked = errors.New("document status is locked")
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations. Missing or deleted
// rows surface as sql.ErrNoRows.
type DocumentRepository interface {
	// Create inserts a new document record (documentAdd) and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a non-deleted document by its ID (getDocumentById).
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns the non-deleted documents of a subject, newest first (documentList).
	List(ctx context.Context, subjectID int64) ([]model.Document, error)

	// Delete marks a document as deleted (documentDelete). The row is kept.
	Delete(ctx context.Context, id string, userID int64) error

	// Exists reports whether a non-deleted document has the given content hash and url (documentExists).
	Exists(ctx context.Context, contentHash, downloadURL string) (bool, error)

	// UpdateMetadata overwrites the editable fields (documentUpdate) provided the
	// stored status still equals expected; otherwise it returns ErrConflict.
	UpdateMetadata(ctx context.Context, id string, expected model.DocumentStatus, meta model.DocumentMetadata) error

	// UpdateData stores the processed data of a document (documentUpdateData).
	UpdateData(ctx context.Context, id string, userID int64, data string) error

	// UpdateStatus records an OCR outcome and its raw data in one statement
	// (documentUpdateDataRaw). Validated documents are never touched: ErrStatusLocked.
	UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, dataRaw *string) error

	// FindData returns the processed data (getDocumentData).
	FindData(ctx context.Context, id string) (*model.DocumentData, error)

	// FindDataRaw returns the raw OCR data (getDocumentDataRaw).
	FindDataRaw(ctx context.Context, id string) (*model.DocumentDataRaw, error)

	// FindOriginalPath returns the storage path of the original file (getDocumentOriginalPath).
	FindOriginalPath(ctx context.Context, id string) (string, error)
}

// SubjectRepository is the read-only view of subjects the document pipeline needs.
type SubjectRepository interface {
	// FindByID returns a non-deleted subject (getSubjectById).
	FindByID(ctx context.Context, id int64) (*model.Subject, error)
}
