package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"casedocs/internal/apperr"
	"casedocs/internal/config"
	"casedocs/internal/download"
	"casedocs/internal/model"
	"casedocs/internal/repository"
	"casedocs/internal/storage"
)

// AddDocumentInput is what a caller supplies to ingest a document from a url.
type AddDocumentInput struct {
	SubjectID   int64
	JobID       int64
	Type        model.DocumentType
	Status      model.DocumentStatus
	Date        time.Time
	Name        string
	DownloadURL string
	UserID      int64
}

// UpdateDocumentInput carries the editable metadata of a document.
type UpdateDocumentInput struct {
	JobID  int64
	Type   model.DocumentType
	Status model.DocumentStatus
	Date   time.Time
	Name   string
	UserID int64
}

// JobSubmitter places an OCR job for a stored document.
type JobSubmitter interface {
	Submit(ctx context.Context, doc model.Document, subject model.Subject) error
}

// DocumentService defines the use cases for handling documents.
// Errors with a business meaning are *apperr.Error values.
type DocumentService interface {
	// Add downloads the file, stores it under the subject folder, records it as waitingOCR
	// and queues it for OCR.
	Add(ctx context.Context, in AddDocumentInput) (*model.Document, error)

	// List returns the documents of a subject, newest first.
	List(ctx context.Context, subjectID int64) ([]model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Update edits the metadata of a document, enforcing the status transitions.
	Update(ctx context.Context, id string, in UpdateDocumentInput) (*model.Document, error)

	// UpdateData stores the processed JSON data of a document.
	UpdateData(ctx context.Context, id string, userID int64, data string) error

	GetData(ctx context.Context, id string) (*model.DocumentData, error)
	GetDataRaw(ctx context.Context, id string) (*model.DocumentDataRaw, error)

	// GetOriginalURL returns a time limited url of the stored original file.
	GetOriginalURL(ctx context.Context, id string) (string, error)

	// Delete marks a document as deleted. The stored file is kept.
	Delete(ctx context.Context, id string, userID int64) error

	// Resubmit queues a document that is still waiting for OCR again.
	Resubmit(ctx context.Context, id string) error
}

// Options tune ingestion side effects.
type Options struct {
	EnqueueFailurePolicy string
	OriginalURLExpiry    time.Duration
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	docs      repository.DocumentRepository
	subjects  repository.SubjectRepository
	store     storage.Storage
	fetcher   download.Downloader
	submitter JobSubmitter
	dedup     Deduplicator
	opts      Options
	log       zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	docs repository.DocumentRepository,
	subjects repository.SubjectRepository,
	store storage.Storage,
	fetcher download.Downloader,
	submitter JobSubmitter,
	opts Options,
	log zerolog.Logger,
) DocumentService {
	if opts.EnqueueFailurePolicy == "" {
		opts.EnqueueFailurePolicy = config.EnqueuePolicyLeave
	}
	if opts.OriginalURLExpiry <= 0 {
		opts.OriginalURLExpiry = 60 * time.Minute
	}
	return &documentService{
		docs:      docs,
		subjects:  subjects,
		store:     store,
		fetcher:   fetcher,
		submitter: submitter,
		dedup:     NewDeduplicator(docs),
		opts:      opts,
		log:       log.With().Str("component", "document_service").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

func (s *documentService) Add(ctx context.Context, in AddDocumentInput) (*model.Document, error) {
	if fields := validateAdd(in); len(fields) > 0 {
		return nil, apperr.Validation.WithDetails(fields)
	}

	subject, err := s.subjects.FindByID(ctx, in.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.UnknownSubject
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}

	content, err := s.fetcher.Fetch(ctx, in.DownloadURL)
	if err != nil {
		if errors.Is(err, download.ErrTimeout) {
			return nil, apperr.DownloadTimeout.Wrap(err)
		}
		return nil, apperr.DownloadFailed.Wrap(err)
	}

	hash := ContentHash(content)
	dup, err := s.dedup.Exists(ctx, hash, in.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		return nil, apperr.DocumentAlreadyExists
	}

	id := s.newID()
	key := storage.DocumentPath(*subject, in.Type, id)
	if err := s.storeOriginal(ctx, *subject, in.Type, key, content); err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:           id,
		SubjectID:    in.SubjectID,
		JobID:        in.JobID,
		Type:         in.Type,
		Status:       model.StatusWaitingOCR,
		Date:         in.Date,
		Name:         in.Name,
		ContentHash:  hash,
		DownloadURL:  in.DownloadURL,
		OriginalPath: key,
		CreatedBy:    in.UserID,
		CreatedAt:    s.now(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Error().Str("event", "rollback_delete_failed").Str("key", key).Err(delErr).Send()
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.DocumentAlreadyExists
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if err := s.submitter.Submit(ctx, *stored, *subject); err != nil {
		return nil, s.enqueueFailed(ctx, *stored, in.UserID, err)
	}
	return stored, nil
}

func (s *documentService) storeOriginal(ctx context.Context, subject model.Subject, t model.DocumentType, key string, content []byte) error {
	if err := s.store.EnsureDir(ctx, subject.Folder()); err != nil {
		return fmt.Errorf("ensure subject folder: %w", err)
	}
	if err := s.store.EnsureDir(ctx, storage.SubjectTypeDir(subject, t)); err != nil {
		return fmt.Errorf("ensure type folder: %w", err)
	}
	_, err := s.store.Put(ctx, key, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: http.DetectContentType(content),
	})
	if err != nil {
		return fmt.Errorf("upload to storage: %w", err)
	}
	return nil
}

func (s *documentService) enqueueFailed(ctx context.Context, doc model.Document, userID int64, cause error) error {
	log := s.log.With().Str("document_id", doc.ID).Str("policy", s.opts.EnqueueFailurePolicy).Logger()
	log.Error().Str("event", "ocr_enqueue_failed").Err(cause).Send()

	if s.opts.EnqueueFailurePolicy != config.EnqueuePolicyRollback {
		// the record stays waitingOCR; the id lets an operator resubmit it
		return apperr.OCREnqueueFailed.WithDetails(map[string]string{"documentId": doc.ID}).Wrap(cause)
	}

	if err := s.docs.Delete(ctx, doc.ID, userID); err != nil {
		log.Error().Str("event", "enqueue_rollback_failed").Str("step", "record").Err(err).Send()
	}
	if err := s.store.Delete(ctx, doc.OriginalPath); err != nil {
		log.Error().Str("event", "enqueue_rollback_failed").Str("step", "object").Err(err).Send()
	}
	return apperr.OCREnqueueFailed.Wrap(cause)
}

func (s *documentService) List(ctx context.Context, subjectID int64) ([]model.Document, error) {
	if subjectID <= 0 {
		return nil, apperr.Validation.WithDetails([]apperr.FieldError{{Field: "subjectId", Message: "must be a positive integer"}})
	}
	return s.docs.List(ctx, subjectID)
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, id string, in UpdateDocumentInput) (*model.Document, error) {
	if fields := validateUpdate(in); len(fields) > 0 {
		return nil, apperr.Validation.WithDetails(fields)
	}

	current, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !model.CanTransition(current.Status, in.Status) {
		return nil, apperr.InvalidStatusTransition.WithDetails(map[string]string{
			"from": current.Status.String(),
			"to":   in.Status.String(),
		})
	}

	meta := model.DocumentMetadata{
		JobID:     in.JobID,
		Type:      in.Type,
		Status:    in.Status,
		Date:      in.Date,
		Name:      in.Name,
		UpdatedBy: in.UserID,
	}
	if err := s.docs.UpdateMetadata(ctx, id, current.Status, meta); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.Conflict
		}
		return nil, notFound(err)
	}
	return s.Get(ctx, id)
}

func (s *documentService) UpdateData(ctx context.Context, id string, userID int64, data string) error {
	if !json.Valid([]byte(data)) {
		return apperr.Validation.WithDetails([]apperr.FieldError{{Field: "data", Message: "must be valid JSON"}})
	}
	return notFound(s.docs.UpdateData(ctx, id, userID, data))
}

func (s *documentService) GetData(ctx context.Context, id string) (*model.DocumentData, error) {
	d, err := s.docs.FindData(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (s *documentService) GetDataRaw(ctx context.Context, id string) (*model.DocumentDataRaw, error) {
	d, err := s.docs.FindDataRaw(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (s *documentService) GetOriginalURL(ctx context.Context, id string) (string, error) {
	key, err := s.docs.FindOriginalPath(ctx, id)
	if err != nil {
		return "", notFound(err)
	}
	u, err := s.store.PresignGet(ctx, key, s.opts.OriginalURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign original: %w", err)
	}
	return u, nil
}

func (s *documentService) Delete(ctx context.Context, id string, userID int64) error {
	return notFound(s.docs.Delete(ctx, id, userID))
}

func (s *documentService) Resubmit(ctx context.Context, id string) error {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if doc.Status != model.StatusWaitingOCR {
		return apperr.InvalidStatusTransition.WithDetails(map[string]string{
			"from": doc.Status.String(),
			"to":   model.StatusWaitingOCR.String(),
		})
	}
	subject, err := s.subjects.FindByID(ctx, doc.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.UnknownSubject
		}
		return fmt.Errorf("find subject: %w", err)
	}
	if err := s.submitter.Submit(ctx, *doc, *subject); err != nil {
		return apperr.OCREnqueueFailed.WithDetails(map[string]string{"documentId": doc.ID}).Wrap(err)
	}
	return nil
}

// notFound maps a missing row to DOCUMENT_NOT_FOUND and passes everything else through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.DocumentNotFound
	}
	return err
}

func validateAdd(in AddDocumentInput) []apperr.FieldError {
	var fields []apperr.FieldError
	if in.SubjectID <= 0 {
		fields = append(fields, apperr.FieldError{Field: "subjectId", Message: "must be a positive integer"})
	}
	if in.JobID < 0 {
		fields = append(fields, apperr.FieldError{Field: "jobId", Message: "must not be negative"})
	}
	if !in.Type.Valid() {
		fields = append(fields, apperr.FieldError{Field: "type", Message: "unknown document type"})
	}
	if !in.Status.Valid() {
		fields = append(fields, apperr.FieldError{Field: "status", Message: "unknown document status"})
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "is required"})
	}
	if u, err := url.Parse(in.DownloadURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fields = append(fields, apperr.FieldError{Field: "downloadUrl", Message: "must be an absolute http(s) url"})
	}
	return fields
}

func validateUpdate(in UpdateDocumentInput) []apperr.FieldError {
	var fields []apperr.FieldError
	if in.JobID < 0 {
		fields = append(fields, apperr.FieldError{Field: "jobId", Message: "must not be negative"})
	}
	if !in.Type.Valid() {
		fields = append(fields, apperr.FieldError{Field: "type", Message: "unknown document type"})
	}
	if !in.Status.Valid() {
		fields = append(fields, apperr.FieldError{Field: "status", Message: "unknown document status"})
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "is required"})
	}
	return fields
}
