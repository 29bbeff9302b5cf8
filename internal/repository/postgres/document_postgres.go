package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"casedocs/internal/model"
	"casedocs/internal/repository"
)

const uniqueViolation = "23505"

const documentColumns = `id, subject_id, job_id, type, status, doc_date, name, content_hash, download_url,
		original_path, data, data_raw, created_by, created_at, updated_by, updated_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d         model.Document
		date      sql.NullTime
		data      sql.NullString
		dataRaw   sql.NullString
		updatedBy sql.NullInt64
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.SubjectID,
		&d.JobID,
		&d.Type,
		&d.Status,
		&date,
		&d.Name,
		&d.ContentHash,
		&d.DownloadURL,
		&d.OriginalPath,
		&data,
		&dataRaw,
		&d.CreatedBy,
		&d.CreatedAt,
		&updatedBy,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if date.Valid {
		d.Date = date.Time
	}
	if data.Valid {
		d.Data = &data.String
	}
	if dataRaw.Valid {
		d.DataRaw = &dataRaw.String
	}
	if updatedBy.Valid {
		d.UpdatedBy = &updatedBy.Int64
	}
	if updatedAt.Valid {
		d.UpdatedAt = &updatedAt.Time
	}
	return &d, nil
}

func nullDate(d model.Document) sql.NullTime {
	return sql.NullTime{Time: d.Date, Valid: !d.Date.IsZero()}
}

// Create inserts a new document row and returns the stored record.
// A unique violation on (content_hash, download_url) is reported as repository.ErrDuplicate.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, subject_id, job_id, type, status, doc_date, name, content_hash,
			download_url, original_path, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.SubjectID,
		doc.JobID,
		doc.Type,
		doc.Status,
		nullDate(*doc),
		doc.Name,
		doc.ContentHash,
		doc.DownloadURL,
		doc.OriginalPath,
		doc.CreatedBy,
		doc.CreatedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single non-deleted document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND NOT deleted
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns the documents of a subject ordered newest first.
func (r *DocumentPostgres) List(ctx context.Context, subjectID int64) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE subject_id = $1 AND NOT deleted
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete marks a document as deleted. It returns sql.ErrNoRows if no live row matched.
func (r *DocumentPostgres) Delete(ctx context.Context, id string, userID int64) error {
	const q = `
		UPDATE documents
		SET deleted = TRUE, updated_by = $2, updated_at = now()
		WHERE id = $1 AND NOT deleted
	`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// Exists reports whether a live document with the same content hash and url exists.
func (r *DocumentPostgres) Exists(ctx context.Context, contentHash, downloadURL string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM documents
			WHERE content_hash = $1 AND download_url = $2 AND NOT deleted
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, contentHash, downloadURL).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateMetadata overwrites name, type, status, date and job of a document whose
// status is still the expected one.
func (r *DocumentPostgres) UpdateMetadata(ctx context.Context, id string, expected model.DocumentStatus, meta model.DocumentMetadata) error {
	const q = `
		UPDATE documents
		SET job_id = $3, type = $4, status = $5, doc_date = $6, name = $7, updated_by = $8, updated_at = now()
		WHERE id = $1 AND status = $2 AND NOT deleted
	`
	res, err := r.db.ExecContext(ctx, q,
		id,
		expected,
		meta.JobID,
		meta.Type,
		meta.Status,
		sql.NullTime{Time: meta.Date, Valid: !meta.Date.IsZero()},
		meta.Name,
		meta.UpdatedBy,
	)
	if err != nil {
		return err
	}
	if err := expectOneRow(res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, ferr := r.currentStatus(ctx, id); ferr != nil {
				return ferr
			}
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// UpdateData stores the processed data of a document.
func (r *DocumentPostgres) UpdateData(ctx context.Context, id string, userID int64, data string) error {
	const q = `
		UPDATE documents
		SET data = $3, updated_by = $2, updated_at = now()
		WHERE id = $1 AND NOT deleted
	`
	res, err := r.db.ExecContext(ctx, q, id, userID, data)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// UpdateStatus overwrites status and raw data in a single statement that skips validated rows.
func (r *DocumentPostgres) UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, dataRaw *string) error {
	const q = `
		UPDATE documents
		SET status = $2, data_raw = $3, updated_at = now()
		WHERE id = $1 AND NOT deleted AND status <> $4
	`
	raw := sql.NullString{}
	if dataRaw != nil {
		raw = sql.NullString{String: *dataRaw, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q, id, status, raw, model.StatusValidated)
	if err != nil {
		return err
	}
	if err := expectOneRow(res); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		current, ferr := r.currentStatus(ctx, id)
		if ferr != nil {
			return ferr
		}
		if current == model.StatusValidated {
			return repository.ErrStatusLocked
		}
		return repository.ErrConflict
	}
	return nil
}

// FindData returns the processed data of a document.
func (r *DocumentPostgres) FindData(ctx context.Context, id string) (*model.DocumentData, error) {
	const q = `SELECT id, data FROM documents WHERE id = $1 AND NOT deleted`
	var (
		out  model.DocumentData
		data sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&out.ID, &data); err != nil {
		return nil, err
	}
	if data.Valid {
		out.Data = &data.String
	}
	return &out, nil
}

// FindDataRaw returns the raw OCR data of a document.
func (r *DocumentPostgres) FindDataRaw(ctx context.Context, id string) (*model.DocumentDataRaw, error) {
	const q = `SELECT id, data_raw FROM documents WHERE id = $1 AND NOT deleted`
	var (
		out model.DocumentDataRaw
		raw sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&out.ID, &raw); err != nil {
		return nil, err
	}
	if raw.Valid {
		out.DataRaw = &raw.String
	}
	return &out, nil
}

// FindOriginalPath returns the storage path of the original file.
func (r *DocumentPostgres) FindOriginalPath(ctx context.Context, id string) (string, error) {
	const q = `SELECT original_path FROM documents WHERE id = $1 AND NOT deleted`
	var path string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&path); err != nil {
		return "", err
	}
	return path, nil
}

func (r *DocumentPostgres) currentStatus(ctx context.Context, id string) (model.DocumentStatus, error) {
	const q = `SELECT status FROM documents WHERE id = $1 AND NOT deleted`
	var s model.DocumentStatus
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s); err != nil {
		return 0, err
	}
	return s, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
