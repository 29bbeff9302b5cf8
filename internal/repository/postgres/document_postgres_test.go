package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"casedocs/internal/model"
	"casedocs/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var documentRowColumns = []string{
	"id", "subject_id", "job_id", "type", "status", "doc_date", "name", "content_hash", "download_url",
	"original_path", "data", "data_raw", "created_by", "created_at", "updated_by", "updated_at",
}

func documentRow(id string, status model.DocumentStatus, created time.Time) []driver.Value {
	return []driver.Value{
		id, int64(7), int64(0), int16(model.DocumentTypeAssetDeclaration), int16(status), nil, "declaration.pdf",
		"3f786850e387550fdab836ed7e6dc881de23001b", "https://example.org/declaration.pdf",
		"Doe-John-abc123/DA/" + id, nil, nil, int64(42), created, nil, nil,
	}
}

func newDoc(now time.Time) *model.Document {
	return &model.Document{
		ID:           "test-uuid",
		SubjectID:    7,
		Type:         model.DocumentTypeAssetDeclaration,
		Status:       model.StatusWaitingOCR,
		Name:         "declaration.pdf",
		ContentHash:  "3f786850e387550fdab836ed7e6dc881de23001b",
		DownloadURL:  "https://example.org/declaration.pdf",
		OriginalPath: "Doe-John-abc123/DA/test-uuid",
		CreatedBy:    42,
		CreatedAt:    now,
	}
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		doc := newDoc(now)
		rows := sqlmock.NewRows(documentRowColumns).AddRow(documentRow(doc.ID, model.StatusWaitingOCR, now)...)

		mock.ExpectQuery("INSERT INTO documents").
			WithArgs(doc.ID, doc.SubjectID, doc.JobID, doc.Type, doc.Status, sqlmock.AnyArg(), doc.Name,
				doc.ContentHash, doc.DownloadURL, doc.OriginalPath, doc.CreatedBy, doc.CreatedAt).
			WillReturnRows(rows)

		result, err := repo.Create(ctx, doc)

		assert.NoError(t, err)
		if assert.NotNil(t, result) {
			assert.Equal(t, doc.ID, result.ID)
			assert.Equal(t, model.StatusWaitingOCR, result.Status)
			assert.Nil(t, result.Data)
			assert.Nil(t, result.UpdatedAt)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		doc := newDoc(now)
		mock.ExpectQuery("INSERT INTO documents").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_documents_hash_url"})

		result, err := repo.Create(ctx, doc)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(documentRowColumns).AddRow(documentRow("test-id", model.StatusOCRCompleted, time.Now())...)

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		if assert.NotNil(t, doc) {
			assert.Equal(t, "test-id", doc.ID)
			assert.Equal(t, model.StatusOCRCompleted, doc.Status)
		}
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		newer := time.Now()
		rows := sqlmock.NewRows(documentRowColumns).
			AddRow(documentRow("b", model.StatusWaitingOCR, newer)...).
			AddRow(documentRow("a", model.StatusValidated, newer.Add(-time.Hour))...)

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE subject_id = (.+) ORDER BY created_at DESC").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		res, err := repo.List(ctx, 7)

		assert.NoError(t, err)
		assert.Len(t, res, 2)
		assert.Equal(t, "b", res[0].ID)
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE subject_id").
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows(documentRowColumns))

		res, err := repo.List(ctx, 8)

		assert.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res)
	})
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("logical delete", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET deleted = TRUE").
			WithArgs("test-id", int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(ctx, "test-id", 42)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already deleted", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET deleted = TRUE").
			WithArgs("gone", int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, "gone", 42)

		assert.True(t, IsNoRowsError(err))
	})
}

func TestDocumentPostgres_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("hash", "https://example.org/a.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "hash", "https://example.org/a.pdf")

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	raw := `{"pages":1}`

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET status = (.+) WHERE id = (.+) AND status <> ").
			WithArgs("d1", model.StatusOCRCompleted, sql.NullString{String: raw, Valid: true}, model.StatusValidated).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, "d1", model.StatusOCRCompleted, &raw)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validated is locked", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET status").
			WithArgs("d2", model.StatusOCRError, sql.NullString{}, model.StatusValidated).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT status FROM documents").
			WithArgs("d2").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(int16(model.StatusValidated)))

		err := repo.UpdateStatus(ctx, "d2", model.StatusOCRError, nil)

		assert.ErrorIs(t, err, repository.ErrStatusLocked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown document", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT status FROM documents").
			WithArgs("d3").
			WillReturnError(sql.ErrNoRows)

		err := repo.UpdateStatus(ctx, "d3", model.StatusOCRError, nil)

		assert.True(t, IsNoRowsError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_UpdateMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	meta := model.DocumentMetadata{
		JobID:     3,
		Type:      model.DocumentTypeInterestDeclaration,
		Status:    model.StatusValidated,
		Name:      "renamed.pdf",
		UpdatedBy: 42,
	}

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET job_id").
			WithArgs("d1", model.StatusOCRCompleted, meta.JobID, meta.Type, meta.Status, sqlmock.AnyArg(), meta.Name, meta.UpdatedBy).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateMetadata(ctx, "d1", model.StatusOCRCompleted, meta))
	})

	t.Run("status moved underneath", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET job_id").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT status FROM documents").
			WithArgs("d1").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(int16(model.StatusOCRError)))

		err := repo.UpdateMetadata(ctx, "d1", model.StatusOCRCompleted, meta)

		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_FindDataRaw(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectQuery("SELECT id, data_raw FROM documents").
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data_raw"}).AddRow("d1", nil))

	res, err := repo.FindDataRaw(context.Background(), "d1")

	assert.NoError(t, err)
	assert.Equal(t, "d1", res.ID)
	assert.Nil(t, res.DataRaw)
}

func TestSubjectPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSubjectPostgres(db)

	mock.ExpectQuery("SELECT id, uuid, first_name, middle_name, last_name FROM subjects").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "first_name", "middle_name", "last_name"}).
			AddRow(int64(7), "abc123", "John", "", "Doe"))

	s, err := repo.FindByID(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, "Doe-John-abc123", s.Folder())
}

func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
