package postgres

import (
	"context"
	"database/sql"

	"casedocs/internal/model"
	"casedocs/internal/repository"
)

// SubjectPostgres reads subjects owned by the case management side of the schema.
type SubjectPostgres struct {
	db *sql.DB
}

func NewSubjectPostgres(db *sql.DB) *SubjectPostgres {
	return &SubjectPostgres{db: db}
}

var _ repository.SubjectRepository = (*SubjectPostgres)(nil)

// FindByID returns sql.ErrNoRows for unknown or deleted subjects.
func (r *SubjectPostgres) FindByID(ctx context.Context, id int64) (*model.Subject, error) {
	const q = `
		SELECT id, uuid, first_name, middle_name, last_name
		FROM subjects
		WHERE id = $1 AND NOT deleted
	`
	var s model.Subject
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Token, &s.FirstName, &s.MiddleName, &s.LastName); err != nil {
		return nil, err
	}
	return &s, nil
}
