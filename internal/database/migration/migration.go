package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_subjects",
		SQL: `CREATE TABLE IF NOT EXISTS subjects (
  id          BIGSERIAL   PRIMARY KEY,
  uuid        TEXT        NOT NULL UNIQUE,
  first_name  TEXT        NOT NULL,
  middle_name TEXT        NOT NULL DEFAULT '',
  last_name   TEXT        NOT NULL,
  deleted     BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            UUID        PRIMARY KEY,
  subject_id    BIGINT      NOT NULL REFERENCES subjects (id),
  job_id        BIGINT      NOT NULL DEFAULT 0,
  type          SMALLINT    NOT NULL CHECK (type IN (0, 1)),
  status        SMALLINT    NOT NULL,
  doc_date      DATE,
  name          TEXT        NOT NULL,
  content_hash  TEXT        NOT NULL,
  download_url  TEXT        NOT NULL,
  original_path TEXT        NOT NULL,
  data          TEXT,
  data_raw      TEXT,
  created_by    BIGINT      NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_by    BIGINT,
  updated_at    TIMESTAMPTZ,
  deleted       BOOLEAN     NOT NULL DEFAULT FALSE
);`,
	},
	{
		Name: "create_unique_index_documents_hash_url",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_documents_hash_url
  ON documents (content_hash, download_url) WHERE NOT deleted;`,
	},
	{
		Name: "create_index_documents_subject_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_subject_id ON documents (subject_id) WHERE NOT deleted;`,
	},
	{
		Name: "create_index_documents_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (status);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Send()

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Err(err).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Send()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Err(err).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Send()
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Send()
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Send()

	return nil
}
