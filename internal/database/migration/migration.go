package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is current.
const sentinelTable = "public.audit_records"

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id               UUID        PRIMARY KEY,
  filename         TEXT        NOT NULL,
  storage_path     TEXT        NOT NULL UNIQUE,
  size             BIGINT      NOT NULL CHECK (size >= 0),
  content_type     TEXT        NOT NULL,
  owner_id         TEXT        NOT NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  public_token     TEXT        UNIQUE,
  token_expires_at TIMESTAMPTZ,
  CHECK ((public_token IS NULL) = (token_expires_at IS NULL))
);`,
	},
	{
		Name: "create_index_documents_owner_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_created ON documents (owner_id, created_at DESC);`,
	},
	{
		Name: "create_table_signatures",
		SQL: `CREATE TABLE IF NOT EXISTS signatures (
  id               UUID             PRIMARY KEY,
  document_id      UUID             NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  author_id        TEXT,
  x_frac           DOUBLE PRECISION NOT NULL CHECK (x_frac >= 0 AND x_frac <= 1),
  y_frac           DOUBLE PRECISION NOT NULL CHECK (y_frac >= 0 AND y_frac <= 1),
  page             INTEGER          NOT NULL CHECK (page >= 1),
  render_width     DOUBLE PRECISION NOT NULL CHECK (render_width > 0),
  render_height    DOUBLE PRECISION NOT NULL CHECK (render_height > 0),
  status           TEXT             NOT NULL CHECK (status IN ('Pending', 'Signed', 'Rejected')),
  rejection_reason TEXT             NOT NULL DEFAULT '',
  text             TEXT             NOT NULL,
  font_size        DOUBLE PRECISION NOT NULL CHECK (font_size > 0),
  font_color       TEXT             NOT NULL,
  created_at       TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_signatures_document_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_signatures_document_status ON signatures (document_id, status);`,
	},
	{
		Name: "create_table_audit_records",
		SQL: `CREATE TABLE IF NOT EXISTS audit_records (
  id            UUID        PRIMARY KEY,
  document_id   UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  action        TEXT        NOT NULL,
  actor         TEXT        NOT NULL,
  actor_contact TEXT        NOT NULL,
  source_ip     TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_records_document_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_records_document_created ON audit_records (document_id, created_at DESC);`,
	},
}

// EnsureMigrated checks if the sentinel table exists and runs migrations if it doesn't.
// Every step is idempotent, so a partially applied schema is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
