// Package migration creates and evolves the verification schema.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

var steps = []migrationStep{
	{
		Name: "create_table_farms",
		SQL: `CREATE TABLE IF NOT EXISTS farms (
  id            UUID        PRIMARY KEY,
  legal_name    TEXT        NOT NULL,
  tag           TEXT        NOT NULL,
  tax_id        TEXT        NOT NULL,
  contact_name  TEXT        NOT NULL DEFAULT '',
  contact_email TEXT        NOT NULL DEFAULT '',
  contact_phone TEXT        NOT NULL DEFAULT '',
  active        BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT farms_tag_key UNIQUE (tag),
  CONSTRAINT farms_tax_id_key UNIQUE (tax_id)
);`,
	},
	{
		Name: "create_index_farms_legal_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_farms_legal_name ON farms (legal_name, id);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                UUID        PRIMARY KEY,
  seq               BIGSERIAL   NOT NULL,
  farm_id           UUID        NOT NULL REFERENCES farms (id),
  document_type_id  INTEGER     NOT NULL CHECK (document_type_id > 0),
  file_path         TEXT,
  file_name         TEXT,
  file_size         BIGINT      CHECK (file_size IS NULL OR file_size >= 0),
  file_content_type TEXT,
  status            TEXT        NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
  note              TEXT        NOT NULL DEFAULT '',
  comment           TEXT        NOT NULL DEFAULT '',
  reviewer_id       TEXT        NOT NULL DEFAULT '',
  submitted_at      TIMESTAMPTZ NOT NULL,
  reviewed_at       TIMESTAMPTZ,
  CONSTRAINT documents_reviewed_at_matches_status CHECK ((status = 'PENDING') = (reviewed_at IS NULL))
);`,
	},
	{
		Name: "create_index_documents_farm_type",
		SQL: `CREATE INDEX IF NOT EXISTS idx_documents_farm_type_latest
  ON documents (farm_id, document_type_id, submitted_at DESC, seq DESC);`,
	},
	{
		Name: "create_index_documents_pending",
		SQL: `CREATE INDEX IF NOT EXISTS idx_documents_pending
  ON documents (submitted_at, seq) WHERE status = 'PENDING';`,
	},
	{
		Name: "create_table_role_grants",
		SQL: `CREATE TABLE IF NOT EXISTS role_grants (
  id         UUID        PRIMARY KEY,
  user_id    TEXT        NOT NULL,
  role       TEXT        NOT NULL CHECK (role IN ('ADMIN', 'FINCA', 'CLIENTE')),
  status     TEXT        NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
  metadata   JSONB       NOT NULL DEFAULT '{}'::jsonb,
  decided_by TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_role_grants_one_pending",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS role_grants_one_pending
  ON role_grants (user_id, role) WHERE status = 'PENDING';`,
	},
	{
		Name: "create_index_role_grants_farm",
		SQL: `CREATE INDEX IF NOT EXISTS idx_role_grants_farm
  ON role_grants ((metadata->>'farm_id')) WHERE role = 'FINCA';`,
	},
	{
		Name: "create_index_role_grants_one_live_finca_per_farm",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS role_grants_one_live_finca_per_farm
  ON role_grants ((metadata->>'farm_id'))
  WHERE role = 'FINCA' AND status IN ('PENDING', 'APPROVED');`,
	},
	{
		Name: "create_index_role_grants_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_role_grants_user ON role_grants (user_id, created_at DESC);`,
	},
}

// Names lists every known step in application order.
func Names() []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name
	}
	return out
}

// Run applies the steps not yet recorded in schema_migrations, each in its
// own transaction, and returns the names it applied.
func Run(ctx context.Context, db *sql.DB, logger *zap.Logger) ([]string, error) {
	start := time.Now()
	logger = logger.With(zap.String("component", "database"))
	logger.Info("db_migration_check")

	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		logger.Error("db_migration_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("create migration ledger: %w", err)
	}

	done, err := appliedSteps(ctx, db)
	if err != nil {
		logger.Error("db_migration_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	var applied []string
	for _, step := range steps {
		if done[step.Name] {
			continue
		}
		stepStart := time.Now()
		if err := apply(ctx, db, step); err != nil {
			logger.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("duration", time.Since(start)),
			)
			return applied, fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		applied = append(applied, step.Name)
		logger.Info("db_migration_step",
			zap.String("migration_step", step.Name),
			zap.Duration("step_duration", time.Since(stepStart)),
		)
	}

	if len(applied) == 0 {
		logger.Info("db_migration_skip", zap.String("reason", "schema up to date"), zap.Duration("duration", time.Since(start)))
		return nil, nil
	}
	logger.Info("db_migration_success", zap.Int("steps", len(applied)), zap.Duration("duration", time.Since(start)))
	return applied, nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = true
	}
	return done, rows.Err()
}

func apply(ctx context.Context, db *sql.DB, step migrationStep) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
