package store

import (
	"database/sql"
	"fmt"
	"strings"
)

const createAudits = `
CREATE TABLE IF NOT EXISTS audits (
	id           TEXT PRIMARY KEY,
	url          TEXT NOT NULL,
	website_type TEXT NOT NULL,
	status       TEXT NOT NULL,
	final_score  INTEGER NOT NULL,
	grade        TEXT NOT NULL,
	risk         TEXT NOT NULL,
	issues       TEXT NOT NULL,
	breakdown    TEXT,
	html_blob    TEXT,
	created_at   TEXT NOT NULL,
	completed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audits_url ON audits(url);
CREATE INDEX IF NOT EXISTS idx_audits_created_at ON audits(created_at);
`

// applySchema sets pragmas and creates the schema. Migrations are additive
// column adds only; a column that already exists is not an error.
func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(createAudits); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	migrations := []string{
		"ALTER TABLE audits ADD COLUMN html_blob TEXT",
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil && !isDuplicateColumn(err) {
			return fmt.Errorf("migrate %q: %w", m, err)
		}
	}

	return nil
}

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}
