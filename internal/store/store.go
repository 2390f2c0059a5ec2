// Package store persists audit results in SQLite and the fetched HTML in a
// content-addressed filesystem blob store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

var ErrNotFound = errors.New("audit not found")

// Store is the persistence contract the service and server depend on.
type Store interface {
	Create(ctx context.Context, result *model.AuditResult, html []byte) error
	Update(ctx context.Context, result *model.AuditResult, html []byte) error
	Get(ctx context.Context, id string) (*model.AuditResult, error)
	GetHTML(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context, limit, offset int) ([]*model.AuditResult, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store on SQLite plus a BlobStore for page HTML.
type SQLiteStore struct {
	db     *sql.DB
	blobs  *BlobStore
	logger logging.Logger
}

// NewSQLiteStore opens (or creates) the store rooted at dataDir.
func NewSQLiteStore(dataDir string, logger logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		return nil, errors.New("store: nil logger provided")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "pagegrade.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	blobs, err := NewBlobStore(filepath.Join(dataDir, "blobs"))
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("store initialized", logging.Field{Key: "data_dir", Value: dataDir})

	return &SQLiteStore{
		db:     db,
		blobs:  blobs,
		logger: logger.With(logging.Field{Key: "component", Value: "store"}),
	}, nil
}

// Create persists result. html may be nil (failed fetches have no page);
// when present it is stored content-addressed and referenced from the row.
func (s *SQLiteStore) Create(ctx context.Context, result *model.AuditResult, html []byte) error {
	issues, breakdown, err := encodeResult(result)
	if err != nil {
		return err
	}

	var blobID sql.NullString
	if len(html) > 0 {
		id, err := s.blobs.Put(html)
		if err != nil {
			return fmt.Errorf("store html blob: %w", err)
		}
		blobID = sql.NullString{String: id, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audits (id, url, website_type, status, final_score, grade, risk,
			issues, breakdown, html_blob, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.URL, string(result.WebsiteType), result.Status,
		result.FinalScore, string(result.Grade), string(result.Risk),
		issues, breakdown, blobID,
		result.CreatedAt.UTC().Format(time.RFC3339Nano),
		result.CompletedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing audit row. html, when
// non-nil, attaches the fetched page to a row created before the fetch
// completed; an already attached blob is left alone.
func (s *SQLiteStore) Update(ctx context.Context, result *model.AuditResult, html []byte) error {
	issues, breakdown, err := encodeResult(result)
	if err != nil {
		return err
	}

	var blobID sql.NullString
	if len(html) > 0 {
		id, err := s.blobs.Put(html)
		if err != nil {
			return fmt.Errorf("store html blob: %w", err)
		}
		blobID = sql.NullString{String: id, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE audits SET status = ?, final_score = ?, grade = ?, risk = ?,
			issues = ?, breakdown = ?, completed_at = ?,
			html_blob = COALESCE(?, html_blob)
		WHERE id = ?`,
		result.Status, result.FinalScore, string(result.Grade), string(result.Risk),
		issues, breakdown,
		result.CompletedAt.UTC().Format(time.RFC3339Nano),
		blobID, result.ID)
	if err != nil {
		return fmt.Errorf("update audit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.AuditResult, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM audits WHERE id = ?`, id)
	return scanAudit(row)
}

// GetHTML returns the stored page HTML for an audit, or ErrNotFound when
// either the audit or its blob is missing.
func (s *SQLiteStore) GetHTML(ctx context.Context, id string) ([]byte, error) {
	var blobID sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT html_blob FROM audits WHERE id = ?`, id).Scan(&blobID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query html blob: %w", err)
	}
	if !blobID.Valid {
		return nil, ErrNotFound
	}
	return s.blobs.Get(blobID.String)
}

// List returns audits newest first. limit<=0 means no limit.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*model.AuditResult, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` FROM audits ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query audits: %w", err)
	}
	defer rows.Close()

	var out []*model.AuditResult
	for rows.Next() {
		result, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audits: %w", err)
	}
	return n, nil
}

// Delete removes one audit. Its HTML blob is content-addressed and may be
// shared with other audits of the same page, so it is only removed once no
// remaining row references it.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	var blobID sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT html_blob FROM audits WHERE id = ?`, id).Scan(&blobID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query audit: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM audits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete audit: %w", err)
	}
	if blobID.Valid {
		var refs int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM audits WHERE html_blob = ?`, blobID.String).Scan(&refs)
		if err != nil {
			s.logger.Warn("blob reference check failed",
				logging.Field{Key: "blob", Value: blobID.String},
				logging.Field{Key: "error", Value: err.Error()})
			return nil
		}
		if refs > 0 {
			return nil
		}
		if err := s.blobs.Delete(blobID.String); err != nil {
			s.logger.Warn("orphaned html blob",
				logging.Field{Key: "blob", Value: blobID.String},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}
	return nil
}

// DeleteAll clears every audit. Blobs are removed best-effort.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT html_blob FROM audits WHERE html_blob IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("query blobs: %w", err)
	}
	var blobIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan blob id: %w", err)
		}
		blobIDs = append(blobIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM audits`); err != nil {
		return fmt.Errorf("delete audits: %w", err)
	}
	for _, id := range blobIDs {
		_ = s.blobs.Delete(id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, url, website_type, status, final_score, grade, risk,
	issues, breakdown, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (*model.AuditResult, error) {
	var (
		r                    model.AuditResult
		websiteType          string
		grade, risk          string
		issues               string
		breakdown            sql.NullString
		createdAt, completed string
	)
	err := row.Scan(&r.ID, &r.URL, &websiteType, &r.Status, &r.FinalScore,
		&grade, &risk, &issues, &breakdown, &createdAt, &completed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan audit: %w", err)
	}

	r.WebsiteType = model.WebsiteType(websiteType)
	r.Grade = model.Grade(grade)
	r.Risk = model.RiskLevel(risk)

	if err := json.Unmarshal([]byte(issues), &r.Issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	if breakdown.Valid && breakdown.String != "" {
		var b model.ScoreBreakdown
		if err := json.Unmarshal([]byte(breakdown.String), &b); err != nil {
			return nil, fmt.Errorf("decode breakdown: %w", err)
		}
		r.Breakdown = &b
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if r.CompletedAt, err = time.Parse(time.RFC3339Nano, completed); err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}

	return &r, nil
}

func encodeResult(result *model.AuditResult) (issues string, breakdown sql.NullString, err error) {
	issueBytes, err := json.Marshal(result.Issues)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("encode issues: %w", err)
	}
	if result.Issues == nil {
		issueBytes = []byte("[]")
	}

	if result.Breakdown != nil {
		b, err := json.Marshal(result.Breakdown)
		if err != nil {
			return "", sql.NullString{}, fmt.Errorf("encode breakdown: %w", err)
		}
		breakdown = sql.NullString{String: string(b), Valid: true}
	}
	return string(issueBytes), breakdown, nil
}
