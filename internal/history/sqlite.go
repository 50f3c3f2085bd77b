// Package history persists posted transaction fingerprints and confirmed
// classifications in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/textutils"

	_ "github.com/mattn/go-sqlite3"
)

// Schema creates the history tables. Corrections are append-only.
const Schema = `
CREATE TABLE IF NOT EXISTS posted (
	fingerprint    TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL,
	doc_number     TEXT NOT NULL DEFAULT '',
	batch_id       TEXT NOT NULL DEFAULT '',
	posted_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS corrections (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	key          TEXT NOT NULL,
	description  TEXT NOT NULL,
	gl_code      TEXT NOT NULL,
	fund_code    TEXT NOT NULL DEFAULT '',
	module       TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL DEFAULT '',
	confirmed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS corrections_key ON corrections (key);
`

// lookupChunk bounds the number of placeholders in one IN clause.
const lookupChunk = 500

// Posting is one transaction recorded as posted.
type Posting struct {
	Fingerprint   string
	TransactionID string
	DocNumber     string
	BatchID       string
	PostedAt      time.Time
}

// SQLiteStore is the SQLite-backed history.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewSQLite opens (creating if needed) the database at path and applies the schema.
func NewSQLite(path string, logger logging.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}
	logger = logging.OrDefault(logger)
	logger.Debug("Opened history store", logging.F(logging.FieldFile, path))
	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

// Seen returns the document number (or transaction id when none was issued) of every
// fingerprint already posted.
func (s *SQLiteStore) Seen(ctx context.Context, fingerprints []string) (map[string]string, error) {
	out := make(map[string]string)
	for start := 0; start < len(fingerprints); start += lookupChunk {
		end := start + lookupChunk
		if end > len(fingerprints) {
			end = len(fingerprints)
		}
		chunk := fingerprints[start:end]
		args := make([]interface{}, len(chunk))
		for i, fp := range chunk {
			args[i] = fp
		}
		query := `SELECT fingerprint, transaction_id, doc_number FROM posted WHERE fingerprint IN (?` +
			strings.Repeat(",?", len(chunk)-1) + `)`

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query posted fingerprints: %w", err)
		}
		for rows.Next() {
			var fp, txID, doc string
			if err := rows.Scan(&fp, &txID, &doc); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan posted fingerprint: %w", err)
			}
			if doc != "" {
				out[fp] = doc
			} else {
				out[fp] = txID
			}
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read posted fingerprints: %w", err)
		}
	}
	return out, nil
}

// RecordPosted stores postings in one transaction. A fingerprint already posted keeps
// its first record.
func (s *SQLiteStore) RecordPosted(ctx context.Context, postings []Posting) error {
	if len(postings) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO posted (fingerprint, transaction_id, doc_number, batch_id, posted_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare posting insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		if p.Fingerprint == "" {
			continue
		}
		at := p.PostedAt
		if at.IsZero() {
			at = s.now()
		}
		if _, err := stmt.ExecContext(ctx, p.Fingerprint, p.TransactionID, p.DocNumber, p.BatchID, at.UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record posting %s: %w", p.TransactionID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit postings: %w", err)
	}
	s.logger.Info("Recorded posted transactions", logging.F(logging.FieldCount, len(postings)))
	return nil
}

// AppendCorrection stores a confirmed classification. The key defaults to the history
// key of the description.
func (s *SQLiteStore) AppendCorrection(ctx context.Context, c models.Correction) (models.Correction, error) {
	if c.Key == "" {
		c.Key = textutils.HistoryKey(c.Description)
	}
	if c.Key == "" || c.GLCode == "" {
		return c, fmt.Errorf("correction needs a description and a GL code")
	}
	if c.ConfirmedAt.IsZero() {
		c.ConfirmedAt = s.now()
	}
	c.ConfirmedAt = c.ConfirmedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (key, description, gl_code, fund_code, module, source, confirmed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Key, c.Description, c.GLCode, c.FundCode, string(c.Module), c.Source, c.ConfirmedAt,
	)
	if err != nil {
		return c, fmt.Errorf("failed to append correction: %w", err)
	}
	s.logger.Info("Recorded confirmed classification",
		logging.F(logging.FieldGLCode, c.GLCode), logging.F(logging.FieldModule, string(c.Module)))
	return c, nil
}

// LoadCorrections returns every correction in insertion order.
func (s *SQLiteStore) LoadCorrections(ctx context.Context) ([]models.Correction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, description, gl_code, fund_code, module, source, confirmed_at
		FROM corrections ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var out []models.Correction
	for rows.Next() {
		var (
			c      models.Correction
			module string
		)
		if err := rows.Scan(&c.Key, &c.Description, &c.GLCode, &c.FundCode, &module, &c.Source, &c.ConfirmedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		c.Module = models.Module(module)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corrections: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
