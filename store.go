package tropiiify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// ErrTemplateNotFound is returned when a template id is not stored.
var ErrTemplateNotFound = errors.New("tropiiify: template not found")

// TemplateSource loads templates by id.
type TemplateSource interface {
	Template(ctx context.Context, id string) (Template, error)
}

// Store wraps a SQLite database holding templates and the export history.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS templates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS template_fields (
    template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    property TEXT NOT NULL,
    PRIMARY KEY (template_id, position)
);
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	if err != nil {
		return err
	}
	return s.migrate()
}

// migrate applies incremental schema migrations based on a version stored in the settings table.
func (s *Store) migrate() error {
	verStr, err := s.setting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version < 1 {
		version = 1
	}
	if version < 2 {
		if _, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    output_root TEXT NOT NULL,
    exported INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    elapsed_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
		version = 2
	}
	return s.setSetting("schema_version", strconv.Itoa(version))
}

func (s *Store) setting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Template returns the template stored under id with its fields in order.
func (s *Store) Template(ctx context.Context, id string) (Template, error) {
	t := Template{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT name FROM templates WHERE id = ?`, id).Scan(&t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if err != nil {
		return Template{}, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT label, property FROM template_fields WHERE template_id = ? ORDER BY position`, id)
	if err != nil {
		return Template{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var f TemplateField
		if err := rows.Scan(&f.Label, &f.Property); err != nil {
			return Template{}, err
		}
		t.Fields = append(t.Fields, f)
	}
	return t, rows.Err()
}

// ListTemplates returns every stored template without fields, ordered by id.
func (s *Store) ListTemplates(ctx context.Context) ([]Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM templates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTemplate replaces the template and all of its fields.
func (s *Store) SaveTemplate(ctx context.Context, t Template) error {
	if t.ID == "" {
		return errors.New("tropiiify: template id required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM template_fields WHERE template_id = ?`, t.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO templates (id, name) VALUES (?, ?)`, t.ID, t.Name); err != nil {
		return err
	}
	for i, f := range t.Fields {
		if _, err := tx.ExecContext(ctx, `INSERT INTO template_fields (template_id, position, label, property) VALUES (?, ?, ?, ?)`,
			t.ID, i, f.Label, f.Property); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteTemplate removes a template by id.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return nil
}
