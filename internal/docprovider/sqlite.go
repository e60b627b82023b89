package docprovider

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nyberg/lagu/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	parent_id  TEXT,
	name       TEXT NOT NULL,
	is_dir     INTEGER NOT NULL DEFAULT 0,
	content    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(parent_id, name)
);

CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(parent_id);
`

// SQLite implements Provider on a local SQLite database. Document IDs
// are opaque random tokens with no path structure, which keeps callers
// honest about treating locators as round-trip-only values.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the provider database at dsn.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("docprovider: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("docprovider: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("docprovider: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (p *SQLite) Close() error {
	return p.conn.Close()
}

// CreateTree creates a named root directory, reusing one if it already
// exists.
func (p *SQLite) CreateTree(ctx context.Context, name string) (string, error) {
	var id string
	err := p.conn.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE parent_id IS NULL AND name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("docprovider: find tree: %w", err)
	}

	id = newID()
	now := time.Now().UTC()
	_, err = p.conn.ExecContext(ctx, `
		INSERT INTO documents (id, parent_id, name, is_dir, created_at, updated_at)
		VALUES (?, NULL, ?, 1, ?, ?)
	`, id, name, now, now)
	if err != nil {
		return "", fmt.Errorf("docprovider: create tree: %w", err)
	}
	return id, nil
}

// ListChildren returns the immediate children of dirID.
func (p *SQLite) ListChildren(ctx context.Context, dirID string) ([]Doc, error) {
	rows, err := p.conn.QueryContext(ctx, `
		SELECT id, name, is_dir, created_at, updated_at
		FROM documents WHERE parent_id = ? ORDER BY name
	`, dirID)
	if err != nil {
		return nil, fmt.Errorf("docprovider: list children: %w", err)
	}
	defer rows.Close()

	var out []Doc
	for rows.Next() {
		var d Doc
		if err := rows.Scan(&d.ID, &d.Name, &d.IsDir, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("docprovider: scan child: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FindChild looks up a direct child of dirID by name.
func (p *SQLite) FindChild(ctx context.Context, dirID, name string) (Doc, bool, error) {
	var d Doc
	err := p.conn.QueryRowContext(ctx, `
		SELECT id, name, is_dir, created_at, updated_at
		FROM documents WHERE parent_id = ? AND name = ?
	`, dirID, name).Scan(&d.ID, &d.Name, &d.IsDir, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Doc{}, false, nil
	}
	if err != nil {
		return Doc{}, false, fmt.Errorf("docprovider: find child: %w", err)
	}
	return d, true, nil
}

// ReadDocument returns the content of a non-directory document.
func (p *SQLite) ReadDocument(ctx context.Context, id string) (string, error) {
	var content string
	var isDir bool
	err := p.conn.QueryRowContext(ctx,
		`SELECT content, is_dir FROM documents WHERE id = ?`, id).Scan(&content, &isDir)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("docprovider: read %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("docprovider: read %s: %w", id, err)
	}
	if isDir {
		return "", fmt.Errorf("docprovider: read %s: is a directory", id)
	}
	return content, nil
}

// WriteDocument creates or replaces the document named name under
// dirID. CreatedAt is fixed on first write; UpdatedAt refreshes on
// every write.
func (p *SQLite) WriteDocument(ctx context.Context, dirID, name, content string) (string, error) {
	now := time.Now().UTC()

	existing, ok, err := p.FindChild(ctx, dirID, name)
	if err != nil {
		return "", err
	}
	if ok {
		if existing.IsDir {
			return "", fmt.Errorf("docprovider: write %s: is a directory", name)
		}
		_, err = p.conn.ExecContext(ctx,
			`UPDATE documents SET content = ?, updated_at = ? WHERE id = ?`,
			content, now, existing.ID)
		if err != nil {
			return "", fmt.Errorf("docprovider: update %s: %w", name, err)
		}
		return existing.ID, nil
	}

	id := newID()
	_, err = p.conn.ExecContext(ctx, `
		INSERT INTO documents (id, parent_id, name, is_dir, content, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)
	`, id, dirID, name, content, now, now)
	if err != nil {
		return "", fmt.Errorf("docprovider: insert %s: %w", name, err)
	}
	return id, nil
}

// CreateDirectory creates (or reuses) a subdirectory under dirID.
func (p *SQLite) CreateDirectory(ctx context.Context, dirID, name string) (string, error) {
	existing, ok, err := p.FindChild(ctx, dirID, name)
	if err != nil {
		return "", err
	}
	if ok {
		if !existing.IsDir {
			return "", fmt.Errorf("docprovider: mkdir %s: exists as a document", name)
		}
		return existing.ID, nil
	}

	id := newID()
	now := time.Now().UTC()
	_, err = p.conn.ExecContext(ctx, `
		INSERT INTO documents (id, parent_id, name, is_dir, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
	`, id, dirID, name, now, now)
	if err != nil {
		return "", fmt.Errorf("docprovider: mkdir %s: %w", name, err)
	}
	return id, nil
}

// DeleteDocument removes a document, or a directory that is already
// empty. Deleting a non-empty directory is an error so that recursive
// removal stays in the caller's control.
func (p *SQLite) DeleteDocument(ctx context.Context, id string) error {
	var children int
	if err := p.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE parent_id = ?`, id).Scan(&children); err != nil {
		return fmt.Errorf("docprovider: count children: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("docprovider: delete %s: directory not empty", id)
	}

	res, err := p.conn.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("docprovider: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("docprovider: delete %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Stat returns metadata for a document.
func (p *SQLite) Stat(ctx context.Context, id string) (Doc, error) {
	var d Doc
	err := p.conn.QueryRowContext(ctx, `
		SELECT id, name, is_dir, created_at, updated_at
		FROM documents WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &d.IsDir, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Doc{}, fmt.Errorf("docprovider: stat %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return Doc{}, fmt.Errorf("docprovider: stat %s: %w", id, err)
	}
	return d, nil
}

// ParentOf returns the parent directory's ID, or false for tree roots.
func (p *SQLite) ParentOf(ctx context.Context, id string) (string, bool, error) {
	var parent sql.NullString
	err := p.conn.QueryRowContext(ctx,
		`SELECT parent_id FROM documents WHERE id = ?`, id).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("docprovider: parent of %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return "", false, fmt.Errorf("docprovider: parent of %s: %w", id, err)
	}
	if !parent.Valid {
		return "", false, nil
	}
	return parent.String, true, nil
}

func newID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
