// Package attachments records which remote databases are attached to the
// local engine. The registry lives in a DuckDB table so it survives with
// the database file and gives the gateway a structured signal for the
// duplicate-attach idempotence check.
package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pondpilot/pondpilot-sub007/pkg/connection"
)

// Attachment is one attached database.
type Attachment struct {
	ID         string
	Alias      string
	URL        string
	Proxied    bool
	AttachedAt time.Time
}

// ErrNotFound is returned when no attachment exists for an alias.
var ErrNotFound = errors.New("attachment not found")

// Repository manages the attachment registry table.
type Repository struct {
	mgr *connection.Manager
}

// NewRepository creates a repository and initializes its table.
func NewRepository(ctx context.Context, mgr *connection.Manager) (*Repository, error) {
	repo := &Repository{mgr: mgr}
	if err := repo.initTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize attachments table: %w", err)
	}
	return repo, nil
}

func (r *Repository) initTable(ctx context.Context) error {
	_, err := r.mgr.Exec(ctx, `CREATE TABLE IF NOT EXISTS _pondpilot_attachments (
		id VARCHAR NOT NULL,
		alias VARCHAR PRIMARY KEY,
		url VARCHAR NOT NULL,
		proxied BOOLEAN NOT NULL,
		attached_at TIMESTAMP NOT NULL
	)`)
	return err
}

// Record upserts an attachment by alias. Re-attaching an alias replaces its
// row rather than erroring, mirroring the engine's own idempotent attach.
func (r *Repository) Record(ctx context.Context, alias, url string, proxied bool) error {
	if alias == "" {
		return fmt.Errorf("alias must not be empty")
	}
	_, err := r.mgr.Exec(ctx, `INSERT INTO _pondpilot_attachments (id, alias, url, proxied, attached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (alias) DO UPDATE SET
			url = excluded.url,
			proxied = excluded.proxied,
			attached_at = excluded.attached_at`,
		uuid.NewString(), alias, url, proxied, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record attachment %q: %w", alias, err)
	}
	return nil
}

// Get returns the attachment for an alias, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, alias string) (*Attachment, error) {
	row := r.mgr.QueryRow(ctx, `SELECT id, alias, url, proxied, attached_at
		FROM _pondpilot_attachments WHERE alias = ?`, alias)

	var a Attachment
	if err := row.Scan(&a.ID, &a.Alias, &a.URL, &a.Proxied, &a.AttachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load attachment %q: %w", alias, err)
	}
	return &a, nil
}

// Exists reports whether an alias is recorded.
func (r *Repository) Exists(ctx context.Context, alias string) (bool, error) {
	_, err := r.Get(ctx, alias)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns all recorded attachments, newest first.
func (r *Repository) List(ctx context.Context) ([]*Attachment, error) {
	rows, err := r.mgr.Query(ctx, `SELECT id, alias, url, proxied, attached_at
		FROM _pondpilot_attachments ORDER BY attached_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.Alias, &a.URL, &a.Proxied, &a.AttachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Remove drops the registry row for an alias. Removing an unknown alias is
// a no-op.
func (r *Repository) Remove(ctx context.Context, alias string) error {
	_, err := r.mgr.Exec(ctx, `DELETE FROM _pondpilot_attachments WHERE alias = ?`, alias)
	if err != nil {
		return fmt.Errorf("failed to remove attachment %q: %w", alias, err)
	}
	return nil
}
