package attachments

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/pondpilot/pondpilot-sub007/pkg/connection"
)

// setupTestRepo creates a repository backed by in-memory DuckDB.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("failed to open DuckDB: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB: %v", err)
		}
	})

	repo, err := NewRepository(context.Background(), connection.NewManager(db))
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	return repo
}

func TestRepository_RecordAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Record(ctx, "mydb", "https://example.com/db.duckdb", true); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := repo.Get(ctx, "mydb")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Alias != "mydb" {
		t.Errorf("Alias = %q, want %q", got.Alias, "mydb")
	}
	if got.URL != "https://example.com/db.duckdb" {
		t.Errorf("URL = %q, want %q", got.URL, "https://example.com/db.duckdb")
	}
	if !got.Proxied {
		t.Error("Proxied = false, want true")
	}
	if got.ID == "" {
		t.Error("ID is empty")
	}
}

func TestRepository_RecordUpsertsByAlias(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Record(ctx, "mydb", "https://example.com/v1.duckdb", false); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	if err := repo.Record(ctx, "mydb", "https://example.com/v2.duckdb", true); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() returned %d rows, want exactly 1 per alias", len(list))
	}
	if list[0].URL != "https://example.com/v2.duckdb" {
		t.Errorf("URL = %q, want updated value", list[0].URL)
	}
	if !list[0].Proxied {
		t.Error("Proxied flag not updated")
	}
}

func TestRepository_GetMissing(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_ExistsAndRemove(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Record(ctx, "mydb", "s3://bucket/db.duckdb", false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	ok, err := repo.Exists(ctx, "mydb")
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v; want true, nil", ok, err)
	}

	if err := repo.Remove(ctx, "mydb"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	ok, err = repo.Exists(ctx, "mydb")
	if err != nil || ok {
		t.Fatalf("Exists() after Remove = %v, %v; want false, nil", ok, err)
	}

	// Removing an unknown alias is a no-op.
	if err := repo.Remove(ctx, "nope"); err != nil {
		t.Errorf("Remove(unknown) error = %v", err)
	}
}
