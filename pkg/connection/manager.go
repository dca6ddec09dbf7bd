// Package connection adapts an embedded DuckDB database to the engine port.
package connection

import (
	"context"
	"database/sql"
	"regexp"
	"strconv"
	"sync"

	"github.com/pondpilot/pondpilot-sub007/pkg/engine"
	"github.com/pondpilot/pondpilot-sub007/pkg/statement"
)

// Manager manages DuckDB access with proper locking.
//
//   - Query operations can be concurrent (reads)
//   - Write operations, ATTACH/DETACH included, are serialized with a mutex
type Manager struct {
	db         *sql.DB
	classifier *statement.Classifier
	writeMu    sync.Mutex
}

// NewManager creates a manager for an already-open database.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db, classifier: statement.NewClassifier()}
}

// Open opens a DuckDB database at path (empty for in-memory) and returns a
// manager for it.
func Open(path string) (*Manager, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}
	return NewManager(db), nil
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// DB returns the underlying database connection, for pool tuning and
// test setup.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Query executes a parameterized read query (can be concurrent).
func (m *Manager) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return m.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query expected to return at most one row.
func (m *Manager) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return m.db.QueryRowContext(ctx, query, args...)
}

// Exec executes a parameterized write operation (serialized).
func (m *Manager) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return m.db.ExecContext(ctx, query, args...)
}

// httpStatusRe extracts the status DuckDB's httpfs embeds in remote-fetch
// error messages, e.g. "HTTP GET error ... (HTTP 403)".
var httpStatusRe = regexp.MustCompile(`\(HTTP (\d{3})\)|HTTP Error (\d{3})`)

// Execute implements engine.Engine. Read statements run concurrently;
// everything else takes the write lock.
func (m *Manager) Execute(ctx context.Context, sqlText string) (*engine.Result, error) {
	if m.classifier.Classify(sqlText).Kind == statement.KindQuery {
		return m.query(ctx, sqlText)
	}
	return m.exec(ctx, sqlText)
}

func (m *Manager) query(ctx context.Context, sqlText string) (*engine.Result, error) {
	rows, err := m.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, wrapDriverError(err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, wrapDriverError(err)
	}

	var resultRows [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, wrapDriverError(err)
		}

		row := make([]any, len(columns))
		for i, val := range values {
			row[i] = convertValue(val)
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDriverError(err)
	}

	return &engine.Result{Columns: columns, Rows: resultRows}, nil
}

func (m *Manager) exec(ctx context.Context, sqlText string) (*engine.Result, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	res, err := m.db.ExecContext(ctx, sqlText)
	if err != nil {
		return nil, wrapDriverError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &engine.Result{RowsAffected: affected}, nil
}

// wrapDriverError turns a DuckDB driver error into an engine error,
// recovering the HTTP status httpfs buries in the message when one exists.
func wrapDriverError(err error) error {
	status := 0
	if m := httpStatusRe.FindStringSubmatch(err.Error()); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				status, _ = strconv.Atoi(g)
				break
			}
		}
	}
	return engine.WrapError(err, status)
}

// convertValue normalizes driver values for JSON-friendly results.
func convertValue(val any) any {
	switch v := val.(type) {
	case []byte:
		return string(v)
	default:
		return v
	}
}
