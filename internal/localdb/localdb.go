// Package localdb implements the local-database adapter: read-only tools
// over a SQLite file. Write statements are rejected before execution.
package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/gateway"
)

// Store wraps a SQLite database opened read-mostly for tool queries.
type Store struct {
	db     *sql.DB
	path   string
	logger *common.Logger
}

// identRe matches a bare SQL identifier. Table names from tool arguments
// must match it before being interpolated into a PRAGMA.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewStore opens (or creates) the SQLite database at path.
func NewStore(path string, logger *common.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("local database opened")

	return &Store{
		db:     db,
		path:   path,
		logger: logger,
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for test fixtures.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ListTables returns user table names in schema catalog order, excluding
// SQLite's internal tables.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Column describes one column of a table.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	Default    any    `json:"default,omitempty"`
	PrimaryKey bool   `json:"primary_key"`
}

// TableInfo is the result of describe_table.
type TableInfo struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// DescribeTable returns the column layout of one table. The name is
// checked against the identifier grammar before touching the schema.
func (s *Store) DescribeTable(ctx context.Context, name string) (*TableInfo, error) {
	if !identRe.MatchString(name) {
		return nil, gateway.NewError(gateway.KindInvalidArguments, "invalid table name %q", name)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, name))
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", name, err)
	}
	defer rows.Close()

	info := &TableInfo{Name: name, Columns: []Column{}}
	for rows.Next() {
		var (
			cid     int
			colName string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		col := Column{
			Name:       colName,
			Type:       colType,
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
		}
		if dflt.Valid {
			col.Default = dflt.String
		}
		info.Columns = append(info.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(info.Columns) == 0 {
		return nil, fmt.Errorf("table %q does not exist", name)
	}
	return info, nil
}

// QueryResult is the result of run_query.
type QueryResult struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

// RunQuery executes a read-only SQL statement. Anything that is not a
// SELECT is rejected before reaching the engine.
func (s *Store) RunQuery(ctx context.Context, query string) (*QueryResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, gateway.NewError(gateway.KindInvalidArguments, "sql must not be empty")
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		s.logger.Warn().Str("sql", truncateSQL(trimmed)).Msg("non-SELECT statement rejected")
		return nil, gateway.NewError(gateway.KindWriteRejected, "only SELECT statements are allowed")
	}

	rows, err := s.db.QueryContext(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.RowCount = len(result.Rows)
	return result, nil
}

// DatabaseSummary is the result of database_info.
type DatabaseSummary struct {
	Path          string `json:"path"`
	SizeBytes     int64  `json:"size_bytes"`
	TableCount    int    `json:"table_count"`
	SQLiteVersion string `json:"sqlite_version"`
}

// DatabaseInfo reports the database file location, size, table count,
// and engine version.
func (s *Store) DatabaseInfo(ctx context.Context) (*DatabaseSummary, error) {
	summary := &DatabaseSummary{Path: s.path}

	if fi, err := os.Stat(s.path); err == nil {
		summary.SizeBytes = fi.Size()
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	summary.TableCount = len(tables)

	if err := s.db.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&summary.SQLiteVersion); err != nil {
		return nil, fmt.Errorf("failed to read engine version: %w", err)
	}

	return summary, nil
}

func truncateSQL(sql string) string {
	if len(sql) <= 120 {
		return sql
	}
	return sql[:120] + "..."
}
