package localdb

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/gateway"
)

// testStore opens a fresh database seeded with the users and orders tables.
func testStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(path, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	schema := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT
		)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			total REAL DEFAULT 0
		)`,
		`INSERT INTO users (id, name, email) VALUES (1, 'ada', 'ada@example.test'), (2, 'grace', NULL)`,
		`INSERT INTO orders (id, user_id, total) VALUES (10, 1, 99.5)`,
	}
	for _, stmt := range schema {
		if _, err := store.DB().Exec(stmt); err != nil {
			t.Fatalf("Failed to seed schema: %v", err)
		}
	}
	return store
}

func TestListTables_CatalogOrder(t *testing.T) {
	store := testStore(t)

	tables, err := store.ListTables(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"users", "orders"}
	if !reflect.DeepEqual(tables, want) {
		t.Errorf("Expected %v, got %v", want, tables)
	}
}

func TestDescribeTable(t *testing.T) {
	store := testStore(t)

	info, err := store.DescribeTable(context.Background(), "users")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(info.Columns) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(info.Columns))
	}

	id := info.Columns[0]
	if id.Name != "id" || !id.PrimaryKey {
		t.Errorf("Expected first column to be the id primary key, got %+v", id)
	}
	name := info.Columns[1]
	if name.Name != "name" || !name.NotNull {
		t.Errorf("Expected name column NOT NULL, got %+v", name)
	}
}

func TestDescribeTable_InvalidName(t *testing.T) {
	store := testStore(t)

	_, err := store.DescribeTable(context.Background(), "users; DROP TABLE users")
	if err == nil {
		t.Fatal("Expected error for invalid identifier")
	}
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != gateway.KindInvalidArguments {
		t.Errorf("Expected InvalidArguments, got %v", err)
	}
}

func TestDescribeTable_Missing(t *testing.T) {
	store := testStore(t)

	if _, err := store.DescribeTable(context.Background(), "no_such_table"); err == nil {
		t.Fatal("Expected error for missing table")
	}
}

func TestRunQuery_Select(t *testing.T) {
	store := testStore(t)

	result, err := store.RunQuery(context.Background(), "SELECT id, name FROM users ORDER BY id")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(result.Columns, []string{"id", "name"}) {
		t.Errorf("Unexpected columns: %v", result.Columns)
	}
	if result.RowCount != 2 {
		t.Fatalf("Expected 2 rows, got %d", result.RowCount)
	}
	if result.Rows[0][1] != "ada" {
		t.Errorf("Expected first row name ada, got %v", result.Rows[0][1])
	}
}

func TestRunQuery_RejectsWrites(t *testing.T) {
	store := testStore(t)

	writes := []string{
		"DROP TABLE users",
		"DELETE FROM users",
		"INSERT INTO users (id, name) VALUES (3, 'eve')",
		"UPDATE users SET name = 'eve'",
		"  drop table users",
	}
	for _, stmt := range writes {
		_, err := store.RunQuery(context.Background(), stmt)
		if err == nil {
			t.Errorf("Expected %q to be rejected", stmt)
			continue
		}
		var gwErr *gateway.Error
		if !errors.As(err, &gwErr) || gwErr.Kind != gateway.KindWriteRejected {
			t.Errorf("Expected WriteRejected for %q, got %v", stmt, err)
		}
	}

	// The schema must be untouched after rejected writes
	tables, err := store.ListTables(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tables) != 2 {
		t.Errorf("Expected schema unchanged, got tables %v", tables)
	}
}

func TestRunQuery_EmptySQL(t *testing.T) {
	store := testStore(t)

	_, err := store.RunQuery(context.Background(), "   ")
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != gateway.KindInvalidArguments {
		t.Errorf("Expected InvalidArguments for empty SQL, got %v", err)
	}
}

func TestDatabaseInfo(t *testing.T) {
	store := testStore(t)

	info, err := store.DatabaseInfo(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.TableCount != 2 {
		t.Errorf("Expected 2 tables, got %d", info.TableCount)
	}
	if info.SQLiteVersion == "" {
		t.Error("Expected engine version to be reported")
	}
}
