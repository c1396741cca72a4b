package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTestDB creates a SQLite file at path holding the given statements.
func writeTestDB(t *testing.T, path string, stmts ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=rwc")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()
	for _, stmt := range stmts {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("failed to execute %q: %v", stmt, err)
		}
	}
}

// setupTestDB creates a database holding a small companies table.
func setupTestDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "input.db")
	writeTestDB(t, path,
		`CREATE TABLE companies ("Company_Name" TEXT, "Revenue" TEXT)`,
		`INSERT INTO companies VALUES ('A', '100'), ('B', NULL)`,
	)
	return path
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "nope.db")
		if _, err := Open(path); err == nil {
			t.Error("expected error for missing database")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no file to be created")
		}
	})

	t.Run("existing file opens read only", func(t *testing.T) {
		t.Parallel()
		path := setupTestDB(t)
		db, err := Open(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer db.Close()
		if db.Path() != path {
			t.Errorf("expected path %s, got %s", path, db.Path())
		}

		ctx := context.Background()
		if _, err := db.db.ExecContext(ctx, `CREATE TABLE injected (x TEXT)`); err == nil {
			t.Error("expected create table to fail on a read-only database")
		}
		if _, err := db.db.ExecContext(ctx, `INSERT INTO companies VALUES ('C', '1')`); err == nil {
			t.Error("expected insert to fail on a read-only database")
		}

		tables, err := db.Tables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tables) != 1 || tables[0] != "companies" {
			t.Errorf("expected [companies], got %v", tables)
		}
	})
}

func TestSourceDBReadTable(t *testing.T) {
	t.Parallel()

	path := setupTestDB(t)
	db, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	t.Run("lists tables", func(t *testing.T) {
		tables, err := db.Tables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tables) != 1 || tables[0] != "companies" {
			t.Errorf("expected [companies], got %v", tables)
		}
	})

	t.Run("reads header and nullable cells", func(t *testing.T) {
		table, err := db.ReadTable(ctx, "companies")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(table.Header) != 2 || table.Header[0] != "Company_Name" {
			t.Errorf("unexpected header: %v", table.Header)
		}
		if len(table.Rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(table.Rows))
		}
		if !table.Rows[0][1].Valid || table.Rows[0][1].String != "100" {
			t.Errorf("unexpected first revenue: %+v", table.Rows[0][1])
		}
		if table.Rows[1][1].Valid {
			t.Error("expected NULL revenue in second row")
		}
	})

	t.Run("rejects injection in table name", func(t *testing.T) {
		_, err := db.ReadTable(ctx, `companies"; DROP TABLE companies; --`)
		if !errors.Is(err, ErrInvalidTableName) {
			t.Errorf("expected ErrInvalidTableName, got %v", err)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := db.ReadTable(ctx, "people")
		if !errors.Is(err, ErrTableNotFound) {
			t.Errorf("expected ErrTableNotFound, got %v", err)
		}
	})
}

func TestToNullString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    any
		want  string
		valid bool
	}{
		{nil, "", false},
		{int64(42), "42", true},
		{float64(1.5), "1.5", true},
		{[]byte("x"), "x", true},
		{true, "true", true},
	}
	for _, tt := range tests {
		got := toNullString(tt.in)
		if got.Valid != tt.valid || got.String != tt.want {
			t.Errorf("toNullString(%v): expected {%q %v}, got %+v", tt.in, tt.want, tt.valid, got)
		}
	}
}
