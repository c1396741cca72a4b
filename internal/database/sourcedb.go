package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrInvalidTableName is returned for table names that are not plain SQL
// identifiers. Table names are interpolated into queries, so anything else
// is rejected before it reaches SQLite.
var ErrInvalidTableName = errors.New("invalid table name")

// ErrTableNotFound is returned when the requested table does not exist.
var ErrTableNotFound = errors.New("table not found")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SourceDB is a SQLite file holding one or more input tables.
type SourceDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// path is the SQLite database file.
	path string
}

// Open opens the existing SQLite file at path read only.
func Open(path string) (*SourceDB, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	// modernc.org/sqlite only reads mode from a file: URI.
	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return &SourceDB{db: db, path: path}, nil
}

func readOnlyDSN(path string) string {
	return "file:" + filepath.ToSlash(path) + "?mode=ro"
}

// Close closes the database connection.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SourceDB) Path() string {
	return s.path
}

// Tables returns the user table names in alphabetical order.
func (s *SourceDB) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tables: %w", err)
	}
	return names, nil
}

// Table is a table read from SQLite.
// A cell with Valid false was SQL NULL.
type Table struct {
	Header []string
	Rows   [][]sql.NullString
}

// ReadTable returns every row of the named table in rowid order.
func (s *SourceDB) ReadTable(ctx context.Context, name string) (*Table, error) {
	if !identPattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}

	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, t := range tables {
		if strings.EqualFold(t, name) {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, name))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}

	table := &Table{Header: header}
	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", name, err)
		}
		record := make([]sql.NullString, len(header))
		for i, v := range values {
			record[i] = toNullString(v)
		}
		table.Rows = append(table.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows of %s: %w", name, err)
	}
	return table, nil
}

// toNullString converts a value scanned from SQLite into text.
func toNullString(v any) sql.NullString {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}
	case string:
		return sql.NullString{String: x, Valid: true}
	case []byte:
		return sql.NullString{String: string(x), Valid: true}
	case int64:
		return sql.NullString{String: strconv.FormatInt(x, 10), Valid: true}
	case float64:
		return sql.NullString{String: strconv.FormatFloat(x, 'f', -1, 64), Valid: true}
	case bool:
		return sql.NullString{String: strconv.FormatBool(x), Valid: true}
	case time.Time:
		return sql.NullString{String: x.Format(time.RFC3339), Valid: true}
	default:
		return sql.NullString{String: fmt.Sprint(x), Valid: true}
	}
}
