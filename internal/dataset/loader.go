package dataset

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/corpreport/internal/database"
	"github.com/nao1215/corpreport/internal/model"
)

// Format is a supported source format.
type Format string

const (
	// FormatCSV is comma separated text.
	FormatCSV Format = "csv"
	// FormatXLSX is an Excel workbook.
	FormatXLSX Format = "xlsx"
	// FormatSQLite is a SQLite database file.
	FormatSQLite Format = "sqlite"
)

// Default SQLite table names.
const (
	DefaultCompanyTable = "companies"
	DefaultPeopleTable  = "people"
)

// DetectFormat picks the loader for path from its extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Loader reads input tables.
type Loader struct {
	mapper       ColumnMapper
	sheet        string
	companyTable string
	peopleTable  string
	logger       *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithColumnMap sets the source header to canonical name mapping.
func WithColumnMap(mapping map[string]string) Option {
	return func(l *Loader) {
		l.mapper = NewColumnMapper(mapping)
	}
}

// WithSheet selects the XLSX sheet to read. The first sheet is used by default.
func WithSheet(sheet string) Option {
	return func(l *Loader) {
		l.sheet = sheet
	}
}

// WithCompanyTable selects the SQLite table holding companies.
func WithCompanyTable(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.companyTable = name
		}
	}
}

// WithPeopleTable selects the SQLite table holding people.
func WithPeopleTable(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.peopleTable = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		mapper:       NewColumnMapper(nil),
		companyTable: DefaultCompanyTable,
		peopleTable:  DefaultPeopleTable,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the company and people sources. Either path may be empty,
// but not both.
func (l *Loader) Load(ctx context.Context, companiesPath, peoplePath string) (*model.Dataset, error) {
	if companiesPath == "" && peoplePath == "" {
		return nil, ErrNoInput
	}

	ds := &model.Dataset{}
	if companiesPath != "" {
		table, info, err := l.LoadCompanies(ctx, companiesPath)
		if err != nil {
			return nil, err
		}
		ds.Companies = table
		ds.Sources = append(ds.Sources, info)
	}
	if peoplePath != "" {
		table, info, err := l.LoadPeople(ctx, peoplePath)
		if err != nil {
			return nil, err
		}
		ds.People = table
		ds.Sources = append(ds.Sources, info)
	}
	return ds, nil
}

// LoadCompanies reads a company table.
func (l *Loader) LoadCompanies(ctx context.Context, path string) (model.CompanyTable, model.SourceInfo, error) {
	raw, info, err := l.read(ctx, path, l.companyTable)
	if err != nil {
		return model.CompanyTable{}, model.SourceInfo{}, fmt.Errorf("failed to load companies: %w", err)
	}
	table := raw.companies(l.mapper)
	l.logger.Debug("loaded companies",
		"path", path,
		"format", info.Format,
		"rows", table.Len(),
		"columns", strings.Join(table.Columns, ","),
	)
	return table, info, nil
}

// LoadPeople reads a people table.
func (l *Loader) LoadPeople(ctx context.Context, path string) (model.PeopleTable, model.SourceInfo, error) {
	raw, info, err := l.read(ctx, path, l.peopleTable)
	if err != nil {
		return model.PeopleTable{}, model.SourceInfo{}, fmt.Errorf("failed to load people: %w", err)
	}
	table := raw.people(l.mapper)
	l.logger.Debug("loaded people",
		"path", path,
		"format", info.Format,
		"rows", table.Len(),
	)
	return table, info, nil
}

// read decodes path with the loader for its format.
func (l *Loader) read(ctx context.Context, path, sqliteTable string) (*rawTable, model.SourceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.SourceInfo{}, err
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, model.SourceInfo{}, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, model.SourceInfo{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw *rawTable
	switch format {
	case FormatCSV:
		raw, err = readCSV(data)
	case FormatXLSX:
		raw, err = readXLSX(data, l.sheet)
	case FormatSQLite:
		raw, err = readSQLite(ctx, path, sqliteTable)
	}
	if err != nil {
		return nil, model.SourceInfo{}, fmt.Errorf("%s: %w", path, err)
	}

	l.logSample(path, raw)

	return raw, model.SourceInfo{
		Path:        path,
		Format:      string(format),
		Fingerprint: Fingerprint(data),
		Rows:        len(raw.rows),
	}, nil
}

// logSample logs the first data row at debug level. Personal data in it is
// masked by the secure log handler.
func (l *Loader) logSample(path string, raw *rawTable) {
	if len(raw.rows) == 0 {
		return
	}
	attrs := make([]any, 0, len(raw.header))
	for i, h := range raw.header {
		if i < len(raw.rows[0]) {
			attrs = append(attrs, slog.String(h, raw.rows[0][i].value))
		}
	}
	l.logger.Debug("first row", "path", path, slog.Group("sample", attrs...))
}

// readSQLite reads a whole table from a SQLite file.
func readSQLite(ctx context.Context, path, table string) (*rawTable, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	t, err := db.ReadTable(ctx, table)
	if err != nil {
		return nil, err
	}

	raw := &rawTable{header: t.Header, rows: make([][]cell, 0, len(t.Rows))}
	for _, r := range t.Rows {
		cells := make([]cell, len(r))
		for i, v := range r {
			cells[i] = cell{value: v.String, null: !v.Valid}
		}
		raw.rows = append(raw.rows, cells)
	}
	return raw, nil
}

// Fingerprint returns the hex SHA3-256 digest of data.
func Fingerprint(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
