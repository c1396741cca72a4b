package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "corpreport"

	// DefaultTopN is the length of the ranked reports (cities, job titles).
	DefaultTopN = 10

	// DefaultFormat is the output format when neither the flag nor the
	// configuration file sets one.
	DefaultFormat = FormatText

	// DefaultChartWidth and DefaultChartHeight are the PNG size in pixels.
	DefaultChartWidth  = 900
	DefaultChartHeight = 560

	// DefaultParallelism bounds concurrent reports with --parallel.
	// Six reports exist, so more would never be used.
	DefaultParallelism = 6

	// DefaultLogFormat is slog's text format.
	DefaultLogFormat = "text"

	// DefaultCompanyTable and DefaultPeopleTable are the SQLite tables read
	// when --table is not given.
	DefaultCompanyTable = "companies"
	DefaultPeopleTable  = "people"

	// MaxTopN caps --top. Larger rankings make unreadable charts.
	MaxTopN = 100
)

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatXLSX     = "xlsx"
)

// Formats lists every output format.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatHTML, FormatXLSX}

// Config holds every option of one run. It is built from defaults, then
// the configuration file, then command line flags, and passed down
// explicitly.
type Config struct {
	// CompaniesPath is the company table file. Empty when not given.
	CompaniesPath string

	// PeoplePath is the people table file. Empty when not given.
	PeoplePath string

	// Reports are the report names to run. Empty means all.
	Reports []string

	// TopN bounds ranked reports.
	TopN int

	// Format is one of Formats.
	Format string

	// OutputFile is where the report is written. Empty means stdout.
	OutputFile string

	// ChartDir is where PNG charts are written. Empty disables PNG output.
	ChartDir string

	// ChartWidth and ChartHeight are the PNG size in pixels.
	ChartWidth  int
	ChartHeight int

	// Scales overrides the colour scale per report name.
	Scales map[string]string

	// Columns maps source headers to canonical column names.
	Columns map[string]string

	// Sheet is the XLSX sheet to read. Empty means the first sheet.
	Sheet string

	// CompanyTable and PeopleTable are the SQLite tables to read.
	CompanyTable string
	PeopleTable  string

	// Parallel runs reports concurrently, at most Parallelism at a time.
	Parallel    bool
	Parallelism int

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// ConfigFilePath is an explicit configuration file. Empty means search.
	ConfigFilePath string
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		TopN:         DefaultTopN,
		Format:       DefaultFormat,
		ChartWidth:   DefaultChartWidth,
		ChartHeight:  DefaultChartHeight,
		CompanyTable: DefaultCompanyTable,
		PeopleTable:  DefaultPeopleTable,
		Parallelism:  DefaultParallelism,
		LogFormat:    DefaultLogFormat,
		Scales:       make(map[string]string),
		Columns:      make(map[string]string),
	}
}

// ApplyFile copies the values set in f over c. Zero values in f leave c
// unchanged.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	for src, dst := range f.Columns {
		c.Columns[src] = dst
	}
	if f.TopN != 0 {
		c.TopN = f.TopN
	}
	if len(f.Reports) > 0 {
		c.Reports = slices.Clone(f.Reports)
	}
	if f.Charts.Width != 0 {
		c.ChartWidth = f.Charts.Width
	}
	if f.Charts.Height != 0 {
		c.ChartHeight = f.Charts.Height
	}
	for report, scale := range f.Charts.Scales {
		c.Scales[report] = scale
	}
	if f.Charts.Dir != "" {
		c.ChartDir = f.Charts.Dir
	}
	if f.Output.Format != "" {
		c.Format = strings.ToLower(f.Output.Format)
	}
	if f.Output.File != "" {
		c.OutputFile = f.Output.File
	}
	if f.Input.Sheet != "" {
		c.Sheet = f.Input.Sheet
	}
	if f.Input.CompanyTable != "" {
		c.CompanyTable = f.Input.CompanyTable
	}
	if f.Input.PeopleTable != "" {
		c.PeopleTable = f.Input.PeopleTable
	}
}

// XDGDataDir returns the XDG data directory for corpreport.
// On Linux: ~/.local/share/corpreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for corpreport.
// On Linux: ~/.config/corpreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultChartDir is used when --charts is given without a directory.
func DefaultChartDir() string {
	return filepath.Join(XDGDataDir(), "charts")
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.CompaniesPath == "" && c.PeoplePath == "" {
		return ErrNoInput
	}
	if c.TopN <= 0 || c.TopN > MaxTopN {
		return ErrInvalidTopN
	}
	if !slices.Contains(Formats, c.Format) {
		return ErrInvalidFormat
	}
	if c.Format == FormatXLSX && c.OutputFile == "" {
		return ErrOutputRequired
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return ErrInvalidChartSize
	}
	if c.Parallelism <= 0 {
		return ErrInvalidParallelism
	}
	return nil
}
