package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

// ChartsConfig holds chart rendering settings.
type ChartsConfig struct {
	// Dir is the PNG output directory.
	Dir string `yaml:"dir,omitempty"`

	// Width and Height are the PNG size in pixels.
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`

	// Scales maps report names to colour scale names, e.g.
	// Revenue_by_Company: blackbody.
	Scales map[string]string `yaml:"scales,omitempty"`
}

// OutputConfig holds default output settings.
type OutputConfig struct {
	// Format is one of text, json, markdown, html, xlsx.
	Format string `yaml:"format,omitempty"`

	// File is the output path. Empty means stdout.
	File string `yaml:"file,omitempty"`
}

// InputConfig holds loader settings.
type InputConfig struct {
	// Sheet is the XLSX sheet to read.
	Sheet string `yaml:"sheet,omitempty"`

	// CompanyTable and PeopleTable are SQLite table names.
	CompanyTable string `yaml:"companyTable,omitempty"`
	PeopleTable  string `yaml:"peopleTable,omitempty"`
}

// File represents the structure of the .corpreport configuration file.
type File struct {
	// Columns maps source headers to canonical column names, for sources
	// whose headers differ (e.g. "Company Name: Company_Name").
	Columns map[string]string `yaml:"columns,omitempty"`

	// TopN bounds the ranked reports.
	TopN int `yaml:"top_n,omitempty"`

	// Reports lists the reports to run. Empty means all.
	Reports []string `yaml:"reports,omitempty"`

	Charts ChartsConfig `yaml:"charts,omitempty"`
	Output OutputConfig `yaml:"output,omitempty"`
	Input  InputConfig  `yaml:"input,omitempty"`
}

// canonicalColumns lists every column name a mapping may target.
var canonicalColumns = slices.Concat(model.CompanyColumns, model.PeopleColumns)

// Validate checks names that would otherwise fail late, in the middle of
// a run.
func (cf *File) Validate() error {
	for src, dst := range cf.Columns {
		if !slices.Contains(canonicalColumns, dst) {
			return fmt.Errorf("%w: %q (mapped from %q)", ErrUnknownColumn, dst, src)
		}
	}
	for _, name := range cf.Reports {
		if _, ok := analysis.Lookup(name); !ok {
			return fmt.Errorf("%w: %q", analysis.ErrUnknownReport, name)
		}
	}
	for report, scale := range cf.Charts.Scales {
		if _, ok := analysis.Lookup(report); !ok {
			return fmt.Errorf("%w: %q", analysis.ErrUnknownReport, report)
		}
		if _, err := chart.NewScale(scale); err != nil {
			return fmt.Errorf("%w: %q for %s", ErrUnknownScale, scale, report)
		}
	}
	if cf.Output.Format != "" && !slices.Contains(Formats, strings.ToLower(cf.Output.Format)) {
		return ErrInvalidFormat
	}
	if cf.TopN < 0 || cf.TopN > MaxTopN {
		return ErrInvalidTopN
	}
	if cf.Charts.Width < 0 || cf.Charts.Height < 0 {
		return ErrInvalidChartSize
	}
	return nil
}
