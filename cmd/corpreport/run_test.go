package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/config"
)

const testCompaniesCSV = `Company_Name,City,State,Postal_Code,Revenue,Industry
Acme,Austin,TX,73301,"$1,500.00",Tech
Globex,Boston,MA,02101,2000,Retail
Initech,Austin,TX,73301,300,Tech
`

const testPeopleCSV = `First_Name,Job_Title
Jane,engineer
John,Engineer
Mary,manager
`

// runFixture holds the input files of one test.
type runFixture struct {
	dir       string
	companies string
	people    string
	config    string
}

func newRunFixture(t *testing.T, configContent string) runFixture {
	t.Helper()

	dir := t.TempDir()
	return runFixture{
		dir:       dir,
		companies: writeTestFile(t, dir, "companies.csv", testCompaniesCSV),
		people:    writeTestFile(t, dir, "people.csv", testPeopleCSV),
		// An explicit config keeps the user's own configuration out of tests.
		config: writeTestFile(t, dir, config.DefaultConfigFile, configContent),
	}
}

// jsonRun is the subset of the JSON report the tests look at.
type jsonRun struct {
	Run struct {
		ID string `json:"id"`
	} `json:"run"`
	Reports []struct {
		Report string           `json:"report"`
		Status string           `json:"status"`
		Rows   []map[string]any `json:"rows"`
	} `json:"reports"`
}

func TestNewRunCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()
	flagsWithShort := map[string]string{
		"format":   "f",
		"output":   "o",
		"top":      "n",
		"parallel": "p",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}
	for _, flag := range []string{"companies", "people", "sheet", "table", "people-table", "charts", "chart-width", "chart-height"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q to exist", flag)
		}
	}
	if got := cmd.Flags().Lookup("charts").NoOptDefVal; got != config.DefaultChartDir() {
		t.Errorf("expected --charts to default to %q, got %q", config.DefaultChartDir(), got)
	}
	if usage := cmd.Flags().Lookup("charts").Usage; !strings.Contains(usage, "--charts=DIR") {
		t.Errorf("expected --charts usage to show the --charts=DIR form, got %q", usage)
	}
}

func TestRunCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes every report as text", func(t *testing.T) {
		t.Parallel()
		fx := newRunFixture(t, "top_n: 10\n")

		stdout, stderr, err := executeCLI(t, "run", "-c", fx.config,
			"--companies", fx.companies, "--people", fx.people)
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}
		for _, want := range []string{"CORPREPORT", "Acme", "Globex", "Engineer", "6 reports, 0 without result, 0 failed"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in output:\n%s", want, stdout)
			}
		}
		if strings.Contains(stderr, "Warning:") {
			t.Errorf("expected no warnings, got %s", stderr)
		}
	})

	t.Run("writes JSON to a file", func(t *testing.T) {
		t.Parallel()
		fx := newRunFixture(t, "top_n: 10\n")
		output := filepath.Join(fx.dir, "out", "report.json")

		stdout, stderr, err := executeCLI(t, "run", "-c", fx.config,
			"--companies", fx.companies, "--people", fx.people,
			"-f", "json", "-o", output, "-p")
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got %q", stdout)
		}
		if !strings.Contains(stderr, "Report saved to: "+output) {
			t.Errorf("expected save message, got %q", stderr)
		}

		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var rep jsonRun
		if err := json.Unmarshal(data, &rep); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if rep.Run.ID == "" {
			t.Error("expected a run ID")
		}
		if len(rep.Reports) != len(analysis.All()) {
			t.Fatalf("expected %d reports, got %d", len(analysis.All()), len(rep.Reports))
		}
		for i, r := range rep.Reports {
			if r.Report != analysis.Names()[i] {
				t.Errorf("report %d: expected %s, got %s", i, analysis.Names()[i], r.Report)
			}
			if r.Status != "ok" {
				t.Errorf("%s: expected status ok, got %s", r.Report, r.Status)
			}
		}
		// Acme, Globex, Initech
		if got := len(rep.Reports[3].Rows); got != 3 {
			t.Errorf("expected 3 company rows, got %d", got)
		}
	})

	t.Run("selects reports and applies the config file", func(t *testing.T) {
		t.Parallel()
		fx := newRunFixture(t, "top_n: 1\noutput:\n  format: json\n")

		stdout, stderr, err := executeCLI(t, "run", "-c", fx.config,
			"--companies", fx.companies, "top_10_companies_by_city")
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}
		var rep jsonRun
		if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
			t.Fatalf("expected JSON from the config file format: %v\n%s", err, stdout)
		}
		if len(rep.Reports) != 1 || rep.Reports[0].Report != analysis.NameTopCities {
			t.Fatalf("expected only %s, got %+v", analysis.NameTopCities, rep.Reports)
		}
		if got := len(rep.Reports[0].Rows); got != 1 {
			t.Errorf("expected top 1 city, got %d rows", got)
		}
	})

	t.Run("flags override the config file", func(t *testing.T) {
		t.Parallel()
		fx := newRunFixture(t, "top_n: 1\noutput:\n  format: json\n")

		stdout, stderr, err := executeCLI(t, "run", "-c", fx.config,
			"--companies", fx.companies, "-f", "markdown", "-n", "5", analysis.NameTopCities)
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}
		if !strings.HasPrefix(stdout, "# Company Report") {
			t.Errorf("expected Markdown output, got:\n%s", stdout)
		}
		if !strings.Contains(stdout, "Boston") {
			t.Errorf("expected both cities with -n 5, got:\n%s", stdout)
		}
	})

	t.Run("missing people table is a warning", func(t *testing.T) {
		t.Parallel()
		fx := newRunFixture(t, "top_n: 10\n")

		stdout, stderr, err := executeCLI(t, "run", "-c", fx.config, "--companies", fx.companies)
		if err != nil {
			t.Fatalf("expected soft failure only, got %v", err)
		}
		if !strings.Contains(stderr, "Warning:") {
			t.Errorf("expected a warning on stderr, got %q", stderr)
		}
		if !strings.Contains(stdout, "1 without result") {
			t.Errorf("expected one report without result, got:\n%s", stdout)
		}
	})

	t.Run("missing company table fails", func(t *testing.T) {
		t.Parallel()
		fx := newRunFixture(t, "top_n: 10\n")

		stdout, _, err := executeCLI(t, "run", "-c", fx.config, "--people", fx.people)
		if err == nil {
			t.Fatal("expected error for reports without their input")
		}
		if !strings.Contains(err.Error(), "some reports failed") {
			t.Errorf("unexpected error: %v", err)
		}
		// Output is still written before the command fails.
		if !strings.Contains(stdout, "Engineer") {
			t.Errorf("expected job titles in output, got:\n%s", stdout)
		}
	})

	t.Run("writes PNG charts", func(t *testing.T) {
		t.Parallel()
		fx := newRunFixture(t, "top_n: 10\n")
		chartDir := filepath.Join(fx.dir, "charts")

		_, stderr, err := executeCLI(t, "run", "-c", fx.config,
			"--companies", fx.companies, "--people", fx.people,
			"--charts="+chartDir, "--chart-width", "400", "--chart-height", "300")
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}

		for _, r := range analysis.All() {
			_, statErr := os.Stat(filepath.Join(chartDir, r.Name+".png"))
			if r.Describe == nil {
				if statErr == nil {
					t.Errorf("%s: expected no chart", r.Name)
				}
				continue
			}
			if statErr != nil {
				t.Errorf("%s: expected chart: %v", r.Name, statErr)
			}
		}
	})

	t.Run("writes an XLSX workbook", func(t *testing.T) {
		t.Parallel()
		fx := newRunFixture(t, "top_n: 10\n")
		output := filepath.Join(fx.dir, "report.xlsx")

		_, stderr, err := executeCLI(t, "run", "-c", fx.config,
			"--companies", fx.companies, "--people", fx.people, "-f", "xlsx", "-o", output)
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}
		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read workbook: %v", err)
		}
		if !strings.HasPrefix(string(data), "PK") {
			t.Error("expected a zip container")
		}
	})
}

func TestRunCmdErrors(t *testing.T) {
	t.Parallel()

	fx := newRunFixture(t, "top_n: 10\n")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no input", []string{}, config.ErrNoInput},
		{"unknown report", []string{"--companies", fx.companies, "Top_Cities"}, analysis.ErrUnknownReport},
		{"chart directory without equals", []string{"--companies", fx.companies, "--charts", filepath.Join(fx.dir, "charts")}, analysis.ErrUnknownReport},
		{"xlsx without output", []string{"--companies", fx.companies, "-f", "xlsx"}, config.ErrOutputRequired},
		{"unknown format", []string{"--companies", fx.companies, "-f", "pdf"}, config.ErrInvalidFormat},
		{"top out of range", []string{"--companies", fx.companies, "-n", "0"}, config.ErrInvalidTopN},
		{"missing config file", []string{"--companies", fx.companies, "-c", filepath.Join(fx.dir, "nope.yaml")}, config.ErrConfigNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"run", "-c", fx.config}, tt.args...)
			_, _, err := executeCLI(t, args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("unreadable input", func(t *testing.T) {
		t.Parallel()
		_, _, err := executeCLI(t, "run", "-c", fx.config, "--companies", filepath.Join(fx.dir, "missing.csv"))
		if err == nil || !strings.Contains(err.Error(), "failed to load input") {
			t.Errorf("expected load error, got %v", err)
		}
	})
}
