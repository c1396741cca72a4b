package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/config"
	"github.com/nao1215/corpreport/internal/pipeline"
	"github.com/nao1215/corpreport/internal/report"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [report...]",
		Short: "Compute summary reports and charts",
		Long: `Run loads the company and/or people table and computes the named
reports, or every report when none is named. See "corpreport list" for the
report names and the columns each needs.

Input files are read by extension: .csv, .xlsx, or .db/.sqlite/.sqlite3.
A report whose input is missing, or whose result is empty, is reported as
"no result" and the others still run. Any other failure makes the command
exit with status 1 after the output has been written.

Examples:
  # Every report, as text
  corpreport run --companies companies.csv --people people.csv

  # Two reports as Markdown with PNG charts
  corpreport run --companies companies.xlsx -f markdown -o report.md \
      --charts=charts Revenue_by_Company Top_10_Companies_by_City

  # Job titles only, top 25
  corpreport run --people people.csv -n 25 Unique_Job_Titles

  # Everything into one workbook, reports run concurrently
  corpreport run --companies data.db --people data.db -f xlsx -o report.xlsx -p`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	// Input flags
	cmd.Flags().String("companies", "", "Company table file (CSV, XLSX or SQLite)")
	cmd.Flags().String("people", "", "People table file (CSV, XLSX or SQLite)")
	cmd.Flags().String("sheet", "", "XLSX sheet to read (default: first sheet)")
	cmd.Flags().String("table", config.DefaultCompanyTable, "SQLite table holding companies")
	cmd.Flags().String("people-table", config.DefaultPeopleTable, "SQLite table holding people")

	// Report flags
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Output format: "+strings.Join(config.Formats, ", "))
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().IntP("top", "n", config.DefaultTopN, "Number of rows in ranked reports")

	// Chart flags
	cmd.Flags().String("charts", "", "Write PNG charts to directory, given as --charts=DIR (--charts alone uses the XDG data directory)")
	cmd.Flags().Lookup("charts").NoOptDefVal = config.DefaultChartDir()
	cmd.Flags().Int("chart-width", config.DefaultChartWidth, "Chart width in pixels")
	cmd.Flags().Int("chart-height", config.DefaultChartHeight, "Chart height in pixels")

	// Execution flags
	cmd.Flags().BoolP("parallel", "p", false, "Run reports concurrently")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Unknown names fail before any input is read
	if _, err := analysis.Select(cfg.Reports); err != nil {
		return err
	}

	logger, err := setupLogger(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runReports(ctx, cmd, cfg, logger)
}

// buildRunConfig layers defaults, the configuration file and flags, in
// that order. Flags only override when given on the command line.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := loadConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"companies":    &cfg.CompaniesPath,
		"people":       &cfg.PeoplePath,
		"sheet":        &cfg.Sheet,
		"table":        &cfg.CompanyTable,
		"people-table": &cfg.PeopleTable,
		"format":       &cfg.Format,
		"output":       &cfg.OutputFile,
		"charts":       &cfg.ChartDir,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	intFlags := map[string]*int{
		"top":          &cfg.TopN,
		"chart-width":  &cfg.ChartWidth,
		"chart-height": &cfg.ChartHeight,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	var err error
	cfg.Parallel, err = flags.GetBool("parallel")
	if err != nil {
		return nil, err
	}

	cfg.Format = strings.ToLower(cfg.Format)
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getPersistentString(cmd, "log-format", config.DefaultLogFormat)

	if len(args) > 0 {
		cfg.Reports = args
	}
	return cfg, nil
}

// newChartRenderer returns the PNG renderer for cfg, or nil when charts
// are disabled.
func newChartRenderer(cfg *config.Config, logger *slog.Logger) *chart.PNGRenderer {
	if cfg.ChartDir == "" {
		return nil
	}
	opts := []chart.PNGOption{
		chart.WithSize(cfg.ChartWidth, cfg.ChartHeight),
		chart.WithPNGLogger(logger),
	}
	for name, scale := range cfg.Scales {
		opts = append(opts, chart.WithScaleOverride(name, scale))
	}
	return chart.NewPNGRenderer(cfg.ChartDir, opts...)
}

// runReports loads the dataset, runs the pipeline and writes the result.
func runReports(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting run",
		"companies", cfg.CompaniesPath,
		"people", cfg.PeoplePath,
		"reports", cfg.Reports,
		"format", cfg.Format,
		"parallel", cfg.Parallel,
	)

	ds, err := newLoader(cfg, logger).Load(ctx, cfg.CompaniesPath, cfg.PeoplePath)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}
	if cfg.Parallel {
		pipelineOpts = append(pipelineOpts, pipeline.WithConcurrency(cfg.Parallelism))
	}

	stepOpts := []pipeline.ReportStepOption{
		pipeline.WithParams(analysis.Params{TopN: cfg.TopN}),
		pipeline.WithStepLogger(logger),
	}
	charts := newChartRenderer(cfg, logger)
	if charts != nil {
		stepOpts = append(stepOpts, pipeline.WithRenderer(charts))
	}

	p, err := pipeline.DefaultPipeline(cfg.Reports, pipelineOpts, stepOpts...)
	if err != nil {
		return err
	}

	startTime := time.Now()
	res, err := p.Execute(ctx, ds)
	if err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	logger.Info("run completed",
		"run", res.Run.ID,
		"reports", len(res.Outcomes),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if err := writeResult(cmd, cfg, res, charts); err != nil {
		return err
	}

	for _, w := range res.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", w)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("some reports failed: %w", err)
	}
	return nil
}

// writeResult writes res in the configured format.
func writeResult(cmd *cobra.Command, cfg *config.Config, res *pipeline.Result, charts *chart.PNGRenderer) error {
	out, closeOut, err := openOutput(cfg.OutputFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	w, err := report.New(cfg.Format, out, report.Options{
		Version: getVersion(),
		Charts:  charts,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return errors.Join(err, closeOut())
	}

	if _, err := w.Write(res); err != nil {
		return errors.Join(fmt.Errorf("failed to write report: %w", err), closeOut())
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if cfg.OutputFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", cfg.OutputFile)
	}
	if charts != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Charts saved to: %s\n", charts.Dir())
	}
	return nil
}
