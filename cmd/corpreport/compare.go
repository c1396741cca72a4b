package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/config"
	"github.com/nao1215/corpreport/internal/dataset"
	"github.com/nao1215/corpreport/internal/model"
	"github.com/nao1215/corpreport/internal/pipeline"
	"github.com/nao1215/corpreport/internal/report"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <report>",
		Short: "Compare one report between two snapshots of a table",
		Long: `Compare computes one report on two versions of its input table and shows
the rows that were added, removed or changed, with the signed difference of
every numeric column.

Rows are matched by their key: the company name for Revenue_by_Company,
the city for Top_10_Companies_by_City, and so on. When both snapshots have
the same content fingerprint the report is not computed at all.

Examples:
  # Revenue changes between two quarterly exports
  corpreport compare Revenue_by_Company --before q1.csv --after q2.csv

  # Job title changes as Markdown
  corpreport compare Unique_Job_Titles -b old/people.xlsx -a new/people.xlsx -m

  # As JSON
  corpreport compare Industry_Distribution -b q1.db -a q2.db --json`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("before", "b", "", "Earlier snapshot of the report's input table")
	cmd.Flags().StringP("after", "a", "", "Later snapshot of the report's input table")
	_ = cmd.MarkFlagRequired("before")
	_ = cmd.MarkFlagRequired("after")

	cmd.Flags().IntP("top", "n", config.DefaultTopN, "Number of rows in ranked reports")
	cmd.Flags().String("sheet", "", "XLSX sheet to read (default: first sheet)")
	cmd.Flags().String("table", "", "SQLite table to read (default: companies or people)")

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// compareOptions holds the parsed flags of the compare command.
type compareOptions struct {
	before, after string
	asJSON        bool
	asMarkdown    bool
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	r, ok := analysis.Lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: %q (known: %s)", analysis.ErrUnknownReport, args[0], strings.Join(analysis.Names(), ", "))
	}

	cfg := config.NewConfig()
	if err := loadConfigFile(cmd, cfg); err != nil {
		return err
	}

	var (
		opts compareOptions
		err  error
	)
	if opts.before, err = cmd.Flags().GetString("before"); err != nil {
		return err
	}
	if opts.after, err = cmd.Flags().GetString("after"); err != nil {
		return err
	}
	if opts.asJSON, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.asMarkdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cmd.Flags().Changed("top") {
		if cfg.TopN, err = cmd.Flags().GetInt("top"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("sheet") {
		if cfg.Sheet, err = cmd.Flags().GetString("sheet"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("table") {
		table, err := cmd.Flags().GetString("table")
		if err != nil {
			return err
		}
		cfg.CompanyTable, cfg.PeopleTable = table, table
	}
	if cfg.TopN <= 0 || cfg.TopN > config.MaxTopN {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidTopN)
	}

	logger, err := setupLogger(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	c, err := compareSnapshots(ctx, cfg, r, opts, logger)
	if err != nil {
		return err
	}
	return outputComparison(cmd, c, opts)
}

// compareSnapshots loads both snapshots and compares report r on them.
func compareSnapshots(ctx context.Context, cfg *config.Config, r analysis.Report, opts compareOptions, logger *slog.Logger) (*report.Comparison, error) {
	loader := newLoader(cfg, logger)

	before, err := loadSnapshot(ctx, loader, r.Input, opts.before)
	if err != nil {
		return nil, fmt.Errorf("failed to load before snapshot: %w", err)
	}
	after, err := loadSnapshot(ctx, loader, r.Input, opts.after)
	if err != nil {
		return nil, fmt.Errorf("failed to load after snapshot: %w", err)
	}

	if report.SameSources(before.Sources, after.Sources) {
		logger.Info("snapshots are identical", "fingerprint", before.Sources[0].ShortFingerprint())
		now := time.Now()
		return report.NewIdenticalComparison(r.Name,
			model.RunInfo{GeneratedAt: now, Sources: before.Sources},
			model.RunInfo{GeneratedAt: now, Sources: after.Sources},
		), nil
	}

	stepOpts := []pipeline.ReportStepOption{
		pipeline.WithParams(analysis.Params{TopN: cfg.TopN}),
		pipeline.WithStepLogger(logger),
	}
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			p := pipeline.New(pipeline.WithLogger(logger), pipeline.WithContinueOnError(true))
			p.AddStep(pipeline.NewReportStep(r, stepOpts...))
			return p
		},
		pipeline.WithBatchLogger(logger),
	)

	results, err := bp.ProcessBatch(ctx, []*model.Dataset{before, after})
	if err != nil {
		return nil, fmt.Errorf("comparison interrupted: %w", err)
	}
	return report.Compare(r.Name, results[0], results[1])
}

// loadSnapshot reads one version of the table the report reads.
func loadSnapshot(ctx context.Context, loader *dataset.Loader, in model.Input, path string) (*model.Dataset, error) {
	switch in {
	case model.InputPeople:
		people, src, err := loader.LoadPeople(ctx, path)
		if err != nil {
			return nil, err
		}
		return &model.Dataset{People: people, Sources: []model.SourceInfo{src}}, nil
	default:
		companies, src, err := loader.LoadCompanies(ctx, path)
		if err != nil {
			return nil, err
		}
		return &model.Dataset{Companies: companies, Sources: []model.SourceInfo{src}}, nil
	}
}

// outputComparison writes the comparison in the selected format.
func outputComparison(cmd *cobra.Command, c *report.Comparison, opts compareOptions) error {
	out := cmd.OutOrStdout()
	switch {
	case opts.asJSON:
		return report.WriteComparisonJSON(out, c)
	case opts.asMarkdown:
		return report.WriteComparisonMarkdown(out, c)
	default:
		return report.WriteComparisonText(out, c)
	}
}
