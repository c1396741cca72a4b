package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpreport/internal/config"
)

// NewRootCmd creates the root command for corpreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpreport",
		Short: "Summary tables and charts for company and people datasets",
		Long: `corpreport reads a company table and a people table (CSV, XLSX or SQLite)
and produces summary tables and charts:

  Company_Locations            revenue share per company location
  Industry_Distribution        revenue share per industry (bubble chart)
  Revenue_Industries_by_State  revenue per state and industry (treemap)
  Revenue_by_Company           revenue per company (bar chart)
  Top_10_Companies_by_City     cities with most companies (donut chart)
  Unique_Job_Titles            most common job titles (bar chart)

Results are written as text, JSON, Markdown, HTML or XLSX. Charts are
written as PNG files with --charts.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .corpreport in current, XDG config or home directory)")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
