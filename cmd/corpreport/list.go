package main

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nao1215/corpreport/internal/analysis"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available reports",
		Long: `List prints every report with the table it reads and the canonical
columns it needs. Source headers are matched to canonical columns ignoring
case; use the "columns" section of the configuration file for other names.`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header([]string{"Name", "Input", "Columns", "Title"})
	for _, r := range analysis.All() {
		if err := table.Append([]string{
			r.Name,
			r.Input.String(),
			strings.Join(r.Columns, ", "),
			r.Title,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
