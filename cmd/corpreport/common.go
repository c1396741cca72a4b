package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpreport/internal/config"
	"github.com/nao1215/corpreport/internal/dataset"
	corplog "github.com/nao1215/corpreport/internal/log"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getPersistentString reads a root flag, falling back to def when the
// command runs without its parent (as in tests).
func getPersistentString(cmd *cobra.Command, name, def string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return def
		}
	}
	return v
}

// setupLogger creates the masking structured logger on stderr.
func setupLogger(cmd *cobra.Command) (*slog.Logger, error) {
	format := getPersistentString(cmd, "log-format", config.DefaultLogFormat)
	return corplog.New(cmd.ErrOrStderr(), getVerboseFlag(cmd), corplog.Format(format))
}

// loadConfigFile finds and loads the configuration file into cfg.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise defaults are kept when no file is found.
func loadConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	cfg.ConfigFilePath = getPersistentString(cmd, "config", "")
	explicit := cfg.ConfigFilePath != ""

	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if explicit {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	f, err := config.LoadConfigFile(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.ApplyFile(f)
	return nil
}

// newLoader builds the dataset loader for cfg.
func newLoader(cfg *config.Config, logger *slog.Logger) *dataset.Loader {
	return dataset.NewLoader(
		dataset.WithColumnMap(cfg.Columns),
		dataset.WithSheet(cfg.Sheet),
		dataset.WithCompanyTable(cfg.CompanyTable),
		dataset.WithPeopleTable(cfg.PeopleTable),
		dataset.WithLogger(logger),
	)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// openOutput returns the destination for a report: path, or out when path
// is empty. The returned close function must be called once writing is
// done.
func openOutput(path string, out io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return out, func() error { return nil }, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may contain business data that should only be readable by the owner
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
