package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/tradeshow-events/internal/config"
	"github.com/pfrederiksen/tradeshow-events/internal/harvest"
	"github.com/pfrederiksen/tradeshow-events/internal/logger"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitCancelled = 3
)

// Version is reported by --version
var Version = "dev"

var (
	flagConfig  string
	flagEnvFile string
	flagDataDir string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tradeshow-events",
		Short: "Harvest US trade show events with organizer contact details",
		Long: `A CLI tool that walks a trade show calendar month by month, keeps the
United States events of each month and looks up the organizing company and a
contact email for every one of them. Results are written to a spreadsheet.`,
		Version:       Version,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultConfigFile, "Path to config.yaml")
	cmd.PersistentFlags().StringVar(&flagEnvFile, "env", ".env", "Path to a .env file")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for reports and debug snapshots")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newRunCmd(), newMonthsCmd(), newReportCmd(), newConfigCmd())

	return cmd
}

// loadConfig reads the config file and applies the persistent flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig, flagEnvFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flagVerbose {
		cfg.Log.Level = string(logger.LevelDebug)
	}
	return cfg, nil
}

// setupLogging installs the default logger and returns its flush func
func setupLogging(cfg *config.Config) (func(), error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	var l *logger.Logger
	if cfg.Log.File != "" {
		l = logger.NewWithFile(level, os.Stderr, cfg.Log.File)
	} else {
		l = logger.New(level, os.Stderr)
	}
	logger.SetDefault(l)

	return func() { _ = l.Sync() }, nil
}

// splitList accepts both repeated flags and comma separated values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// exitCode maps a command error to the process exit code
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, harvest.ErrCancelled):
		return ExitCancelled
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	code := exitCode(err)

	switch code {
	case ExitSuccess:
		return
	case ExitCancelled:
		fmt.Fprintln(os.Stderr, "Harvest cancelled; partial results were saved.")
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
