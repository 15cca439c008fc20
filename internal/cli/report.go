package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
	"github.com/pfrederiksen/tradeshow-events/internal/storage"
)

var (
	flagReportFormat string
	flagSort         string
	flagUpcoming     bool
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "report",
		Short:        "Print the summary and records of the last run",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runReport,
	}

	cmd.Flags().StringVar(&flagReportFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "row", "Record order: row, month, name or company")
	cmd.Flags().BoolVar(&flagUpcoming, "upcoming", false, "Leave out events that have already ended")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagReportFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagReportFormat)
	}
	order, ok := parseSortOrder(flagSort)
	if !ok {
		return fmt.Errorf("invalid sort order: %s", flagSort)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	var report RunReport
	if err := store.LoadReport(LastRunReport, &report); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no run recorded in %s yet", store.Dir())
		}
		return fmt.Errorf("loading report: %w", err)
	}

	if flagUpcoming {
		report.Records = upcoming(report.Records, time.Now())
	}
	report.Records = sortRecords(report.Records, order)
	return WriteOutput(cmd.OutOrStdout(), &report, format, true)
}

// upcoming drops records whose dates have passed. Unreadable dates are kept.
func upcoming(records []*event.Record, now time.Time) []*event.Record {
	var out []*event.Record
	for _, r := range records {
		if !r.IsPastEvent(now) {
			out = append(out, r)
		}
	}
	return out
}
