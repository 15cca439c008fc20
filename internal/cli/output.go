package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
	"github.com/pfrederiksen/tradeshow-events/internal/harvest"
	"github.com/pfrederiksen/tradeshow-events/internal/logger"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// RunReport is what a run leaves behind: printed at the end and saved for the
// report command
type RunReport struct {
	FinishedAt time.Time         `json:"finished_at"`
	Summary    harvest.Summary   `json:"summary"`
	OutputPath string            `json:"output_path,omitempty"`
	Snapshot   string            `json:"snapshot,omitempty"`
	Error      string            `json:"error,omitempty"`
	Changes    *event.DiffResult `json:"changes,omitempty"`
	Metrics    *logger.Snapshot  `json:"metrics,omitempty"`
	Records    []*event.Record   `json:"records"`
}

// WriteOutput writes the report in the specified format
func WriteOutput(w io.Writer, report *RunReport, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeText(w, report, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the report as JSON
func writeJSON(w io.Writer, report *RunReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// writeText outputs the report as human-readable text
func writeText(w io.Writer, report *RunReport, verbose bool) error {
	s := report.Summary

	switch {
	case s.Aborted:
		fmt.Fprintln(w, "Harvest aborted.")
	case s.Cancelled:
		fmt.Fprintln(w, "Harvest cancelled.")
	default:
		fmt.Fprintln(w, "Harvest complete.")
	}

	if s.Total == 0 {
		fmt.Fprintln(w, "No events found.")
	} else {
		fmt.Fprintf(w, "\nTotal events found: %d\n", s.Total)
		fmt.Fprintf(w, "Contact information found for %d events\n", s.ContactFound())
		fmt.Fprintf(w, "  Websites: %d\n", s.WithWebsite)
		fmt.Fprintf(w, "  Emails:   %d\n", s.WithEmail)
		fmt.Fprintf(w, "  Company names: %d (AI %d, website %d, not found %d)\n",
			s.WithCompany, s.FromAI, s.FromWebsite, s.NotFound)
	}

	fmt.Fprintf(w, "\nMonths processed: %d, pages visited: %d\n", s.MonthsProcessed, s.PagesVisited)
	if s.TokensUsed > 0 {
		fmt.Fprintf(w, "Tokens used: %d\n", s.TokensUsed)
	}
	if s.CapReached {
		fmt.Fprintln(w, "Event cap reached.")
	}
	if s.Duration > 0 {
		fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(time.Second))
	}
	if report.OutputPath != "" {
		fmt.Fprintf(w, "Results saved to %s\n", report.OutputPath)
	}
	if report.Snapshot != "" {
		fmt.Fprintf(w, "Page snapshot saved to %s\n", report.Snapshot)
	}
	if report.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", report.Error)
	}
	if c := report.Changes; c != nil {
		writeChanges(w, c, verbose)
	}

	if verbose && report.Metrics != nil {
		writeMetrics(w, report.Metrics)
	}

	if verbose && len(report.Records) > 0 {
		fmt.Fprintln(w)
		for _, r := range report.Records {
			fmt.Fprintf(w, "%s (%s, %s)\n", r.Name, r.Dates, r.City)
			if r.CompanyName != "" {
				fmt.Fprintf(w, "     Company: %s [%s]\n", r.CompanyName, r.CompanySource)
			}
			if r.Website != "" {
				fmt.Fprintf(w, "     Website: %s\n", r.Website)
			}
			if r.Email != "" {
				fmt.Fprintf(w, "     Email: %s\n", r.Email)
			}
		}
	}

	return nil
}

// writeMetrics lists the in-process counters and timings of the run
func writeMetrics(w io.Writer, m *logger.Snapshot) {
	if len(m.Counters) == 0 && len(m.Timings) == 0 {
		return
	}

	fmt.Fprintln(w, "\nMetrics:")
	for _, name := range sortedKeys(m.Counters) {
		fmt.Fprintf(w, "  %s: %d\n", name, m.Counters[name])
	}
	for _, name := range sortedKeys(m.Timings) {
		t := m.Timings[name]
		fmt.Fprintf(w, "  %s: %d in %s (avg %s)\n", name, t.Count,
			t.Total.Round(time.Millisecond), t.Average.Round(time.Millisecond))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeChanges summarizes the comparison with the previous run
func writeChanges(w io.Writer, d *event.DiffResult, verbose bool) {
	if d.Empty() {
		fmt.Fprintln(w, "No changes since the previous run.")
		return
	}

	fmt.Fprintf(w, "Since the previous run: %d new, %d removed, %d changed\n",
		len(d.New), len(d.Removed), len(d.Changes))
	if !verbose {
		return
	}
	for _, r := range d.New {
		fmt.Fprintf(w, "  NEW: %s (%s)\n", r.Name, r.Dates)
	}
	for _, r := range d.Removed {
		fmt.Fprintf(w, "  REMOVED: %s (%s)\n", r.Name, r.Dates)
	}
	for _, c := range d.Changes {
		fmt.Fprintf(w, "  CHANGED: %s %s: %q -> %q\n", c.Name, c.ChangeType, c.OldValue, c.NewValue)
	}
}
