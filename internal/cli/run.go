package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/tradeshow-events/internal/browser"
	"github.com/pfrederiksen/tradeshow-events/internal/company"
	"github.com/pfrederiksen/tradeshow-events/internal/config"
	"github.com/pfrederiksen/tradeshow-events/internal/contact"
	"github.com/pfrederiksen/tradeshow-events/internal/event"
	"github.com/pfrederiksen/tradeshow-events/internal/harvest"
	"github.com/pfrederiksen/tradeshow-events/internal/llm"
	"github.com/pfrederiksen/tradeshow-events/internal/logger"
	"github.com/pfrederiksen/tradeshow-events/internal/metrics"
	"github.com/pfrederiksen/tradeshow-events/internal/notifier"
	"github.com/pfrederiksen/tradeshow-events/internal/scraper"
	"github.com/pfrederiksen/tradeshow-events/internal/session"
	"github.com/pfrederiksen/tradeshow-events/internal/storage"
)

// Report names in the data directory. LastRunReport is overwritten by every
// run; LastCompleteReport only by runs that finished without an error.
const (
	LastRunReport      = "last_run"
	LastCompleteReport = "last_complete"
)

var (
	flagMonths         []string
	flagMaxEvents      int
	flagHeadless       bool
	flagOutput         string
	flagOutputFormat   string
	flagFormat         string
	flagMetricsFile    string
	flagAnnounce       string
	flagAnnounceDryRun bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Harvest events and write them to the output file",
		Long: `Walks the listing for every selected month, resolves the organizing company
and contact email of each qualifying US event, and writes the records once the
run ends. Interrupting the run (Ctrl+C) keeps the records gathered so far.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runHarvest,
	}

	cmd.Flags().StringSliceVar(&flagMonths, "months", nil, "Months to harvest, by name, alias or value (default: all configured)")
	cmd.Flags().IntVar(&flagMaxEvents, "max-events", 0, "Maximum number of events to resolve")
	cmd.Flags().BoolVar(&flagHeadless, "headless", true, "Run Chrome without a window")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&flagOutputFormat, "output-format", "", "Output file format: xlsx, csv, json or ics (default: from extension)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Summary format: text or json")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&flagAnnounce, "announce", "", "Post the run summary to twitter or telegram")
	cmd.Flags().BoolVar(&flagAnnounceDryRun, "announce-dry-run", false, "Print the announcement instead of posting it")

	return cmd
}

// applyRunFlags overrides config values with flags that were set explicitly
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("months") {
		cfg.SelectedMonths = splitList(flagMonths)
	}
	if flags.Changed("max-events") {
		cfg.MaxEvents = flagMaxEvents
	}
	if flags.Changed("headless") {
		cfg.Headless = flagHeadless
	}
	if flags.Changed("output") {
		cfg.Output.Path = flagOutput
	}
	if flags.Changed("output-format") {
		cfg.Output.Format = flagOutputFormat
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
}

// runHarvest is the main command logic
func runHarvest(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	flush, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer flush()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	months, err := cfg.RunMonths(time.Now())
	if err != nil {
		return fmt.Errorf("selecting months: %w", err)
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	sink, err := storage.NewSink(cfg.Output.Format, cfg.Output.Path)
	if err != nil {
		return err
	}
	announcer, err := newAnnouncer(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New()
	web := scraper.New()

	companies := company.NewResolver(newCompleter(cfg), web)
	companies.OnFetchError = func() { rec.FetchError("company") }
	contacts := contact.NewResolver(web)
	contacts.OnFetchError = rec.FetchError

	drv, err := browser.NewChrome(ctx, browser.Options{
		Headless: cfg.Headless,
		ExecPath: cfg.ChromePath,
	})
	if err != nil {
		return err
	}
	defer drv.Close()

	sess := session.New(cfg.MaxEvents)
	progress := make(chan harvest.Progress, 64)

	ctrl := harvest.New(harvest.Config{
		URL:           cfg.URL,
		Months:        months,
		Selectors:     cfg.Selectors,
		Settle:        cfg.Wait(),
		ContactDelay:  cfg.ContactDelay(),
		SelectTimeout: cfg.SelectTimeout(),
	}, drv, companies, contacts,
		harvest.WithSnapshots(store),
		harvest.WithMetrics(rec),
		harvest.WithProgress(progress),
	)

	res, runErr := supervise(ctx, ctrl, sess, progress, cmd.ErrOrStderr())

	metricsSnap := logger.GetMetricsSnapshot()
	report := &RunReport{
		FinishedAt: time.Now().UTC(),
		Summary:    res.Summary,
		Snapshot:   res.SnapshotPath,
		Metrics:    &metricsSnap,
		Records:    res.Records,
	}
	if runErr != nil {
		report.Error = runErr.Error()
	}

	if runErr == nil {
		report.Changes = diffPrevious(store, res.Records)
	}

	if len(res.Records) > 0 {
		if err := sink.Write(res.Records); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		report.OutputPath = sink.Path()
		logger.Info("Results saved", logger.Fields{"path": sink.Path(), "records": len(res.Records)})
	} else {
		logger.Warn("No events found", logger.Fields{"session_id": sess.ID}, nil)
	}

	saveReports(store, report)

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics", logger.Fields{"path": cfg.MetricsFile}, err)
		}
	}

	if err := WriteOutput(cmd.OutOrStdout(), report, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if announcer != nil && !errors.Is(runErr, harvest.ErrCancelled) {
		if err := announcer.Notify(res.Summary); err != nil {
			logger.Warn("Failed to announce run", nil, err)
		}
	}

	return runErr
}

// supervise runs the controller next to a progress printer. A signal on ctx
// cancels the session so the controller stops at its next checkpoint.
func supervise(ctx context.Context, ctrl *harvest.Controller, sess *session.Session, progress chan harvest.Progress, out io.Writer) (*harvest.Result, error) {
	stopCancel := context.AfterFunc(ctx, sess.Cancel)
	defer stopCancel()

	var (
		res    *harvest.Result
		runErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		defer close(progress)
		res, runErr = ctrl.Run(ctx, sess)
		return nil
	})
	g.Go(func() error {
		printProgress(out, progress)
		return nil
	})
	_ = g.Wait()

	return res, runErr
}

// printProgress writes one line per update until the channel is closed
func printProgress(w io.Writer, progress <-chan harvest.Progress) {
	for p := range progress {
		fmt.Fprintf(w, "[%d/%d] %s\n", p.Collected, p.Cap, p.Message)
	}
}

// newCompleter returns the language model client, or nil when no key is configured
func newCompleter(cfg *config.Config) llm.Completer {
	client, err := llm.NewOpenAI(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	})
	if err != nil {
		logger.Warn("Language model disabled", nil, err)
		return nil
	}
	return client
}

// saveReports stores the report as the last run and, when it has no error,
// as the last complete run
func saveReports(store *storage.Storage, report *RunReport) {
	names := []string{LastRunReport}
	if report.Error == "" {
		names = append(names, LastCompleteReport)
	}
	for _, name := range names {
		path, err := store.SaveReport(name, report)
		if err != nil {
			logger.Warn("Failed to save run report", logger.Fields{"name": name}, err)
			continue
		}
		logger.Debug("Saved run report", logger.Fields{"path": path})
	}
}

// diffPrevious compares records with the last complete run, if there is one
func diffPrevious(store *storage.Storage, records []*event.Record) *event.DiffResult {
	var previous RunReport
	if err := store.LoadReport(LastCompleteReport, &previous); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to load previous run", nil, err)
		}
		return nil
	}
	// Partial runs would report everything they missed as removed
	if previous.Error != "" {
		return nil
	}

	d := event.Diff(previous.Records, records)
	logger.Info("Compared with previous run", logger.Fields{
		"new":     len(d.New),
		"removed": len(d.Removed),
		"changed": len(d.Changes),
	})
	return d
}

// newAnnouncer returns the notifier selected by flags, or nil
func newAnnouncer(out io.Writer) (notifier.Notifier, error) {
	if flagAnnounceDryRun {
		return notifier.NewDryRunNotifier(out), nil
	}

	var (
		n   notifier.Notifier
		err error
	)
	switch strings.ToLower(flagAnnounce) {
	case "":
		return nil, nil
	case "twitter":
		n, err = notifier.NewTwitterNotifier()
	case "telegram":
		n, err = notifier.NewTelegramNotifier()
	default:
		return nil, fmt.Errorf("unknown announce target: %s (must be 'twitter' or 'telegram')", flagAnnounce)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing announcer: %w", err)
	}
	return n, nil
}
