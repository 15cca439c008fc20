package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/tradeshow-events/internal/filter"
)

var flagListMonths []string

func newMonthsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "months",
		Short:        "Show the months a run would harvest",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runMonths,
	}

	cmd.Flags().StringSliceVar(&flagListMonths, "months", nil, "Months to show, by name, alias or value (default: all configured)")

	return cmd
}

func runMonths(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("months") {
		cfg.SelectedMonths = splitList(flagListMonths)
	}

	months, err := cfg.RunMonths(time.Now())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tVALUE\tALIASES")
	for _, m := range months {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m, m.Value, strings.Join(m.Aliases, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if flagVerbose && len(months) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFirst pass qualifies rows by %s\n", filter.ForMonth(months[0]))
	}
	return nil
}
