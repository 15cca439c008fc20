package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/tradeshow-events/internal/config"
)

var flagForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	initCmd := &cobra.Command{
		Use:          "init [path]",
		Short:        "Write a config file with the default settings",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfig
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Default().WriteFile(path, flagForce); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
