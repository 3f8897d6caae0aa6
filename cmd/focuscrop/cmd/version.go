package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/focuscrop"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Printing the version never needs configuration.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "focuscrop version %s\n", focuscrop.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
