package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vixsrc-go/pkg/appctx"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	// No config needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vixsrc %s\n", appctx.Version)
	},
}
