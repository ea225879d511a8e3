package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathview"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mathview",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mathview version %s\n", strings.TrimSpace(mathview.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
