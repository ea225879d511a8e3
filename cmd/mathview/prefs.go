package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/mathview/internal/cli"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Inspect and edit saved preferences",
}

func prefsAction(action cli.PrefsAction, use, short string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Prefs(runOptions(cmd), action, args, cmd.OutOrStdout())
		},
	}
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(
		prefsAction(cli.PrefsShow, "show", "Print the preferences of the profile", cobra.NoArgs),
		prefsAction(cli.PrefsSet, "set <key> <value>", "Change one preference of the profile", cobra.ExactArgs(2)),
		prefsAction(cli.PrefsReset, "reset", "Forget the saved preferences of the profile", cobra.NoArgs),
		prefsAction(cli.PrefsList, "list", "List the saved profiles", cobra.NoArgs),
	)
}
