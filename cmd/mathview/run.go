package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathview/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [math]",
	Short: "Start an interactive MathView session",
	Long: `Starts a session in the terminal UI, or in the line REPL when stdin is not a
terminal. An argument replaces the configured start formula.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		flags := cmd.Flags()
		opts.Input, _ = flags.GetString("input")
		if opts.Input == "" && len(args) > 0 {
			opts.Input = args[0]
		}
		opts.Plain, _ = flags.GetBool("plain")
		opts.Headless, _ = flags.GetBool("headless")
		opts.JSON, _ = flags.GetBool("json")
		opts.Watch, _ = flags.GetBool("watch")
		opts.Fresh, _ = flags.GetBool("fresh")
		opts.RulesDir, _ = flags.GetString("rules-dir")
		opts.Language, _ = flags.GetString("lang")

		if opts.Plain && (opts.Headless || opts.JSON) {
			return fmt.Errorf("--plain cannot be combined with --headless or --json")
		}
		return cli.Execute(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "Math to submit first (TeX in $...$, ASCIIMath in backquotes, or MathML)")
	runCmd.Flags().Bool("plain", false, "Use the line REPL even on a terminal")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no prompts, strict IO)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (JSON Lines input/output)")
	runCmd.Flags().BoolP("watch", "w", false, "Reload rule files when they change on disk")
	runCmd.Flags().Bool("fresh", false, "Forget the saved preferences of the profile first")
	runCmd.Flags().String("rules-dir", "", "Directory holding the speech and braille rule files")
	runCmd.Flags().String("lang", "", "Language of the speech rules")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
