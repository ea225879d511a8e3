package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/mathview/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves MathView sessions over a JSON API with server-sent events and
Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		opts.Addr, _ = cmd.Flags().GetString("addr")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.RulesDir, _ = cmd.Flags().GetString("rules-dir")
		opts.Language, _ = cmd.Flags().GetString("lang")
		return cli.Serve(opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default :8080)")
	serveCmd.Flags().BoolP("watch", "w", false, "Push rule file changes to every session")
	serveCmd.Flags().String("rules-dir", "", "Directory holding the speech and braille rule files")
	serveCmd.Flags().String("lang", "", "Language of the speech rules")
}
