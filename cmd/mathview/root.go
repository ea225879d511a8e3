package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathview/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "mathview",
	Short: "MathView explores math expressions as speech and braille",
	Long: `MathView takes TeX, ASCIIMath or MathML, speaks it, renders it as braille
and lets you walk through it with the navigation keys of a screen reader.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file (default ./mathview.yaml when present)")
	flags.StringP("profile", "p", "", "Preference profile to load and save")
	flags.String("store", "", "Preference store backend: memory, file, redis or sqlite")
	flags.String("store-path", "", "Directory of the file store or database of the sqlite store")
	flags.String("redis", "", "Redis address (host:port or redis:// URL)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Bool("debug", false, "Enable verbose debug logging")
}

// runOptions collects the persistent flags shared by every command.
func runOptions(cmd *cobra.Command) cli.RunOptions {
	flags := cmd.Flags()
	var opts cli.RunOptions
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Profile, _ = flags.GetString("profile")
	opts.Backend, _ = flags.GetString("store")
	opts.StorePath, _ = flags.GetString("store-path")
	opts.RedisAddr, _ = flags.GetString("redis")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.Debug, _ = flags.GetBool("debug")
	return opts
}
