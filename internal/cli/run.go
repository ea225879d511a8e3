package cli

import (
	"github.com/aretw0/mathview/internal/config"
)

// RunOptions contains all the configuration for the run and serve commands.
// Empty fields keep the value from the configuration file.
type RunOptions struct {
	ConfigPath string
	Profile    string
	Backend    string
	StorePath  string
	RedisAddr  string
	RulesDir   string
	Language   string
	Watch      bool
	LogLevel   string
	Debug      bool
	Input      string
	Plain      bool // line REPL even on a terminal
	Headless   bool // no banner, no prompt
	JSON       bool // JSON Lines in and out; implies Headless
	Fresh      bool // forget saved preferences first
	Addr       string
}

// loadConfig reads the configuration file and applies the flag overrides.
func loadConfig(opts RunOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Profile != "" {
		cfg.Profile = opts.Profile
	}
	if opts.Backend != "" {
		cfg.Store.Backend = opts.Backend
	}
	if opts.StorePath != "" {
		switch cfg.Store.Backend {
		case config.BackendSQLite:
			cfg.Store.SQLitePath = opts.StorePath
		default:
			cfg.Store.Path = opts.StorePath
		}
	}
	if opts.RedisAddr != "" {
		cfg.Store.RedisAddr = opts.RedisAddr
	}
	if opts.RulesDir != "" {
		cfg.Rules.Dir = opts.RulesDir
	}
	if opts.Language != "" {
		cfg.Rules.Language = opts.Language
	}
	if opts.Watch {
		cfg.Rules.Watch = true
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Input != "" {
		cfg.InitialInput = opts.Input
	}
	if opts.Addr != "" {
		cfg.HTTP.Addr = opts.Addr
	}
	cfg.Normalize()
	return cfg, nil
}

// Execute handles the 'run' command.
func Execute(opts RunOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	return RunSession(opts, cfg)
}
