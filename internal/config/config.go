// Package config loads the mathview host configuration.
//
// A YAML file is decoded into a generic map first and then mapped onto Config
// with mapstructure, so unknown keys are ignored and missing keys keep their
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/mathview/internal/logging"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "mathview.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// EnvEncryptionKey supplies store.encryption_key when the file leaves it empty.
const EnvEncryptionKey = "MATHVIEW_ENCRYPTION_KEY"

// StartFormula is the initial input of interactive hosts.
const StartFormula = `$x = {-b \pm \sqrt{b^2-4ac} \over 2a}$`

var backends = []string{BackendMemory, BackendFile, BackendRedis, BackendSQLite}

type Store struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	Path        string `mapstructure:"path" yaml:"path"`
	RedisAddr   string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	// EncryptionKey is a base64 AES-256 key. When set, blobs are stored encrypted.
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key"`
}

type Rules struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	Language string `mapstructure:"language" yaml:"language"`
	Watch    bool   `mapstructure:"watch" yaml:"watch"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type HTTP struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type Metrics struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Config is the full host configuration.
type Config struct {
	Profile      string  `mapstructure:"profile" yaml:"profile"`
	Store        Store   `mapstructure:"store" yaml:"store"`
	Rules        Rules   `mapstructure:"rules" yaml:"rules"`
	Log          Log     `mapstructure:"log" yaml:"log"`
	HTTP         HTTP    `mapstructure:"http" yaml:"http"`
	Metrics      Metrics `mapstructure:"metrics" yaml:"metrics"`
	InitialInput string  `mapstructure:"initial_input" yaml:"initial_input"`
	// BothBraille shows Nemeth and UEB side by side.
	BothBraille bool `mapstructure:"both_braille" yaml:"both_braille"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Profile: "default",
		Store: Store{
			Backend:     BackendFile,
			Path:        ".mathview/profiles",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "mathview:prefs:",
			SQLitePath:  ".mathview/mathview.db",
		},
		Rules:        Rules{Dir: "Rules", Language: "en"},
		Log:          Log{Level: "info"},
		HTTP:         HTTP{Addr: ":8080"},
		Metrics:      Metrics{Enabled: true},
		InitialInput: StartFormula,
	}
}

// Load reads path over the defaults. An empty path tries DefaultFile and
// falls back to the defaults when it does not exist; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return applyEnv(Default()), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if cfg.Store.EncryptionKey == "" {
		cfg.Store.EncryptionKey = os.Getenv(EnvEncryptionKey)
	}
	return cfg
}

// Parse decodes YAML over the defaults and normalizes the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize trims values and replaces invalid ones with their defaults.
func (c *Config) Normalize() {
	def := Default()

	c.Profile = strings.TrimSpace(c.Profile)
	if c.Profile == "" {
		c.Profile = def.Profile
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if !slices.Contains(backends, c.Store.Backend) {
		c.Store.Backend = def.Store.Backend
	}
	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = def.Store.RedisAddr
	}
	if c.Store.RedisPrefix == "" {
		c.Store.RedisPrefix = def.Store.RedisPrefix
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = def.Store.SQLitePath
	}

	if c.Rules.Dir == "" {
		c.Rules.Dir = def.Rules.Dir
	}
	if c.Rules.Language == "" {
		c.Rules.Language = def.Rules.Language
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		c.Log.Level = def.Log.Level
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}
}
