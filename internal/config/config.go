package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/wordcraft/internal/study"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "WORDCRAFT"

var (
	ErrInvalidRecheckDelay = errors.New("study.recheck_delay must be positive")
	ErrInvalidTimeout      = errors.New("api.timeout must be positive")
	ErrInvalidEnv          = errors.New("env must be local or production")
)

// Config holds application configuration loaded from files, environment
// variables and flags.
type Config struct {
	Env    string `mapstructure:"env"`     // local or production
	DBPath string `mapstructure:"db_path"` // SQLite file; empty means store.DefaultDBPath
	Log    Log    `mapstructure:"log"`
	API    API    `mapstructure:"api"`
	Study  Study  `mapstructure:"study"`
	Dev    Dev    `mapstructure:"dev"`
}

// Log configures the zap logger.
type Log struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // output path; empty logs to stderr (CLI) or nowhere (TUI)
}

// API configures the backend client.
type API struct {
	BaseURL string        `mapstructure:"base_url"` // falls back to the URL saved in the store
	Timeout time.Duration `mapstructure:"timeout"`
}

// Study configures the session engine.
type Study struct {
	RecheckDelay int    `mapstructure:"recheck_delay"`
	DefaultMode  string `mapstructure:"default_mode"`
}

// Dev configures `wordcraft serve-dev`.
type Dev struct {
	Addr string `mapstructure:"addr"`
	Deck string `mapstructure:"deck"` // YAML deck path; empty uses the embedded deck
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config file path. When set, a missing file
	// is an error.
	ConfigFile string

	// SearchPaths are directories searched for config.yaml when ConfigFile
	// is empty. Defaults to the working directory and
	// $XDG_CONFIG_HOME/wordcraft.
	SearchPaths []string

	// EnvFile is a dotenv file loaded before reading the environment.
	// Defaults to ".env"; a missing file is ignored.
	EnvFile string
}

// New returns a viper instance with defaults and environment bindings set.
// Callers may bind flags to it before passing it to Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("env", "local")
	v.SetDefault("db_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("study.recheck_delay", study.DefaultRecheckDelay)
	v.SetDefault("study.default_mode", string(study.ModeNew))
	v.SetDefault("dev.addr", "127.0.0.1:8088")
	v.SetDefault("dev.deck", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // api.base_url -> WORDCRAFT_API_BASE_URL
	v.AutomaticEnv()

	_ = v.BindEnv("db_path", EnvPrefix+"_DB")
	return v
}

// Load reads configuration into a Config. v is typically created by New;
// a nil v uses a fresh one.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	if v == nil {
		v = New()
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		paths := opts.SearchPaths
		if paths == nil {
			paths = defaultSearchPaths()
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Env != "local" && c.Env != "production" {
		return fmt.Errorf("%w: %q", ErrInvalidEnv, c.Env)
	}
	if c.Study.RecheckDelay <= 0 {
		return ErrInvalidRecheckDelay
	}
	if _, err := study.ParseMode(c.Study.DefaultMode); err != nil {
		return fmt.Errorf("study.default_mode: %w", err)
	}
	if c.API.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// IsProduction reports whether env is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsedFile returns the config file viper read, or "" when none was found.
func UsedFile(v *viper.Viper) string {
	return v.ConfigFileUsed()
}

func defaultSearchPaths() []string {
	paths := []string{"."}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, "wordcraft"))
	}
	return paths
}
