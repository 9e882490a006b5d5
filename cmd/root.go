package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhisek/wordcraft/internal/api"
	"github.com/abhisek/wordcraft/internal/config"
	"github.com/abhisek/wordcraft/internal/logger"
	"github.com/abhisek/wordcraft/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "wordcraft",
	Short: "Vocabulary trainer for the terminal",
	Long:  "Wordcraft: study word collections from your terminal with typed recall and spaced review.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil, "")
	},
	SilenceUsage: true,
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WORDCRAFT_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./config.yaml or $XDG_CONFIG_HOME/wordcraft/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveDevCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads config with flag overrides applied.
func loadConfig(cmd *cobra.Command) (*config.Config, *viper.Viper, error) {
	v := config.New()
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		if err := v.BindPFlag("db_path", f); err != nil {
			return nil, nil, err
		}
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		if err := v.BindPFlag("log.level", f); err != nil {
			return nil, nil, err
		}
	}

	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, config.Options{ConfigFile: file})
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, v, nil
}

// resolveDBPath returns the database path from --db, WORDCRAFT_DB or
// db_path, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// deps holds what most subcommands need. Close releases the store and
// flushes the logger.
type deps struct {
	cfg    *config.Config
	v      *viper.Viper
	log    *zap.Logger
	store  *store.Store
	client *api.Client
	user   *api.User // cached login, nil when signed out
}

func (d *deps) Close() {
	if d.store != nil {
		d.store.Close()
	}
	_ = d.log.Sync()
}

// setup builds config, logger, store and API client. tui selects the file-only
// logger so log lines do not land on the alt screen.
func setup(cmd *cobra.Command, tui bool) (*deps, error) {
	cfg, v, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var log *zap.Logger
	if tui {
		log, err = logger.ForTUI(cfg)
	} else {
		log, err = logger.New(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	d := &deps{cfg: cfg, v: v, log: log, store: st}
	if err := d.connect(cmd.Context()); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// connect creates the API client from config and stored credentials.
func (d *deps) connect(ctx context.Context) error {
	settings := d.store.SettingsRepo()

	baseURL := d.cfg.API.BaseURL
	if baseURL == "" {
		saved, err := settings.Get(ctx, store.KeyBaseURL)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("read server address: %w", err)
		}
		baseURL = saved
	}

	opts := []api.Option{
		api.WithTimeout(d.cfg.API.Timeout),
		api.WithLogger(d.log.Named("api")),
	}

	creds, err := store.LoadCredentials(ctx, settings)
	switch {
	case err == nil:
		opts = append(opts, api.WithToken(creds.Token))
		d.user = decodeUser(creds.User)
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("read credentials: %w", err)
	}

	d.client = api.New(baseURL, opts...)
	return nil
}

// requireServer fails with setup instructions when no base URL is known.
func (d *deps) requireServer() error {
	if d.client.BaseURL() == "" {
		return fmt.Errorf("%w: run `wordcraft config set-url <url>` or set WORDCRAFT_API_BASE_URL", api.ErrNotConfigured)
	}
	return nil
}

// requireLogin also checks that a token is stored.
func (d *deps) requireLogin() error {
	if err := d.requireServer(); err != nil {
		return err
	}
	if d.client.Token() == "" {
		return errors.New("not logged in: run `wordcraft login`")
	}
	return nil
}

// explain adds a hint to errors a user can fix.
func explain(err error) error {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return fmt.Errorf("%w (run `wordcraft login`)", err)
	case errors.Is(err, api.ErrNotConfigured):
		return fmt.Errorf("%w (run `wordcraft config set-url <url>`)", err)
	}
	return err
}
