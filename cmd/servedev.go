package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wordcraft/internal/devserver"
	"github.com/abhisek/wordcraft/internal/logger"
)

const shutdownTimeout = 5 * time.Second

var serveDevCmd = &cobra.Command{
	Use:   "serve-dev",
	Short: "Run a local development server from a YAML deck",
	Long: `Run an in-memory server that speaks the wordcraft API, seeded from a
YAML deck. State is lost on exit. Log in with a user from the deck
(the built-in deck has demo/demo).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := logger.New(cfg)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer log.Sync()

		addr := cfg.Dev.Addr
		if f, _ := cmd.Flags().GetString("addr"); f != "" {
			addr = f
		}
		deckPath := cfg.Dev.Deck
		if f, _ := cmd.Flags().GetString("deck"); f != "" {
			deckPath = f
		}

		deck := devserver.DefaultDeck()
		if deckPath != "" {
			if deck, err = devserver.LoadDeck(deckPath); err != nil {
				return err
			}
		}

		opts := []devserver.Option{devserver.WithLogger(log)}
		if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
			opts = append(opts, devserver.WithBatchSize(n))
		}
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			opts = append(opts, devserver.WithSeed(seed))
		}
		srv := devserver.New(deck, opts...)

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}

		httpSrv := &http.Server{
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpSrv.Serve(ln)
		}()

		url := "http://" + ln.Addr().String()
		log.Info("dev server listening",
			zap.String("addr", url),
			zap.Int("collections", len(deck.Collections)),
			zap.Int("users", len(deck.Users)))
		fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\nPoint the client at it with: wordcraft config set-url %s\n", url, url)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down dev server")
		if err := httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveDevCmd.Flags().String("addr", "", "Listen address (default dev.addr, 127.0.0.1:8088)")
	serveDevCmd.Flags().String("deck", "", "YAML deck file (default dev.deck or the built-in deck)")
	serveDevCmd.Flags().Int("batch-size", 0, "Words per study session (default 20)")
	serveDevCmd.Flags().Uint64("seed", 0, "Shuffle seed for random mode")
}
