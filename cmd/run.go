package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wordcraft/internal/api"
	"github.com/abhisek/wordcraft/internal/app"
	"github.com/abhisek/wordcraft/internal/screens/session"
	"github.com/abhisek/wordcraft/internal/study"
)

const setupNotice = `No server configured.

Point wordcraft at your backend:

    wordcraft config set-url https://words.example.com
    wordcraft login

Press Ctrl+C to exit.`

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Start a study session for a collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("collection")
		modeFlag, _ := cmd.Flags().GetString("mode")

		var mode study.Mode
		if modeFlag != "" {
			m, err := study.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			mode = m
		}
		return runApp(cmd, &session.Collection{ID: id}, mode)
	},
}

func init() {
	studyCmd.Flags().String("collection", "", "Collection ID to study")
	studyCmd.Flags().String("mode", "", "Study mode: new, review, random or final (default from config)")
	_ = studyCmd.MarkFlagRequired("collection")
}

// runApp builds dependencies and launches the TUI. start, when set, opens a
// session for that collection immediately.
func runApp(cmd *cobra.Command, start *session.Collection, mode study.Mode) error {
	ctx := cmd.Context()
	d, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	defaultMode, err := study.ParseMode(d.cfg.Study.DefaultMode)
	if err != nil {
		return err
	}

	opts := app.Options{
		Collections:  d.client,
		Backend:      &api.StudyBackend{Client: d.client},
		Events:       d.store.EventRepo(),
		Logger:       d.log,
		DefaultMode:  defaultMode,
		RecheckDelay: d.cfg.Study.RecheckDelay,
		StartMode:    mode,
	}
	if d.user != nil {
		opts.User = d.user.DisplayName()
	}

	if err := d.requireServer(); err != nil {
		opts.Notice = setupNotice
		return app.Run(ctx, opts)
	}
	if err := d.requireLogin(); err != nil {
		return err
	}

	if start != nil {
		c, err := d.client.Collection(ctx, start.ID)
		if err != nil {
			return fmt.Errorf("load collection %q: %w", start.ID, explain(err))
		}
		start.Name = c.Name
		opts.Start = start
	}

	d.log.Info("starting tui",
		zap.String("server", d.client.BaseURL()),
		zap.String("default_mode", string(defaultMode)))
	return app.Run(ctx, opts)
}
