package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathblocks/internal/analytics"
	"github.com/abhisek/mathblocks/internal/app"
	"github.com/abhisek/mathblocks/internal/config"
	"github.com/abhisek/mathblocks/internal/content"
	"github.com/abhisek/mathblocks/internal/logging"
	"github.com/abhisek/mathblocks/internal/narration"
	"github.com/abhisek/mathblocks/internal/schedule"
	"github.com/abhisek/mathblocks/internal/screens/env"
)

// exitSyncTimeout bounds the sync run after the TUI closes.
const exitSyncTimeout = 10 * time.Second

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the blocks board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp loads settings and content, opens the store, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	log, logFile, err := logging.ToFile(settings.LogFile, settings.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
	} else {
		defer logFile.Close()
	}

	lib, err := content.Load(settings.ContentDir)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	narrator, stop := newNarrator(settings, log)
	defer stop()

	now := time.Now()
	e := &env.Env{
		Library:  lib,
		Sched:    schedule.New(now),
		Settings: settings,
		Events:   analytics.NewLogger(st.EventRepo(), log),
		Narrator: narrator,
		Learners: st.LearnerRepo(),
		Results:  st.ChallengeRepo(),
		Rand:     rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(os.Getpid()))),
		Log:      log,
	}
	log.Info().Int("models", len(lib)).Str("narration", settings.NarrationMode).Msg("starting")

	if err := app.Run(e); err != nil {
		return err
	}

	if settings.SyncOnExit {
		ctx, cancel := context.WithTimeout(context.Background(), exitSyncTimeout)
		defer cancel()
		syncer := analytics.NewSyncer(st.EventRepo(), syncConfig(settings), log)
		if syncer.Enabled() {
			if _, err := syncer.Sync(ctx); err != nil {
				log.Warn().Err(err).Msg("sync on exit")
			}
		}
	}
	return nil
}

// newNarrator builds the narrator for the configured mode. The returned
// func stops any narration still playing.
func newNarrator(s config.Settings, log zerolog.Logger) (narration.Narrator, func()) {
	switch s.NarrationMode {
	case config.NarrationOff:
		return narration.Silent{}, func() {}
	case config.NarrationCommand:
		c := narration.NewCommand(s.NarrationCommand, log)
		return narration.Tee{&narration.Caption{}, c}, func() {
			c.Cancel()
			c.Wait()
		}
	default:
		return &narration.Caption{}, func() {}
	}
}

func syncConfig(s config.Settings) analytics.SyncConfig {
	return analytics.SyncConfig{
		Endpoint:  s.SyncEndpoint,
		Token:     s.SyncToken,
		BatchSize: s.SyncBatchSize,
	}
}
