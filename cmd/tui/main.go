package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/audio"
	"github.com/benbeisheim/chessclock/internal/config"
	"github.com/benbeisheim/chessclock/internal/model"
	"github.com/benbeisheim/chessclock/internal/service"
	"github.com/benbeisheim/chessclock/internal/tui"
)

func main() {
	// The terminal belongs to the UI, so logs only go to CLOCK_LOG_FILE.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("CLOCK_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	log.Logger = zerolog.New(logOut).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := service.NewSession("local", model.NewClockState(cfg.Clock), clockwork.NewRealClock(), audio.NewBell(os.Stderr))
	go func() {
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("clock session failed")
		}
	}()

	// Load the bell before the first tap, like a touch unlocking audio.
	if _, err := session.Dispatch(ctx, model.TouchStart()); err != nil {
		log.Warn().Err(err).Msg("failed to preload cues")
	}

	m, err := tui.New(session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start clock: %v\n", err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
	}

	session.Close()
	<-session.Done()
}
