// Package audio plays the clock's sound cues. Playback is best effort: a cue
// that cannot be played is logged and otherwise ignored.
package audio

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/model"
)

type Cue string

const (
	CueClick Cue = "click"
	CueAlarm Cue = "alarm"
)

// Player is a sound backend. Load prepares (and on some platforms unlocks)
// every cue; PlayFromStart rewinds a cue and plays it.
type Player interface {
	Load(ctx context.Context) error
	PlayFromStart(ctx context.Context, cue Cue) error
}

func Play(ctx context.Context, p Player, cue Cue) {
	if err := p.PlayFromStart(ctx, cue); err != nil {
		log.Warn().Err(err).Str("cue", string(cue)).Msg("failed to play cue")
	}
}

func Preload(ctx context.Context, p Player) {
	if err := p.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to preload cues")
	}
}

// Perform carries out the sound effects of a clock transition.
func Perform(ctx context.Context, p Player, effects []model.Effect) {
	for _, e := range effects {
		switch e {
		case model.EffectPlayClick:
			Play(ctx, p, CueClick)
		case model.EffectPlayAlarm:
			Play(ctx, p, CueAlarm)
		case model.EffectPreloadAudio:
			Preload(ctx, p)
		}
	}
}

type Nop struct{}

func (Nop) Load(context.Context) error { return nil }

func (Nop) PlayFromStart(context.Context, Cue) error { return nil }

// Remote stands in for clients that play cues themselves. It only records the
// cue in the log; the cue reaches the client through the clock snapshot.
type Remote struct {
	ClockID string
}

func (r Remote) Load(context.Context) error {
	log.Debug().Str("clock_id", r.ClockID).Msg("client asked to preload cues")
	return nil
}

func (r Remote) PlayFromStart(_ context.Context, cue Cue) error {
	log.Debug().Str("clock_id", r.ClockID).Str("cue", string(cue)).Msg("cue sent to client")
	return nil
}
