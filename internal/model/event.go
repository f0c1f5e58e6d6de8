package model

import (
	"github.com/pkg/errors"
)

type EventType string

const (
	EventTick           EventType = "tick"
	EventTapSide        EventType = "tap"
	EventTogglePause    EventType = "pause"
	EventKeyPress       EventType = "keypress"
	EventReset          EventType = "reset"
	EventOpenSettings   EventType = "openSettings"
	EventCloseSettings  EventType = "closeSettings"
	EventChangeSettings EventType = "settings"
	EventTouchStart     EventType = "touchStart"
)

type Event struct {
	Type     EventType
	Player   Player
	Settings Settings
}

func Tick() Event { return Event{Type: EventTick} }
func TapSide(p Player) Event { return Event{Type: EventTapSide, Player: p} }
func TogglePause() Event { return Event{Type: EventTogglePause} }
func KeyPress() Event { return Event{Type: EventKeyPress} }
func Reset() Event { return Event{Type: EventReset} }
func OpenSettings() Event { return Event{Type: EventOpenSettings} }
func CloseSettings() Event { return Event{Type: EventCloseSettings} }
func ChangeSettings(s Settings) Event { return Event{Type: EventChangeSettings, Settings: s} }
func TouchStart() Event { return Event{Type: EventTouchStart} }

// Effect is a side effect requested by a transition. Effects are only ever
// emitted while sound is enabled.
type Effect string

const (
	EffectPlayClick    Effect = "click"
	EffectPlayAlarm    Effect = "alarm"
	EffectPreloadAudio Effect = "preload"
)

var (
	ErrSettingsClosed = errors.New("settings panel is closed")
	ErrUnknownEvent   = errors.New("unknown event")
)

// Reduce applies ev to state and returns the next state with the effects the
// caller must carry out. On error the returned state is the input state.
func Reduce(state ClockState, ev Event) (ClockState, []Effect, error) {
	next := state
	var effects []Effect

	switch ev.Type {
	case EventTick:
		if next.Running() && next.Remaining[PlayerOne] > 0 && next.Remaining[PlayerTwo] > 0 {
			next.Remaining[next.ActivePlayer] -= tickMillis
		}

	case EventTapSide:
		if !ev.Player.Valid() {
			return state, nil, errors.Wrapf(ErrInvalidPlayer, "tap %d", ev.Player)
		}
		if !next.SideEnabled(ev.Player) {
			return state, nil, nil
		}
		// The tapping player ends their move, so the increment is theirs and
		// the opponent's clock starts. The very first tap only starts the game.
		if next.Started {
			next.Remaining[ev.Player] += next.Settings.IncrementMillis()
		}
		next.ActivePlayer = ev.Player.Other()
		next.Started = true
		next.Paused = false
		effects = appendSound(effects, next, EffectPlayClick)

	case EventTogglePause:
		if next.Started {
			next.Paused = !next.Paused
		}

	case EventKeyPress:
		if next.Started {
			next.ActivePlayer = next.ActivePlayer.Other()
		}

	case EventReset:
		next.Started = false
		next.Paused = true
		next.AlarmFired = false
		next.ActivePlayer = PlayerOne
		next = next.resetTimes()

	case EventOpenSettings:
		next.SettingsOpen = true

	case EventCloseSettings:
		next.SettingsOpen = false

	case EventChangeSettings:
		if !next.SettingsOpen {
			return state, nil, ErrSettingsClosed
		}
		prev := next.Settings
		next.Settings = ev.Settings.Normalize()
		if prev.MinutesPerPlayer != next.Settings.MinutesPerPlayer || prev.SameTimeForBoth != next.Settings.SameTimeForBoth {
			next = next.resetTimes()
		}

	case EventTouchStart:
		effects = appendSound(effects, next, EffectPreloadAudio)

	default:
		return state, nil, errors.Wrapf(ErrUnknownEvent, "%q", ev.Type)
	}

	if next.Started && !next.AlarmFired && (next.Remaining[PlayerOne] <= 0 || next.Remaining[PlayerTwo] <= 0) {
		next.AlarmFired = true
		// The alarm sounds even when the click is muted.
		effects = append(effects, EffectPlayAlarm)
	}

	return next, effects, nil
}

func appendSound(effects []Effect, state ClockState, e Effect) []Effect {
	if !state.Settings.SoundEnabled {
		return effects
	}
	return append(effects, e)
}
