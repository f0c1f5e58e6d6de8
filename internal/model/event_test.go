package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReduce(t *testing.T, state ClockState, events ...Event) (ClockState, []Effect) {
	t.Helper()
	var all []Effect
	for _, ev := range events {
		next, effects, err := Reduce(state, ev)
		require.NoError(t, err, "event %s", ev.Type)
		state = next
		all = append(all, effects...)
	}
	return state, all
}

func ticks(n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = Tick()
	}
	return events
}

func TestNewClockStateDefaults(t *testing.T) {
	c := NewClockState(DefaultSettings())

	assert.Equal(t, [2]int64{600000, 600000}, c.Remaining)
	assert.False(t, c.Started)
	assert.True(t, c.Paused)
	assert.False(t, c.AlarmFired)
	assert.True(t, c.SettingsOpen)
	assert.Equal(t, 5, c.Settings.IncrementSeconds)
	assert.True(t, c.Settings.SoundEnabled)
}

func TestTickOnlyWhileRunning(t *testing.T) {
	idle := NewClockState(DefaultSettings())
	next, _ := mustReduce(t, idle, ticks(5)...)
	assert.Equal(t, idle, next, "idle clock must not tick")

	running, _ := mustReduce(t, idle, TapSide(PlayerOne))
	next, _ = mustReduce(t, running, ticks(30)...)
	assert.Equal(t, int64(600000), next.Remaining[PlayerOne])
	assert.Equal(t, int64(597000), next.Remaining[PlayerTwo])

	paused, _ := mustReduce(t, next, TogglePause())
	after, _ := mustReduce(t, paused, ticks(10)...)
	assert.Equal(t, paused.Remaining, after.Remaining)
	assert.Equal(t, PlayerTwo, after.ActivePlayer)
}

func TestTickMonotonic(t *testing.T) {
	state, _ := mustReduce(t, NewClockState(DefaultSettings()), TapSide(PlayerTwo))
	for i := 0; i < 50; i++ {
		prev := state
		state, _ = mustReduce(t, state, Tick())
		assert.LessOrEqual(t, state.Remaining[state.ActivePlayer], prev.Remaining[prev.ActivePlayer])
		assert.Equal(t, prev.Remaining[PlayerTwo], state.Remaining[PlayerTwo])
	}
}

func TestFirstTapStartsOpponent(t *testing.T) {
	c := NewClockState(DefaultSettings())

	next, effects := mustReduce(t, c, TapSide(PlayerOne))

	assert.True(t, next.Started)
	assert.False(t, next.Paused)
	assert.Equal(t, PlayerTwo, next.ActivePlayer)
	assert.Equal(t, c.Remaining, next.Remaining, "no increment on the first tap")
	assert.Equal(t, []Effect{EffectPlayClick}, effects)
}

func TestTapAppliesIncrementAndFlips(t *testing.T) {
	state, _ := mustReduce(t, NewClockState(DefaultSettings()), TapSide(PlayerOne))
	state, _ = mustReduce(t, state, ticks(30)...)
	require.Equal(t, int64(597000), state.Remaining[PlayerTwo])

	state, effects := mustReduce(t, state, TapSide(PlayerTwo))

	assert.Equal(t, int64(602000), state.Remaining[PlayerTwo])
	assert.Equal(t, int64(600000), state.Remaining[PlayerOne])
	assert.Equal(t, PlayerOne, state.ActivePlayer)
	assert.Equal(t, []Effect{EffectPlayClick}, effects)
}

func TestTapNonActiveSideIsNoop(t *testing.T) {
	state, _ := mustReduce(t, NewClockState(DefaultSettings()), TapSide(PlayerOne), Tick())

	next, effects, err := Reduce(state, TapSide(PlayerOne))

	require.NoError(t, err)
	assert.Equal(t, state, next)
	assert.Empty(t, effects)
	assert.False(t, state.SideEnabled(PlayerOne))
	assert.True(t, state.SideEnabled(PlayerTwo))
}

func TestTapUnpauses(t *testing.T) {
	state, _ := mustReduce(t, NewClockState(DefaultSettings()), TapSide(PlayerOne), TogglePause())
	require.True(t, state.Paused)

	state, _ = mustReduce(t, state, TapSide(PlayerTwo))

	assert.False(t, state.Paused)
	assert.Equal(t, PlayerOne, state.ActivePlayer)
}

func TestTapInvalidPlayer(t *testing.T) {
	c := NewClockState(DefaultSettings())

	next, _, err := Reduce(c, TapSide(Player(2)))

	assert.True(t, errors.Is(err, ErrInvalidPlayer))
	assert.Equal(t, c, next)
}

func TestTogglePause(t *testing.T) {
	idle := NewClockState(DefaultSettings())
	next, _ := mustReduce(t, idle, TogglePause())
	assert.True(t, next.Paused, "idle clock stays paused")

	running, _ := mustReduce(t, idle, TapSide(PlayerOne))
	paused, _ := mustReduce(t, running, TogglePause())
	assert.True(t, paused.Paused)
	assert.Equal(t, running.ActivePlayer, paused.ActivePlayer)

	resumed, _ := mustReduce(t, paused, TogglePause())
	assert.False(t, resumed.Paused)
}

func TestKeyPressRawToggle(t *testing.T) {
	idle := NewClockState(DefaultSettings())
	next, effects := mustReduce(t, idle, KeyPress())
	assert.Equal(t, idle, next)
	assert.Empty(t, effects)

	running, _ := mustReduce(t, idle, TapSide(PlayerOne), Tick())
	flipped, effects := mustReduce(t, running, KeyPress())

	assert.Equal(t, PlayerOne, flipped.ActivePlayer)
	assert.Equal(t, running.Remaining, flipped.Remaining, "keypress applies no increment")
	assert.Empty(t, effects)

	paused, _ := mustReduce(t, running, TogglePause(), KeyPress())
	assert.True(t, paused.Paused, "keypress does not resume")
	assert.Equal(t, PlayerOne, paused.ActivePlayer)
}

func TestAlarmFiresOnce(t *testing.T) {
	state, _ := mustReduce(t, NewClockState(DefaultSettings()), TapSide(PlayerOne))
	state.Remaining[PlayerTwo] = 50

	var alarms int
	for _, expect := range []int64{-50, -50} {
		var effects []Effect
		state, effects = mustReduce(t, state, Tick())
		assert.Equal(t, expect, state.Remaining[PlayerTwo])
		for _, e := range effects {
			if e == EffectPlayAlarm {
				alarms++
			}
		}
	}

	// Forcing a further decrease must not replay the alarm either.
	state.Remaining[PlayerTwo] = -150
	_, effects := mustReduce(t, state, Tick(), KeyPress(), Tick())
	assert.NotContains(t, effects, EffectPlayAlarm)

	assert.Equal(t, 1, alarms)
	assert.True(t, state.AlarmFired)
	assert.True(t, state.Expired())
	flagged, ok := state.Flagged()
	assert.True(t, ok)
	assert.Equal(t, PlayerTwo, flagged)
}

func TestAlarmSoundsWhenClickMuted(t *testing.T) {
	settings := DefaultSettings()
	settings.SoundEnabled = false
	state, effects := mustReduce(t, NewClockState(settings), TapSide(PlayerOne))
	assert.Empty(t, effects, "muted tap does not click")

	state.Remaining[PlayerTwo] = 50
	state, effects = mustReduce(t, state, Tick())
	assert.Equal(t, []Effect{EffectPlayAlarm}, effects)
	assert.True(t, state.AlarmFired)
	assert.Equal(t, int64(-50), state.Remaining[PlayerTwo])

	// Unmuting keeps the remaining time, and the alarm has already sounded.
	settings.SoundEnabled = true
	state, effects = mustReduce(t, state, OpenSettings(), ChangeSettings(settings), Tick())
	assert.Equal(t, int64(-50), state.Remaining[PlayerTwo])
	assert.NotContains(t, effects, EffectPlayAlarm)
}

func TestResetIdempotent(t *testing.T) {
	state, _ := mustReduce(t, NewClockState(DefaultSettings()), TapSide(PlayerOne))
	state.Remaining[PlayerTwo] = 0
	state, _ = mustReduce(t, state, Tick())
	require.True(t, state.AlarmFired)

	once, _ := mustReduce(t, state, Reset())
	twice, _ := mustReduce(t, once, Reset())

	assert.Equal(t, once, twice)
	assert.False(t, once.Started)
	assert.True(t, once.Paused)
	assert.False(t, once.AlarmFired)
	assert.Equal(t, [2]int64{600000, 600000}, once.Remaining)
}

func TestChangeSettings(t *testing.T) {
	tests := []struct {
		name      string
		change    func(s Settings) Settings
		wantMins  [2]int
		wantReset bool
	}{
		{
			name:      "minutes change resets both sides",
			change:    func(s Settings) Settings { s.MinutesPerPlayer = [2]int{15, 15}; return s },
			wantMins:  [2]int{15, 15},
			wantReset: true,
		},
		{
			name:      "same time mirrors player two onto player one",
			change:    func(s Settings) Settings { s.MinutesPerPlayer = [2]int{3, 7}; return s },
			wantMins:  [2]int{7, 7},
			wantReset: true,
		},
		{
			name: "independent minutes",
			change: func(s Settings) Settings {
				s.SameTimeForBoth = false
				s.MinutesPerPlayer = [2]int{3, 7}
				return s
			},
			wantMins:  [2]int{3, 7},
			wantReset: true,
		},
		{
			name:      "toggling same time alone resets",
			change:    func(s Settings) Settings { s.SameTimeForBoth = false; return s },
			wantMins:  [2]int{10, 10},
			wantReset: true,
		},
		{
			name:      "increment change keeps remaining time",
			change:    func(s Settings) Settings { s.IncrementSeconds = 2; return s },
			wantMins:  [2]int{10, 10},
			wantReset: false,
		},
		{
			name:      "sound change keeps remaining time",
			change:    func(s Settings) Settings { s.SoundEnabled = false; return s },
			wantMins:  [2]int{10, 10},
			wantReset: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _ := mustReduce(t, NewClockState(DefaultSettings()), TapSide(PlayerOne), Tick(), Tick())
			before := state

			next, _ := mustReduce(t, state, ChangeSettings(tt.change(state.Settings)))

			assert.Equal(t, tt.wantMins, next.Settings.MinutesPerPlayer)
			assert.Equal(t, before.Started, next.Started)
			assert.Equal(t, before.Paused, next.Paused)
			assert.Equal(t, before.ActivePlayer, next.ActivePlayer)
			if tt.wantReset {
				assert.Equal(t, [2]int64{
					int64(tt.wantMins[0]) * 60000,
					int64(tt.wantMins[1]) * 60000,
				}, next.Remaining)
			} else {
				assert.Equal(t, before.Remaining, next.Remaining)
			}
		})
	}
}

func TestChangeSettingsRequiresOpenPanel(t *testing.T) {
	state, _ := mustReduce(t, NewClockState(DefaultSettings()), CloseSettings())

	next, _, err := Reduce(state, ChangeSettings(DefaultSettings()))

	assert.True(t, errors.Is(err, ErrSettingsClosed))
	assert.Equal(t, state, next)

	reopened, _ := mustReduce(t, state, OpenSettings())
	assert.True(t, reopened.SettingsOpen)
	assert.Equal(t, state.Remaining, reopened.Remaining, "opening the panel keeps running state")
}

func TestZeroMinutesExpiresImmediately(t *testing.T) {
	settings := DefaultSettings()
	settings.MinutesPerPlayer = [2]int{0, 0}

	state, effects := mustReduce(t, NewClockState(settings), TapSide(PlayerOne))

	assert.True(t, state.Expired())
	assert.Contains(t, effects, EffectPlayAlarm)
}

func TestTouchStartPreloads(t *testing.T) {
	c := NewClockState(DefaultSettings())
	next, effects := mustReduce(t, c, TouchStart())
	assert.Equal(t, c, next)
	assert.Equal(t, []Effect{EffectPreloadAudio}, effects)

	c.Settings.SoundEnabled = false
	_, effects = mustReduce(t, c, TouchStart())
	assert.Empty(t, effects)
}

func TestUnknownEvent(t *testing.T) {
	_, _, err := Reduce(NewClockState(DefaultSettings()), Event{Type: "bogus"})
	assert.True(t, errors.Is(err, ErrUnknownEvent))
}
