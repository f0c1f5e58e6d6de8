package model

import (
	"time"
)

const (
	// TickPeriod is how often the running side loses time.
	TickPeriod = 100 * time.Millisecond

	minuteMillis = int64(time.Minute / time.Millisecond)
	secondMillis = int64(time.Second / time.Millisecond)
	tickMillis   = int64(TickPeriod / time.Millisecond)
)

type Settings struct {
	MinutesPerPlayer [2]int `json:"minutesPerPlayer" yaml:"minutes_per_player"`
	IncrementSeconds int    `json:"incrementSeconds" yaml:"increment_seconds"`
	SameTimeForBoth  bool   `json:"sameTimeForBoth" yaml:"same_time_for_both"`
	SoundEnabled     bool   `json:"soundEnabled" yaml:"sound_enabled"`
}

func DefaultSettings() Settings {
	return Settings{
		MinutesPerPlayer: [2]int{10, 10},
		IncrementSeconds: 5,
		SameTimeForBoth:  true,
		SoundEnabled:     true,
	}
}

// Normalize mirrors player two's minutes onto player one when both share a time.
func (s Settings) Normalize() Settings {
	if s.SameTimeForBoth {
		s.MinutesPerPlayer[PlayerOne] = s.MinutesPerPlayer[PlayerTwo]
	}
	return s
}

func (s Settings) FullTime(p Player) int64 {
	return int64(s.MinutesPerPlayer[p]) * minuteMillis
}

func (s Settings) IncrementMillis() int64 {
	return int64(s.IncrementSeconds) * secondMillis
}

// ClockState is the whole state of one two-player clock. Remaining is in
// milliseconds and may dip one tick below zero before expiry is noticed.
type ClockState struct {
	Remaining    [2]int64
	ActivePlayer Player
	Started      bool
	Paused       bool
	AlarmFired   bool
	SettingsOpen bool
	Settings     Settings
}

// NewClockState returns an idle clock with the settings panel open.
func NewClockState(settings Settings) ClockState {
	settings = settings.Normalize()
	return ClockState{
		Remaining:    [2]int64{settings.FullTime(PlayerOne), settings.FullTime(PlayerTwo)},
		ActivePlayer: PlayerOne,
		Paused:       true,
		SettingsOpen: true,
		Settings:     settings,
	}
}

func (c ClockState) Running() bool {
	return c.Started && !c.Paused
}

func (c ClockState) Expired() bool {
	return c.Started && (c.Remaining[PlayerOne] <= 0 || c.Remaining[PlayerTwo] <= 0)
}

// Flagged reports which player ran out of time, if any.
func (c ClockState) Flagged() (Player, bool) {
	if !c.Started {
		return 0, false
	}
	for _, p := range []Player{PlayerOne, PlayerTwo} {
		if c.Remaining[p] <= 0 {
			return p, true
		}
	}
	return 0, false
}

// SideEnabled mirrors the disabled state of a player's control: once the game
// has started only the side whose clock is running may be tapped.
func (c ClockState) SideEnabled(p Player) bool {
	return !c.Started || c.ActivePlayer == p
}

func (c ClockState) resetTimes() ClockState {
	c.Remaining[PlayerOne] = c.Settings.FullTime(PlayerOne)
	c.Remaining[PlayerTwo] = c.Settings.FullTime(PlayerTwo)
	return c
}
