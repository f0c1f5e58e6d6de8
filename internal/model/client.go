package model

// ClientState is the snapshot of a clock sent to renderers.
type ClientState struct {
	ClockID      string          `json:"clockId"`
	Players      [2]ClientPlayer `json:"players"`
	ActivePlayer *Player         `json:"activePlayer"` // nil until the first tap
	Started      bool            `json:"started"`
	Paused       bool            `json:"paused"`
	Expired      bool            `json:"expired"`
	AlarmFired   bool            `json:"alarmFired"`
	SettingsOpen bool            `json:"settingsOpen"`
	Settings     Settings        `json:"settings"`
	Sound        string          `json:"sound"` // cue produced by the transition behind this snapshot
}

func NewClientState(clockID string, c ClockState, effects []Effect) ClientState {
	cs := ClientState{
		ClockID:      clockID,
		Started:      c.Started,
		Paused:       c.Paused,
		Expired:      c.Expired(),
		AlarmFired:   c.AlarmFired,
		SettingsOpen: c.SettingsOpen,
		Settings:     c.Settings,
		Sound:        soundOf(effects),
	}
	if c.Started {
		active := c.ActivePlayer
		cs.ActivePlayer = &active
	}

	flagged, hasFlag := c.Flagged()
	for _, p := range []Player{PlayerOne, PlayerTwo} {
		cs.Players[p] = ClientPlayer{
			TimeLeft: c.Remaining[p],
			Display:  FormatRemaining(c.Remaining[p]),
			Minutes:  c.Settings.MinutesPerPlayer[p],
			Active:   c.Started && c.ActivePlayer == p,
			Enabled:  c.SideEnabled(p),
			Flagged:  hasFlag && flagged == p,
		}
	}
	return cs
}

// soundOf picks the cue a renderer should play; the alarm wins over a click.
func soundOf(effects []Effect) string {
	sound := ""
	for _, e := range effects {
		switch e {
		case EffectPlayAlarm:
			return string(e)
		case EffectPlayClick, EffectPreloadAudio:
			sound = string(e)
		}
	}
	return sound
}
