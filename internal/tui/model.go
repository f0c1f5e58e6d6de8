// Package tui is the terminal front end for a single local clock.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/model"
	"github.com/benbeisheim/chessclock/internal/service"
)

const dispatchTimeout = time.Second

type stateMsg model.ClientState

type closedMsg struct{}

// Clock is the subset of a session the terminal needs.
type Clock interface {
	Dispatch(ctx context.Context, ev model.Event) (model.ClientState, error)
	Snapshot(ctx context.Context) (model.ClientState, error)
	Subscribe() (<-chan model.ClientState, func())
}

var _ Clock = (*service.Session)(nil)

type Model struct {
	clock       Clock
	states      <-chan model.ClientState
	unsubscribe func()

	state   model.ClientState
	editing model.Player
	err     error
}

func New(clock Clock) (Model, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	state, err := clock.Snapshot(ctx)
	if err != nil {
		return Model{}, err
	}
	states, unsubscribe := clock.Subscribe()
	return Model{
		clock:       clock,
		states:      states,
		unsubscribe: unsubscribe,
		state:       state,
		editing:     model.PlayerTwo,
	}, nil
}

func waitForState(states <-chan model.ClientState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return closedMsg{}
		}
		return stateMsg(state)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForState(m.states)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.unsubscribe()
			return m, tea.Quit
		case "tab":
			m.editing = m.editing.Other()
			return m, nil
		}
		m.dispatch(m.eventForKey(msg.String()))
		return m, nil

	case stateMsg:
		m.state = model.ClientState(msg)
		return m, waitForState(m.states)

	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) dispatch(ev model.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	state, err := m.clock.Dispatch(ctx, ev)
	m.err = err
	if err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Msg("key rejected")
		return
	}
	m.state = state
}

// eventForKey maps a key to a clock event. Keys without a binding act as the
// raw keypress flip.
func (m Model) eventForKey(key string) model.Event {
	switch key {
	case "a":
		return model.TapSide(model.PlayerOne)
	case "l":
		return model.TapSide(model.PlayerTwo)
	case "p":
		return model.TogglePause()
	case "r":
		return model.Reset()
	case "s":
		return model.OpenSettings()
	case "enter":
		return model.CloseSettings()
	}

	if !m.state.SettingsOpen {
		return model.KeyPress()
	}

	settings := m.state.Settings
	// With a shared time, player one mirrors player two.
	target := m.editing
	if settings.SameTimeForBoth {
		target = model.PlayerTwo
	}
	switch key {
	case "+", "=":
		settings.MinutesPerPlayer[target]++
	case "-":
		if settings.MinutesPerPlayer[target] > 1 {
			settings.MinutesPerPlayer[target]--
		}
	case "]":
		settings.IncrementSeconds++
	case "[":
		if settings.IncrementSeconds > 0 {
			settings.IncrementSeconds--
		}
	case "m":
		settings.SoundEnabled = !settings.SoundEnabled
	case "d":
		settings.SameTimeForBoth = !settings.SameTimeForBoth
	default:
		return model.KeyPress()
	}
	return model.ChangeSettings(settings)
}

var playerNames = [2]string{"PLAYER ONE (a)", "PLAYER TWO (l)"}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	for p, cp := range m.state.Players {
		marker := "  "
		if cp.Active {
			marker = "▶ "
		}
		flag := ""
		if cp.Flagged {
			flag = "  FLAG"
		}
		fmt.Fprintf(&b, "%s%-16s %9s%s\n", marker, playerNames[p], cp.Display, flag)
	}

	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")

	if m.state.SettingsOpen {
		s := m.state.Settings
		b.WriteString("\nSettings\n")
		if s.SameTimeForBoth {
			fmt.Fprintf(&b, "  minutes      %d each  (+/-)\n", s.MinutesPerPlayer[model.PlayerTwo])
		} else {
			for p := range s.MinutesPerPlayer {
				cursor := " "
				if model.Player(p) == m.editing {
					cursor = "*"
				}
				fmt.Fprintf(&b, " %s%-12s %d  (+/-, tab)\n", cursor, strings.ToLower(playerNames[p][:10]), s.MinutesPerPlayer[p])
			}
		}
		fmt.Fprintf(&b, "  increment    %ds  ([/])\n", s.IncrementSeconds)
		fmt.Fprintf(&b, "  same time    %s  (d)\n", onOff(s.SameTimeForBoth))
		fmt.Fprintf(&b, "  sound        %s  (m)\n", onOff(s.SoundEnabled))
		b.WriteString("  enter to close\n")
	}

	if m.err != nil {
		fmt.Fprintf(&b, "\nerror: %v\n", m.err)
	}

	b.WriteString("\np pause · r reset · s settings · any other key flips · q quit\n")
	return b.String()
}

func (m Model) status() string {
	switch {
	case m.state.Expired:
		return "time!"
	case !m.state.Started:
		return "ready - the first tap starts the opponent's clock"
	case m.state.Paused:
		return "paused"
	}
	return "running"
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
