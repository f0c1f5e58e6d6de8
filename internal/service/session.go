package service

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/audio"
	"github.com/benbeisheim/chessclock/internal/model"
)

var ErrSessionClosed = errors.New("clock session closed")

type command struct {
	event *model.Event // nil asks for a snapshot only
	reply chan commandResult
}

type commandResult struct {
	state model.ClientState
	err   error
}

// Session owns one clock. Ticks and commands are applied on the goroutine
// running Run, so the clock state has a single writer.
type Session struct {
	ID string

	clock  clockwork.Clock
	player audio.Player
	state  model.ClockState

	cmds chan command
	quit chan struct{}
	done chan struct{}

	closeOnce sync.Once

	mu           sync.Mutex
	subscribers  map[chan model.ClientState]struct{}
	lastActivity time.Time
	stopped      bool
}

func NewSession(id string, state model.ClockState, clock clockwork.Clock, player audio.Player) *Session {
	return &Session{
		ID:           id,
		clock:        clock,
		player:       player,
		state:        state,
		cmds:         make(chan command),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		subscribers:  make(map[chan model.ClientState]struct{}),
		lastActivity: clock.Now(),
	}
}

// Run drives the clock until ctx is cancelled or Close is called. The tick
// driver lives exactly as long as Run.
func (s *Session) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(model.TickPeriod)
	defer func() {
		ticker.Stop()
		s.closeSubscribers()
		close(s.done)
		log.Debug().Str("clock_id", s.ID).Msg("clock session stopped")
	}()

	log.Debug().Str("clock_id", s.ID).Msg("clock session started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.quit:
			return nil
		case <-ticker.Chan():
			if _, err := s.apply(ctx, model.Tick()); err != nil {
				log.Error().Err(err).Str("clock_id", s.ID).Msg("tick failed")
			}
		case cmd := <-s.cmds:
			var res commandResult
			if cmd.event == nil {
				res.state = model.NewClientState(s.ID, s.state, nil)
			} else {
				res.state, res.err = s.apply(ctx, *cmd.event)
			}
			s.touch()
			cmd.reply <- res
		}
	}
}

func (s *Session) apply(ctx context.Context, ev model.Event) (model.ClientState, error) {
	next, effects, err := model.Reduce(s.state, ev)
	if err != nil {
		return model.NewClientState(s.ID, s.state, nil), err
	}
	changed := next != s.state
	s.state = next

	audio.Perform(ctx, s.player, effects)

	snapshot := model.NewClientState(s.ID, s.state, effects)
	if changed || len(effects) > 0 {
		s.publish(snapshot)
	}
	if ev.Type != model.EventTick {
		log.Debug().
			Str("clock_id", s.ID).
			Str("event", string(ev.Type)).
			Bool("changed", changed).
			Msg("clock event applied")
	}
	return snapshot, nil
}

// Dispatch applies ev on the session goroutine and returns the resulting snapshot.
func (s *Session) Dispatch(ctx context.Context, ev model.Event) (model.ClientState, error) {
	return s.send(ctx, command{event: &ev, reply: make(chan commandResult, 1)})
}

func (s *Session) Snapshot(ctx context.Context) (model.ClientState, error) {
	return s.send(ctx, command{reply: make(chan commandResult, 1)})
}

func (s *Session) send(ctx context.Context, cmd command) (model.ClientState, error) {
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return model.ClientState{}, ErrSessionClosed
	case <-ctx.Done():
		return model.ClientState{}, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res.state, res.err
	case <-ctx.Done():
		return model.ClientState{}, ctx.Err()
	}
}

// Subscribe returns a channel of snapshots published after every state change.
// Snapshots are dropped for a subscriber that falls behind. The channel is
// closed when the session stops or the returned cancel func is called.
func (s *Session) Subscribe() (<-chan model.ClientState, func()) {
	ch := make(chan model.ClientState, 16)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.lastActivity = s.clock.Now()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subscribers[ch]; ok {
				delete(s.subscribers, ch)
				close(ch)
			}
			s.lastActivity = s.clock.Now()
		})
	}
}

func (s *Session) publish(snapshot model.ClientState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			log.Warn().Str("clock_id", s.ID).Msg("subscriber behind, snapshot dropped")
		}
	}
}

func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, ch)
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = s.clock.Now()
	s.mu.Unlock()
}

func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Close stops Run. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}
