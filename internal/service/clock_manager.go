// service/clock_manager.go
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/audio"
	"github.com/benbeisheim/chessclock/internal/model"
)

var (
	ErrClockNotFound = errors.New("clock not found")
	ErrClockExists   = errors.New("clock already exists")
)

type ManagerConfig struct {
	Defaults    model.Settings
	IdleTimeout time.Duration // zero disables reaping
	Clock       clockwork.Clock

	// NewPlayer builds the audio backend for a new session.
	NewPlayer func(clockID string) audio.Player
}

type ClockManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	config ManagerConfig
}

func NewClockManager(ctx context.Context, config ManagerConfig) *ClockManager {
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.NewPlayer == nil {
		config.NewPlayer = func(id string) audio.Player { return audio.Remote{ClockID: id} }
	}

	ctx, cancel := context.WithCancel(ctx)
	cm := &ClockManager{
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
		config:   config,
	}

	if config.IdleTimeout > 0 {
		cm.wg.Add(1)
		go cm.reapIdle()
	}

	return cm
}

// reapIdle closes sessions nobody has watched or touched for IdleTimeout.
func (cm *ClockManager) reapIdle() {
	defer cm.wg.Done()

	ticker := cm.config.Clock.NewTicker(cm.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-cm.ctx.Done():
			return
		case <-ticker.Chan():
			now := cm.config.Clock.Now()
			cm.mu.Lock()
			for id, s := range cm.sessions {
				if s.Subscribers() > 0 || now.Sub(s.LastActivity()) < cm.config.IdleTimeout {
					continue
				}
				s.Close()
				delete(cm.sessions, id)
				log.Info().Str("clock_id", id).Msg("reaped idle clock")
			}
			cm.mu.Unlock()
		}
	}
}

func (cm *ClockManager) CreateClock(settings *model.Settings) (string, error) {
	clockID := uuid.New().String()
	if err := cm.createClock(clockID, settings); err != nil {
		return "", err
	}
	return clockID, nil
}

// Defaults returns the settings new clocks start with.
func (cm *ClockManager) Defaults() model.Settings {
	return cm.config.Defaults
}

func (cm *ClockManager) createClock(clockID string, settings *model.Settings) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.ctx.Err() != nil {
		return errors.Wrap(cm.ctx.Err(), "clock manager stopped")
	}
	if _, exists := cm.sessions[clockID]; exists {
		return ErrClockExists
	}

	s := cm.config.Defaults
	if settings != nil {
		s = *settings
	}
	session := NewSession(clockID, model.NewClockState(s), cm.config.Clock, cm.config.NewPlayer(clockID))
	cm.sessions[clockID] = session

	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		if err := session.Run(cm.ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("clock_id", clockID).Msg("clock session failed")
		}
		cm.forget(clockID, session)
	}()

	log.Info().Str("clock_id", clockID).Msg("clock created")
	return nil
}

func (cm *ClockManager) forget(clockID string, session *Session) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.sessions[clockID] == session {
		delete(cm.sessions, clockID)
	}
}

func (cm *ClockManager) GetSession(clockID string) (*Session, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	session, exists := cm.sessions[clockID]
	if !exists {
		return nil, errors.Wrapf(ErrClockNotFound, "clock %s", clockID)
	}
	return session, nil
}

func (cm *ClockManager) RemoveClock(clockID string) error {
	cm.mu.Lock()
	session, exists := cm.sessions[clockID]
	delete(cm.sessions, clockID)
	cm.mu.Unlock()

	if !exists {
		return errors.Wrapf(ErrClockNotFound, "clock %s", clockID)
	}
	session.Close()
	<-session.Done()
	log.Info().Str("clock_id", clockID).Msg("clock removed")
	return nil
}

func (cm *ClockManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.sessions)
}

// Close stops every session and waits for their tick drivers to exit.
func (cm *ClockManager) Close() {
	cm.mu.Lock()
	cm.cancel()
	cm.mu.Unlock()
	cm.wg.Wait()
}
