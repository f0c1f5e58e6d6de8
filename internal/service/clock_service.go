package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/model"
)

type ClockService struct {
	clockManager *ClockManager
}

func NewClockService(clockManager *ClockManager) *ClockService {
	return &ClockService{
		clockManager: clockManager,
	}
}

func (cs *ClockService) DefaultSettings() model.Settings {
	return cs.clockManager.Defaults()
}

func (cs *ClockService) CreateClock(settings *model.Settings) (string, error) {
	return cs.clockManager.CreateClock(settings)
}

func (cs *ClockService) RemoveClock(clockID string) error {
	return cs.clockManager.RemoveClock(clockID)
}

func (cs *ClockService) GetClockState(ctx context.Context, clockID string) (model.ClientState, error) {
	session, err := cs.clockManager.GetSession(clockID)
	if err != nil {
		return model.ClientState{}, err
	}
	return session.Snapshot(ctx)
}

// HandleEvent routes a user event to the clock's session.
func (cs *ClockService) HandleEvent(ctx context.Context, clockID string, ev model.Event) (model.ClientState, error) {
	session, err := cs.clockManager.GetSession(clockID)
	if err != nil {
		return model.ClientState{}, err
	}
	state, err := session.Dispatch(ctx, ev)
	if err != nil {
		log.Warn().Err(err).Str("clock_id", clockID).Str("event", string(ev.Type)).Msg("clock event rejected")
	}
	return state, err
}

func (cs *ClockService) TapSide(ctx context.Context, clockID string, player model.Player) (model.ClientState, error) {
	return cs.HandleEvent(ctx, clockID, model.TapSide(player))
}

func (cs *ClockService) TogglePause(ctx context.Context, clockID string) (model.ClientState, error) {
	return cs.HandleEvent(ctx, clockID, model.TogglePause())
}

func (cs *ClockService) KeyPress(ctx context.Context, clockID string) (model.ClientState, error) {
	return cs.HandleEvent(ctx, clockID, model.KeyPress())
}

func (cs *ClockService) Reset(ctx context.Context, clockID string) (model.ClientState, error) {
	return cs.HandleEvent(ctx, clockID, model.Reset())
}

func (cs *ClockService) OpenSettings(ctx context.Context, clockID string) (model.ClientState, error) {
	return cs.HandleEvent(ctx, clockID, model.OpenSettings())
}

func (cs *ClockService) CloseSettings(ctx context.Context, clockID string) (model.ClientState, error) {
	return cs.HandleEvent(ctx, clockID, model.CloseSettings())
}

func (cs *ClockService) UpdateSettings(ctx context.Context, clockID string, settings model.Settings) (model.ClientState, error) {
	return cs.HandleEvent(ctx, clockID, model.ChangeSettings(settings))
}

func (cs *ClockService) TouchStart(ctx context.Context, clockID string) (model.ClientState, error) {
	return cs.HandleEvent(ctx, clockID, model.TouchStart())
}

// Subscribe registers a watcher on the clock's snapshots.
func (cs *ClockService) Subscribe(clockID string) (<-chan model.ClientState, func(), error) {
	session, err := cs.clockManager.GetSession(clockID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}
