package controller

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/middleware"
	"github.com/benbeisheim/chessclock/internal/model"
	"github.com/benbeisheim/chessclock/internal/service"
	"github.com/benbeisheim/chessclock/internal/ws"
)

type WebSocketController struct {
	clockService *service.ClockService
}

func NewWebSocketController(clockService *service.ClockService) *WebSocketController {
	return &WebSocketController{
		clockService: clockService,
	}
}

// connWriter serializes writes; the read loop and the state pump share the conn.
type connWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *connWriter) send(t ws.MessageType, payload any) error {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		return err
	}
	return w.write(msg)
}

func (w *connWriter) write(msg ws.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(msg)
}

func (w *connWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.Close()
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	clockID, _ := c.Locals(middleware.ClockIDKey).(string)
	clientID, _ := c.Locals(middleware.ClientIDKey).(string)
	logger := log.With().Str("clock_id", clockID).Str("client_id", clientID).Logger()

	states, unsubscribe, err := wsc.clockService.Subscribe(clockID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to subscribe to clock")
		w := &connWriter{conn: c}
		_ = w.send(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
		c.Close()
		return
	}
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &connWriter{conn: c}
	if state, err := wsc.clockService.GetClockState(ctx, clockID); err == nil {
		if err := w.send(ws.MessageTypeClockState, state); err != nil {
			logger.Warn().Err(err).Msg("failed to send initial state")
		}
	}

	var pump sync.WaitGroup
	pump.Add(1)
	go func() {
		defer pump.Done()
		wsc.pumpStates(w, states, logger)
	}()

	logger.Info().Msg("clock connection opened")

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug().Err(err).Msg("read error")
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn().Err(err).Msg("parse error")
			wsc.sendError(w, err)
			continue
		}

		if err := wsc.handleMessage(ctx, clockID, msg); err != nil {
			logger.Warn().Err(err).Str("type", string(msg.Type)).Msg("handle error")
			wsc.sendError(w, err)
		}
	}

	unsubscribe()
	pump.Wait()
	logger.Info().Msg("clock connection closed")
}

func (wsc *WebSocketController) pumpStates(w *connWriter, states <-chan model.ClientState, logger zerolog.Logger) {
	for state := range states {
		if err := w.send(ws.MessageTypeClockState, state); err != nil {
			logger.Debug().Err(err).Msg("write error")
			continue
		}
		msg, ok, err := ws.CueMessage(state.Sound)
		if err != nil {
			logger.Debug().Err(err).Str("cue", state.Sound).Msg("encode error")
			continue
		}
		if !ok {
			continue
		}
		if err := w.write(msg); err != nil {
			logger.Debug().Err(err).Msg("write error")
		}
	}
	// The clock is gone; closing the conn ends the read loop.
	w.close()
}

// Replies go out through the state pump, so only failures are answered here.
func (wsc *WebSocketController) handleMessage(ctx context.Context, clockID string, msg ws.Message) error {
	ev, err := msg.Event()
	if err != nil {
		return err
	}
	_, err = wsc.clockService.HandleEvent(ctx, clockID, ev)
	return err
}

func (wsc *WebSocketController) sendError(w *connWriter, err error) {
	if sendErr := w.send(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()}); sendErr != nil {
		log.Debug().Err(sendErr).Msg("failed to send error")
	}
}
