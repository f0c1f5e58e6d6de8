package ws

import (
	"encoding/json"

	"github.com/benbeisheim/chessclock/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeTap           MessageType = "tap"
	MessageTypePause         MessageType = "pause"
	MessageTypeKeyPress      MessageType = "keypress"
	MessageTypeReset         MessageType = "reset"
	MessageTypeOpenSettings  MessageType = "openSettings"
	MessageTypeCloseSettings MessageType = "closeSettings"
	MessageTypeSettings      MessageType = "settings"
	MessageTypeTouchStart    MessageType = "touchStart"

	// server -> client
	MessageTypeClockState MessageType = "clockState"
	MessageTypeSound      MessageType = "sound"
	MessageTypePreload    MessageType = "preload"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type TapPayload struct {
	Player model.Player `json:"player"`
}

type SoundPayload struct {
	Cue string `json:"cue"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func NewMessage(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// CueMessage builds the outbound message for a snapshot's cue. Only click and
// alarm go out as sound; a preload request gets its own message so clients
// never play it. ok is false when there is nothing to send.
func CueMessage(cue string) (msg Message, ok bool, err error) {
	switch model.Effect(cue) {
	case model.EffectPlayClick, model.EffectPlayAlarm:
		msg, err = NewMessage(MessageTypeSound, SoundPayload{Cue: cue})
		return msg, err == nil, err
	case model.EffectPreloadAudio:
		return Message{Type: MessageTypePreload}, true, nil
	}
	return Message{}, false, nil
}

// Event decodes an inbound message into a clock event.
func (m Message) Event() (model.Event, error) {
	switch m.Type {
	case MessageTypeTap:
		var p TapPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return model.Event{}, err
		}
		return model.TapSide(p.Player), nil
	case MessageTypePause:
		return model.TogglePause(), nil
	case MessageTypeKeyPress:
		return model.KeyPress(), nil
	case MessageTypeReset:
		return model.Reset(), nil
	case MessageTypeOpenSettings:
		return model.OpenSettings(), nil
	case MessageTypeCloseSettings:
		return model.CloseSettings(), nil
	case MessageTypeSettings:
		var s model.Settings
		if err := json.Unmarshal(m.Payload, &s); err != nil {
			return model.Event{}, err
		}
		return model.ChangeSettings(s), nil
	case MessageTypeTouchStart:
		return model.TouchStart(), nil
	}
	return model.Event{}, UnknownMessageError{Type: m.Type}
}

type UnknownMessageError struct {
	Type MessageType
}

func (e UnknownMessageError) Error() string {
	return "unknown message type: " + string(e.Type)
}
