package feed

import (
	"encoding/json"

	"github.com/darkermage/quiz-buzzer-admin/internal/registry"
)

// MessageType identifies a quiz server WebSocket message.
type MessageType string

// Message types exchanged with the quiz server.
const (
	MessageTypeRoomState     MessageType = "room_state"
	MessageTypeButtonPressed MessageType = "hardware_button_pressed"
	MessageTypeSetGamePhase  MessageType = "set_game_phase"
	MessageTypeError         MessageType = "error"
)

// Game phases as the quiz server defines them.
const (
	PhaseLobby    = "lobby"
	PhaseStarted  = "started"
	PhaseActive   = "active"
	PhaseFinished = "finished"
)

// ValidPhase reports whether phase is one the server accepts.
func ValidPhase(phase string) bool {
	switch phase {
	case PhaseLobby, PhaseStarted, PhaseActive, PhaseFinished:
		return true
	}
	return false
}

// envelope is the outer frame of every feed message.
type envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// roomStatePayload is the server's room snapshot: the room's teams keyed by
// team ID and the current game phase.
type roomStatePayload struct {
	Code  string                   `json:"code"`
	Phase string                   `json:"phase"`
	Teams map[string]registry.Team `json:"teams"`
}

// pressPayload mirrors the press notification the admin UI displays.
type pressPayload struct {
	TeamID    string `json:"teamId"`
	TeamName  string `json:"teamName"`
	TeamColor string `json:"teamColor"`
}

// phasePayload is the admin's phase transition command.
type phasePayload struct {
	Phase string `json:"phase"`
}

// errorPayload carries a server-side error message.
type errorPayload struct {
	Message string `json:"message"`
}
