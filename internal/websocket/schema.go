package websocket

import "github.com/prepbox/examsim-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the single client payload shape on the timer stream.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventTick  Event = "tick"
	EventPhase Event = "phase"
	EventPong  Event = "pong"
)

// TickResponse is pushed once per second while the countdown is armed.
type TickResponse struct {
	Event        Event       `json:"event"`
	Phase        model.Phase `json:"phase"`
	RemainingSec int         `json:"remaining_seconds"`
}

// PhaseResponse is pushed on every phase transition.
type PhaseResponse struct {
	Event Event       `json:"event"`
	Phase model.Phase `json:"phase"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
