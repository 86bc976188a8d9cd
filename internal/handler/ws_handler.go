package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/prepbox/examsim-backend/internal/session"
	ws "github.com/prepbox/examsim-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams countdown ticks and phase transitions so the view
// layer can render the timer without polling.
type WSHandler struct {
	controller *session.Controller
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(controller *session.Controller, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		controller: controller,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// TimerStream godoc
// WS /ws/v1/session/timer
// Upgrades to WebSocket and pushes tick and phase events until the
// client disconnects.
func (h *WSHandler) TimerStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := h.controller.Subscribe()
	defer cancel()

	h.log.Info().Msg("Timer stream connected")

	// Reader: consumes pings and detects disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warn().Err(err).Msg("Unexpected close")
				} else {
					h.log.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			var payload interface{}
			switch ev.Type {
			case session.EventTick:
				payload = ws.TickResponse{
					Event:        ws.EventTick,
					Phase:        ev.Phase,
					RemainingSec: ev.RemainingSec,
				}
			case session.EventPhase:
				payload = ws.PhaseResponse{
					Event: ws.EventPhase,
					Phase: ev.Phase,
				}
			default:
				continue
			}
			if err := ws.WriteTyped(conn, payload); err != nil {
				h.log.Debug().Err(err).Msg("Write failed, dropping stream")
				return
			}
		}
	}
}
