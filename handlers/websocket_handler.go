package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/championship-draw/broadcast"
	"github.com/Dosada05/championship-draw/draw"
	"github.com/Dosada05/championship-draw/middleware"
	"github.com/Dosada05/championship-draw/services"
)

// SessionSource hands out the current session of a tournament's draw while
// its events are held back.
type SessionSource interface {
	WithSession(ctx context.Context, tournamentID string, fn func(draw.Session)) error
}

type WebSocketHandler struct {
	hub      *broadcast.Hub
	sessions SessionSource
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins, or from any
// origin when the list is empty or contains "*".
func NewWebSocketHandler(hub *broadcast.Hub, sessions SessionSource, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{hub: hub, sessions: sessions}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// ServeWs subscribes a viewer to /ws/tournaments/{tournamentID}. A viewer
// joining mid-draw first receives the current session as draw_state.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	logger := middleware.LoggerFromContext(r.Context()).With(slog.String("tournament_id", tournamentID))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	room := broadcast.RoomID(tournamentID)
	client := broadcast.NewClient(h.hub, conn, room)
	if err := h.hub.Join(r.Context(), client); err != nil {
		logger.Warn("websocket join failed", slog.Any("error", err))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	// in the room before the snapshot is taken so no later event is missed
	h.sendState(r, client, tournamentID, logger)
}

// sendState queues the session as a private draw_state frame. It is queued
// while the presenter is held, so frames already queued are covered by it and
// every frame after it is newer.
func (h *WebSocketHandler) sendState(r *http.Request, client *broadcast.Client, tournamentID string, logger *slog.Logger) {
	if h.sessions == nil {
		return
	}
	err := h.sessions.WithSession(r.Context(), tournamentID, func(session draw.Session) {
		if session.Phase == draw.PhaseIdle {
			return
		}
		frame, err := draw.Encode(draw.Event{Type: draw.EventDrawState, Payload: draw.DrawStatePayload{Session: session}}, client.Room)
		if err != nil {
			logger.Error("failed to encode draw state", slog.Any("error", err))
			return
		}
		if !client.Enqueue(frame) {
			logger.Warn("viewer closed before draw state was sent")
		}
	})
	if err != nil && !errors.Is(err, services.ErrDrawNotOpen) {
		logger.Warn("failed to load draw state for viewer", slog.Any("error", err))
	}
}
