package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/championship-draw/draw"
	"github.com/Dosada05/championship-draw/middleware"
	"github.com/Dosada05/championship-draw/services"
)

const defaultQRSize = 256

// ViewerQRCoder renders the spectator join link of a draw.
type ViewerQRCoder interface {
	ViewerURL(tournamentID string) string
	ViewerQRCode(tournamentID string, size int) ([]byte, error)
}

type DrawHandler struct {
	drawService services.DrawService
	qr          ViewerQRCoder
}

func NewDrawHandler(drawService services.DrawService, qr ViewerQRCoder) *DrawHandler {
	return &DrawHandler{drawService: drawService, qr: qr}
}

// Open loads the approved pool into a fresh idle session.
func (h *DrawHandler) Open(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.drawService.Open(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	middleware.LoggerFromContext(r.Context()).Info("draw session opened",
		slog.String("tournament_id", tournamentID), slog.Int("teams", session.TotalTeams))

	resp := jsonResponse{"session": session}
	if h.qr != nil {
		resp["viewer_url"] = h.qr.ViewerURL(tournamentID)
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DrawHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.drawService.Start)
}

func (h *DrawHandler) Redraw(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.drawService.Redraw)
}

func (h *DrawHandler) Save(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.Save(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Close resets the draw and tells every viewer it has ended.
func (h *DrawHandler) Close(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.drawService.Close(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DrawHandler) Session(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.drawService.Session(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DrawHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.drawService.Bracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// QRCode serves a PNG linking spectators to the live view. ?size sets the
// edge length in pixels.
func (h *DrawHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if h.qr == nil {
		notFoundResponse(w, r, "")
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil {
			badRequestResponse(w, r, errors.New("size must be an integer"))
			return
		}
	}

	png, err := h.qr.ViewerQRCode(tournamentID, size)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		middleware.LoggerFromContext(r.Context()).Warn("failed to write qr code", slog.Any("error", err))
	}
}

func (h *DrawHandler) command(w http.ResponseWriter, r *http.Request, run func(context.Context, string) (draw.Session, error)) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := run(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
