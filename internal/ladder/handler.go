package ladder

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/swangtree/poolr8ter/db"
	"github.com/swangtree/poolr8ter/internal/auth"
)

type ladderService interface {
	ReportMatch(ctx context.Context, reporterID, opponentID, winnerID string) (db.Match, error)
	MatchHistory(ctx context.Context, playerID string) ([]HistoryEntry, error)
	Rename(ctx context.Context, playerID, newUsername string) error
}

type Handler struct {
	service ladderService
}

func NewHandler(service ladderService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	reporterID, ok := auth.PlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req struct {
		OpponentID string `json:"opponent_id"`
		WinnerID   string `json:"winner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OpponentID == "" || req.WinnerID == "" {
		writeError(w, http.StatusBadRequest, "missing opponent_id or winner_id")
		return
	}

	_, err := h.service.ReportMatch(r.Context(), reporterID, req.OpponentID, req.WinnerID)
	switch {
	case err == nil:
	case errors.Is(err, ErrSelfMatch), errors.Is(err, ErrInvalidWinner):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
		return
	default:
		log.Printf("Failed to report match %s vs %s: %v", reporterID, req.OpponentID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "Match reported successfully",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.PlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	history, err := h.service.MatchHistory(r.Context(), playerID)
	if err != nil {
		log.Printf("Failed to load match history for %s: %v", playerID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.PlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req struct {
		NewUsername string `json:"new_username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewUsername == "" {
		writeError(w, http.StatusBadRequest, "missing new_username")
		return
	}

	err := h.service.Rename(r.Context(), playerID, req.NewUsername)
	switch {
	case err == nil:
	case errors.Is(err, ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	default:
		log.Printf("Failed to rename player %s: %v", playerID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "Username updated successfully",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
