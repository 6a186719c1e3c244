package leaderboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

type leaderboardService interface {
	Leaderboard(ctx context.Context, limit int) ([]Entry, error)
}

type Handler struct {
	service leaderboardService
}

func NewHandler(service leaderboardService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to load leaderboard: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
