package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubService struct {
	entries  []Entry
	err      error
	gotLimit int
}

func (s *stubService) Leaderboard(_ context.Context, limit int) ([]Entry, error) {
	s.gotLimit = limit
	return s.entries, s.err
}

func TestLeaderboard(t *testing.T) {
	service := &stubService{
		entries: []Entry{
			{Username: "sam", Rating: 1216, WinPercentage: 100},
			{Username: "erin", Rating: 1184, WinPercentage: 0},
		},
	}
	handler := NewHandler(service)

	req := httptest.NewRequest("GET", "/leaderboard", nil)
	rec := httptest.NewRecorder()
	handler.Leaderboard(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, service.gotLimit)

	var entries []Entry
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Equal(t, service.entries, entries)
}

func TestLeaderboardEmptyIsAnArray(t *testing.T) {
	handler := NewHandler(&stubService{entries: []Entry{}})

	req := httptest.NewRequest("GET", "/leaderboard", nil)
	rec := httptest.NewRecorder()
	handler.Leaderboard(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestLeaderboardLimit(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedLimit  int
	}{{
		"no limit",
		"",
		http.StatusOK,
		0,
	}, {
		"top ten",
		"?limit=10",
		http.StatusOK,
		10,
	}, {
		"limit not a number",
		"?limit=ten",
		http.StatusBadRequest,
		0,
	}, {
		"negative limit",
		"?limit=-1",
		http.StatusBadRequest,
		0,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			service := &stubService{entries: []Entry{}}
			handler := NewHandler(service)

			req := httptest.NewRequest("GET", "/leaderboard"+test.query, nil)
			rec := httptest.NewRecorder()
			handler.Leaderboard(rec, req)

			assert.Equal(t, test.expectedStatus, rec.Code)
			if test.expectedStatus == http.StatusOK {
				assert.Equal(t, test.expectedLimit, service.gotLimit)
			}
		})
	}
}

func TestLeaderboardStorageFailure(t *testing.T) {
	handler := NewHandler(&stubService{err: assert.AnError})

	req := httptest.NewRequest("GET", "/leaderboard", nil)
	rec := httptest.NewRecorder()
	handler.Leaderboard(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}
