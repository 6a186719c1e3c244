package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
)

type Service struct {
	db    *sql.DB
	cache *Cache
}

func NewService(db *sql.DB, cache *Cache) *Service {
	return &Service{
		db:    db,
		cache: cache,
	}
}

type Entry struct {
	Username      string  `json:"username"`
	Rating        float64 `json:"rating"`
	WinPercentage float64 `json:"win_percentage"`
}

// Win percentage is derived from the match ledger on every read, so it
// cannot drift from the recorded matches. Rating ties break on player
// id to keep the order stable across calls.
const leaderboardQuery = `
	SELECT p.username, p.rating,
	       COUNT(m.id) FILTER (WHERE m.winner_id = p.id) AS wins,
	       COUNT(m.id) AS played
	FROM players p
	LEFT JOIN matches m ON m.player1_id = p.id OR m.player2_id = p.id
	GROUP BY p.id, p.username, p.rating
	ORDER BY p.rating DESC, p.id ASC
`

// Leaderboard returns all players ranked by rating. A positive limit
// caps the result to the top entries.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if entries, ok := s.cache.Get(ctx, limit); ok {
		return entries, nil
	}

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, leaderboardQuery+" LIMIT $1", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, leaderboardQuery)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var wins, played int
		if err := rows.Scan(&entry.Username, &entry.Rating, &wins, &played); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		if played > 0 {
			entry.WinPercentage = float64(wins) / float64(played) * 100
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}

	s.cache.Set(ctx, limit, entries)
	return entries, nil
}
