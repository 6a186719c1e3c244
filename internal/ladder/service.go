package ladder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/swangtree/poolr8ter/db"
	"github.com/swangtree/poolr8ter/internal/elo"
)

// How many times a report is retried when Postgres aborts the
// transaction with a serialization or deadlock failure.
const reportRetries = 3

// boardCache is the slice of the leaderboard cache the ledger needs.
type boardCache interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	db       *sql.DB
	cache    boardCache
	reported chan<- db.Match
}

// NewService wires the ledger to the database. The cache (if non-nil)
// is invalidated on the commit path so reads never serve a board older
// than the last commit. Committed matches are also pushed to reported
// (if non-nil) for live consumers; that send is best-effort.
func NewService(conn *sql.DB, cache boardCache, reported chan<- db.Match) *Service {
	return &Service{
		db:       conn,
		cache:    cache,
		reported: reported,
	}
}

// ValidateReport checks the participant set before any storage call.
func ValidateReport(reporterID, opponentID, winnerID string) error {
	if reporterID == opponentID {
		return ErrSelfMatch
	}
	if winnerID != reporterID && winnerID != opponentID {
		return ErrInvalidWinner
	}
	return nil
}

// ReportMatch applies the rating update for a finished match and records it.
// The reporter's identity comes from the verified token, never the body.
// Duplicate reports are applied again on purpose: there is no idempotency key.
func (s *Service) ReportMatch(ctx context.Context, reporterID, opponentID, winnerID string) (db.Match, error) {
	if err := ValidateReport(reporterID, opponentID, winnerID); err != nil {
		return db.Match{}, err
	}
	// A malformed id can never name a player; reject it before Postgres
	// chokes on the uuid cast.
	if uuid.Validate(reporterID) != nil || uuid.Validate(opponentID) != nil {
		return db.Match{}, ErrPlayerNotFound
	}

	var match db.Match
	var err error
	for attempt := 0; attempt < reportRetries; attempt++ {
		match, err = s.reportOnce(ctx, reporterID, opponentID, winnerID)
		if err == nil || !isRetryable(err) {
			break
		}
		if attempt < reportRetries-1 {
			log.Printf("Report %s vs %s aborted, retrying: %v", reporterID, opponentID, err)
		}
	}
	if err != nil {
		if isRetryable(err) {
			return db.Match{}, ErrConflict
		}
		return db.Match{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.reported != nil {
		select {
		case s.reported <- match:
		default:
			log.Printf("Match feed is full, dropping event for match %d", match.ID)
		}
	}
	return match, nil
}

func (s *Service) reportOnce(ctx context.Context, reporterID, opponentID, winnerID string) (db.Match, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return db.Match{}, fmt.Errorf("failed to begin report transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock both player rows in id order so overlapping reports
	// serialize instead of deadlocking.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, rating
		FROM players
		WHERE id = $1 OR id = $2
		ORDER BY id
		FOR UPDATE
	`, reporterID, opponentID)
	if err != nil {
		return db.Match{}, fmt.Errorf("failed to lock players %s, %s: %w", reporterID, opponentID, err)
	}

	ratings := make(map[string]float64, 2)
	for rows.Next() {
		var id string
		var rating float64
		if err := rows.Scan(&id, &rating); err != nil {
			rows.Close()
			return db.Match{}, fmt.Errorf("failed to scan player row: %w", err)
		}
		ratings[id] = rating
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return db.Match{}, fmt.Errorf("failed to read player rows: %w", err)
	}

	if len(ratings) != 2 {
		return db.Match{}, ErrPlayerNotFound
	}

	reporterBefore := ratings[reporterID]
	opponentBefore := ratings[opponentID]

	outcome := elo.BWins
	if winnerID == reporterID {
		outcome = elo.AWins
	}
	reporterAfter, opponentAfter, err := elo.Update(reporterBefore, opponentBefore, outcome)
	if err != nil {
		return db.Match{}, err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE players SET rating = $1 WHERE id = $2", reporterAfter, reporterID); err != nil {
		return db.Match{}, fmt.Errorf("failed to update rating for %s: %w", reporterID, err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE players SET rating = $1 WHERE id = $2", opponentAfter, opponentID); err != nil {
		return db.Match{}, fmt.Errorf("failed to update rating for %s: %w", opponentID, err)
	}

	match := db.Match{
		Player1ID:           reporterID,
		Player2ID:           opponentID,
		WinnerID:            winnerID,
		Player1RatingBefore: reporterBefore,
		Player1RatingAfter:  reporterAfter,
		Player2RatingBefore: opponentBefore,
		Player2RatingAfter:  opponentAfter,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO matches (
			player1_id, player2_id, winner_id,
			player1_rating_before, player1_rating_after,
			player2_rating_before, player2_rating_after
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, played_at
	`, match.Player1ID, match.Player2ID, match.WinnerID,
		match.Player1RatingBefore, match.Player1RatingAfter,
		match.Player2RatingBefore, match.Player2RatingAfter,
	).Scan(&match.ID, &match.PlayedAt)
	if err != nil {
		return db.Match{}, fmt.Errorf("failed to insert match %s vs %s: %w", reporterID, opponentID, err)
	}

	if err := tx.Commit(); err != nil {
		return db.Match{}, fmt.Errorf("failed to commit report: %w", err)
	}
	return match, nil
}

// isRetryable reports whether Postgres aborted the transaction for a
// reason that a fresh attempt against the new snapshot can resolve.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure, deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

type HistoryEntry struct {
	ID               int64     `json:"id"`
	OpponentUsername string    `json:"opponent_username"`
	IsVictory        bool      `json:"is_victory"`
	EloChange        float64   `json:"elo_change"`
	PlayedAt         time.Time `json:"played_at"`
}

// MatchHistory returns the player's matches, most recent first, from
// the player's own point of view.
func (s *Service) MatchHistory(ctx context.Context, playerID string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.player1_id, m.player2_id, m.winner_id,
		       m.player1_rating_before, m.player1_rating_after,
		       m.player2_rating_before, m.player2_rating_after,
		       m.played_at, u.username
		FROM matches m
		JOIN players u ON u.id = CASE WHEN m.player1_id = $1 THEN m.player2_id ELSE m.player1_id END
		WHERE m.player1_id = $1 OR m.player2_id = $1
		ORDER BY m.played_at DESC, m.id DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history for %s: %w", playerID, err)
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var m db.Match
		var opponent string
		err := rows.Scan(&m.ID, &m.Player1ID, &m.Player2ID, &m.WinnerID,
			&m.Player1RatingBefore, &m.Player1RatingAfter,
			&m.Player2RatingBefore, &m.Player2RatingAfter,
			&m.PlayedAt, &opponent)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		history = append(history, annotate(playerID, m, opponent))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read match rows: %w", err)
	}
	return history, nil
}

// annotate folds a raw match row into one player's point of view.
func annotate(playerID string, m db.Match, opponentUsername string) HistoryEntry {
	before, after := m.Player1RatingBefore, m.Player1RatingAfter
	if m.Player2ID == playerID {
		before, after = m.Player2RatingBefore, m.Player2RatingAfter
	}
	return HistoryEntry{
		ID:               m.ID,
		OpponentUsername: opponentUsername,
		IsVictory:        m.WinnerID == playerID,
		EloChange:        after - before,
		PlayedAt:         m.PlayedAt,
	}
}

// Rename changes the player's username. Usernames are case sensitive;
// uniqueness is enforced by the players_username_key constraint.
func (s *Service) Rename(ctx context.Context, playerID, newUsername string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE players SET username = $1 WHERE id = $2", newUsername, playerID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "players_username_key" {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to rename player %s: %w", playerID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rename result for %s: %w", playerID, err)
	}
	if affected == 0 {
		return ErrPlayerNotFound
	}
	return nil
}
