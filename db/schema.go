package db

import (
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		rating DOUBLE PRECISION NOT NULL DEFAULT 1200,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT players_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id BIGSERIAL PRIMARY KEY,
		player1_id UUID NOT NULL REFERENCES players(id),
		player2_id UUID NOT NULL REFERENCES players(id),
		winner_id UUID NOT NULL,
		player1_rating_before DOUBLE PRECISION NOT NULL,
		player1_rating_after DOUBLE PRECISION NOT NULL,
		player2_rating_before DOUBLE PRECISION NOT NULL,
		player2_rating_after DOUBLE PRECISION NOT NULL,
		played_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT matches_winner_is_participant CHECK (winner_id IN (player1_id, player2_id)),
		CONSTRAINT matches_distinct_players CHECK (player1_id <> player2_id)
	)`,
	`CREATE INDEX IF NOT EXISTS matches_player1_idx ON matches (player1_id)`,
	`CREATE INDEX IF NOT EXISTS matches_player2_idx ON matches (player2_id)`,
	`CREATE INDEX IF NOT EXISTS players_rating_idx ON players (rating DESC)`,
}

// Migrate creates the tables and indexes the service needs. Every
// statement is IF NOT EXISTS so it is safe to run on each start.
func Migrate(conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
