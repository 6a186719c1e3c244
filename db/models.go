package db

import "time"

type Player struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"` // Hashed password
	Rating    float64   `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Match rows are append-only: they are the audit trail for every
// rating change and are never updated or deleted.
type Match struct {
	ID                  int64     `json:"id" db:"id"`
	Player1ID           string    `json:"player1_id" db:"player1_id"`
	Player2ID           string    `json:"player2_id" db:"player2_id"`
	WinnerID            string    `json:"winner_id" db:"winner_id"`
	Player1RatingBefore float64   `json:"player1_rating_before" db:"player1_rating_before"`
	Player1RatingAfter  float64   `json:"player1_rating_after" db:"player1_rating_after"`
	Player2RatingBefore float64   `json:"player2_rating_before" db:"player2_rating_before"`
	Player2RatingAfter  float64   `json:"player2_rating_after" db:"player2_rating_after"`
	PlayedAt            time.Time `json:"played_at" db:"played_at"`
}
