package elo

import (
	"errors"
	"math"
)

const (
	// K is the maximum rating swing for a single match.
	K = 32
	// Default is the rating assigned to players who have never played.
	Default = 1200
)

type Outcome int

const (
	AWins Outcome = iota
	BWins
)

var ErrInvalidRating = errors.New("rating must be a finite number")

// ExpectedScore returns the probability of the first player beating the second.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// Update computes both players' new ratings after a decided match.
// Draws are not supported: every match has exactly one winner.
func Update(ratingA, ratingB float64, outcome Outcome) (float64, float64, error) {
	if !isFinite(ratingA) || !isFinite(ratingB) {
		return 0, 0, ErrInvalidRating
	}

	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := 1 - expectedA

	scoreA := 0.0
	if outcome == AWins {
		scoreA = 1
	}
	scoreB := 1 - scoreA

	// The two deltas cancel exactly, so the rating pool is conserved.
	newA := ratingA + K*(scoreA-expectedA)
	newB := ratingB + K*(scoreB-expectedB)
	return newA, newB, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
