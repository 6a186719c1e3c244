package auth

import (
	"database/sql"
	"fmt"
	"time"

	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/swangtree/poolr8ter/config"
	"github.com/swangtree/poolr8ter/db"
	"github.com/swangtree/poolr8ter/internal/elo"
	"golang.org/x/crypto/bcrypt"
)

var ErrUsernameTaken = errors.New("username already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	db  *sql.DB
	cfg config.Config
}

func NewService(db *sql.DB, cfg config.Config) *Service {
	return &Service{
		db:  db,
		cfg: cfg,
	}
}

func (s *Service) Register(username, password string) (db.Player, error) {
	if username == "" || password == "" {
		return db.Player{}, fmt.Errorf("username and password cannot be empty")
	}
	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return db.Player{}, err
	}
	playerID := uuid.New()

	query := `
		INSERT INTO players (id, username, password, rating, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, rating, created_at
	`
	var player db.Player
	err = s.db.QueryRow(query, playerID, username, string(hashedPassword), float64(elo.Default), time.Now()).
		Scan(&player.ID, &player.Username, &player.Rating, &player.CreatedAt)

	if err != nil {
		// Check for unique constraint violation
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "players_username_key" {
			return db.Player{}, ErrUsernameTaken
		}
		return db.Player{}, err
	}
	return player, nil
}

func (s *Service) Login(username, password string) (string, error) {
	var player db.Player
	err := s.db.QueryRow(`
		SELECT id, username, password, rating, created_at
		FROM players
		WHERE username = $1
	`, username).Scan(&player.ID, &player.Username, &player.Password, &player.Rating, &player.CreatedAt)

	if err != nil {
		return "", ErrInvalidCredentials
	}
	err = bcrypt.CompareHashAndPassword([]byte(player.Password), []byte(password))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"player_id": player.ID,
		"exp":       time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
