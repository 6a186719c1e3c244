package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/rs/cors"

	"github.com/swangtree/poolr8ter/config"
	"github.com/swangtree/poolr8ter/db"
	"github.com/swangtree/poolr8ter/internal/auth"
	"github.com/swangtree/poolr8ter/internal/ladder"
	"github.com/swangtree/poolr8ter/internal/leaderboard"
	"github.com/swangtree/poolr8ter/internal/ws"
	rdbPkg "github.com/swangtree/poolr8ter/pkg/redis"
	wsPkg "github.com/swangtree/poolr8ter/pkg/websocket"
)

func main() {
	cfg := config.LoadConfig()
	conn, err := sql.Open("postgres", cfg.DBUrl)

	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal("Failed to apply schema:", err)
	}

	rdb := rdbPkg.NewRedisClient()
	cache := leaderboard.NewCache(rdb)

	// Committed matches flow through here to the live feed.
	matchChan := make(chan db.Match, 16)

	authService := auth.NewService(conn, cfg)
	authHandler := auth.NewAuthHandler(authService)
	ladderService := ladder.NewService(conn, cache, matchChan)
	ladderHandler := ladder.NewHandler(ladderService)
	boardService := leaderboard.NewService(conn, cache)
	boardHandler := leaderboard.NewHandler(boardService)

	hub := wsPkg.NewHub()
	wsHandler := ws.NewHandler(hub)

	go func() {
		for match := range matchChan {
			event := struct {
				Type  string   `json:"type"`
				Match db.Match `json:"match"`
			}{
				Type:  "match_reported",
				Match: match,
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal match event: %v", err)
				continue
			}
			hub.Broadcast(payload)
		}
	}()

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")

	r.HandleFunc("/leaderboard", boardHandler.Leaderboard).Methods("GET")
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/ws", wsHandler.ServeWS)

	protected := r.NewRoute().Subrouter()
	protected.Use(authService.Middleware)
	protected.HandleFunc("/report", ladderHandler.Report).Methods("POST")
	protected.HandleFunc("/matches", ladderHandler.Matches).Methods("GET")
	protected.HandleFunc("/username", ladderHandler.Rename).Methods("POST")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	log.Printf("Server started at :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
