package main

import (
	"context"
	"database/sql"
	"errors"
	"log"

	_ "github.com/lib/pq"

	"github.com/swangtree/poolr8ter/config"
	"github.com/swangtree/poolr8ter/db"
	"github.com/swangtree/poolr8ter/internal/auth"
	"github.com/swangtree/poolr8ter/internal/ladder"
)

// Seeds a local database with demo players and a few reported matches.
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

	authService := auth.NewService(conn, cfg)
	ladderService := ladder.NewService(conn, nil, nil)

	usernames := []string{"sam", "erin", "kirby", "june"}
	ids := make(map[string]string, len(usernames))

	for _, username := range usernames {
		player, err := authService.Register(username, "hunter2")
		if err != nil {
			if errors.Is(err, auth.ErrUsernameTaken) {
				log.Printf("Player %s already exists, skipping", username)
				if err := conn.QueryRow("SELECT id FROM players WHERE username = $1", username).Scan(&player.ID); err != nil {
					log.Fatal("Failed to look up existing player:", err)
				}
			} else {
				log.Fatal("Failed to register player:", err)
			}
		}
		ids[username] = player.ID
	}

	reports := []struct {
		reporter string
		opponent string
		winner   string
	}{
		{"sam", "erin", "sam"},
		{"kirby", "june", "june"},
		{"sam", "kirby", "sam"},
		{"erin", "june", "erin"},
	}

	ctx := context.Background()
	for _, report := range reports {
		match, err := ladderService.ReportMatch(ctx, ids[report.reporter], ids[report.opponent], ids[report.winner])
		if err != nil {
			log.Fatalf("Failed to report %s vs %s: %v", report.reporter, report.opponent, err)
		}
		log.Printf("Reported match %d: winner %s, reporter rating %.1f -> %.1f",
			match.ID, report.winner, match.Player1RatingBefore, match.Player1RatingAfter)
	}

	log.Println("Seeding complete")
}
