package redis

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis using REDIS_ADDR/REDIS_PASSWORD.
// Returns nil when Redis is unreachable; callers treat that as
// "no cache" rather than a fatal condition.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379" // fallback for local dev
	}
	password := os.Getenv("REDIS_PASSWORD")

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("Failed to connect to Redis at %s, running without cache: %v", addr, err)
		return nil
	}

	log.Println("Connected to Redis")
	return rdb
}
