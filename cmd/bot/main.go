package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/borovskvet/intake-bot/internal/dialog"
	"github.com/borovskvet/intake-bot/internal/logging"
	"github.com/borovskvet/intake-bot/internal/record"
	"github.com/borovskvet/intake-bot/internal/search"
	"github.com/borovskvet/intake-bot/internal/session"
	"github.com/borovskvet/intake-bot/internal/store"
	"github.com/borovskvet/intake-bot/internal/telegram"
)

// #region main
func main() {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	secret := os.Getenv("WEBHOOK_SECRET")
	dbPath := envOr("INTAKE_DB", "intake.db")
	port := envOr("PORT", "8080")

	// Open record store
	recordStore, err := store.NewRecordStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer recordStore.Close()

	audit, err := logging.NewAuditLog(recordStore.DB())
	if err != nil {
		log.Fatalf("failed to init audit log: %v", err)
	}

	repo := sessionRepository()

	controller := dialog.NewController(
		repo,
		record.NewFinalizer(recordStore),
		search.NewEngine(recordStore),
		audit,
	)

	client := telegram.NewClient(token)
	webhook := telegram.NewWebhook(controller, client, secret)

	mux := http.NewServeMux()
	mux.Handle("/webhook", webhook)
	mux.Handle("/", telegram.HealthHandler())

	log.Printf("[BOT] listening on :%s | db=%s", port, dbPath)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// #endregion main

// #region wiring

// sessionRepository picks the session backend: Redis when REDIS_ADDR is set,
// an in-process map otherwise. SESSION_TTL_MIN bounds abandoned surveys.
func sessionRepository() session.Repository {
	ttl := time.Duration(envInt("SESSION_TTL_MIN", 0)) * time.Minute

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return session.NewMemoryRepository(ttl)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	log.Printf("[BOT] sessions in redis at %s", addr)
	return session.NewRedisRepository(rdb, ttl)
}

// #endregion wiring

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}

// #endregion helpers
