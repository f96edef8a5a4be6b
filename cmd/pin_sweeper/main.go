package main

import (
	"context"
	"log"
	"time"

	"masterboxer.com/social-feed/config"
	"masterboxer.com/social-feed/database"
	"masterboxer.com/social-feed/logger"
	"masterboxer.com/social-feed/store"
)

// Pins stay around for a day after expiry so failed verifications can still
// be traced in the table.
const retention = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("PinSweeper: config failed:", err)
	}

	logg, err := logger.New(logger.Config{Development: cfg.IsDevelopment(), Level: cfg.LogLevel})
	if err != nil {
		log.Fatal("PinSweeper: logger failed:", err)
	}
	defer func() { _ = logg.Sync() }()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logg.Fatalw("PinSweeper: DB connection failed", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logg.Info("Running verification pin sweep")
	deleted, err := store.New(db).DeleteStalePins(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		logg.Fatalw("PinSweeper: sweep failed", "error", err)
	}
	logg.Infow("Verification pin sweep finished", "deleted", deleted)
}
