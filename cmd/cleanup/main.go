// Command cleanup prunes review events older than the configured retention
// period. Review states are never touched. It is intended to be invoked by
// an external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/reviewengine/internal/adapter/postgres"
	"github.com/heartmarshall/reviewengine/internal/adapter/postgres/reviewevent"
	"github.com/heartmarshall/reviewengine/internal/app"
	"github.com/heartmarshall/reviewengine/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	threshold := time.Now().UTC().AddDate(0, 0, -cfg.Cleanup.ReviewEventRetentionDays)

	deleted, err := reviewevent.New(pool).PruneBefore(ctx, threshold)
	if err != nil {
		logger.Error("prune review events failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("prune review events completed",
		slog.Int64("deleted", deleted),
		slog.Time("threshold", threshold),
	)
}
