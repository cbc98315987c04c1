package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kudzimusar/morning-pulse-sub002/db"
	"github.com/kudzimusar/morning-pulse-sub002/internal/config"
	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
	"github.com/kudzimusar/morning-pulse-sub002/internal/repository"
	"github.com/kudzimusar/morning-pulse-sub002/internal/store"
)

// Long-running worker: subscribes to document-store change
// notifications and archives each persisted run into Postgres.
func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	redisClient, err := db.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	docs := store.NewRedisStore(redisClient)
	runRepo := repository.NewRunRepository(conn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	unsubscribe, err := docs.Subscribe(ctx,
		func(ref model.RunRef) {
			run, err := docs.GetRun(ctx, ref.Country, ref.Date)
			if err != nil {
				slog.Error("error loading run for archive", "error", err, "country", ref.Country, "date", ref.Date)
				return
			}

			if err := runRepo.SaveRun(run); err != nil {
				slog.Error("error archiving run", "error", err, "country", ref.Country, "date", ref.Date)
				return
			}

			slog.Info("run archived", "country", ref.Country, "date", ref.Date, "articles", run.TotalArticles())
		},
		func(err error) {
			slog.Error("subscription error", "error", err)
		},
	)
	if err != nil {
		log.Fatalf("error subscribing to run updates: %v", err)
	}
	defer unsubscribe()

	slog.Info("archiver started", "country", cfg.Country)
	<-ctx.Done()
	slog.Info("archiver stopping")
}
