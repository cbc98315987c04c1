package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/kudzimusar/morning-pulse-sub002/db"
	"github.com/kudzimusar/morning-pulse-sub002/internal/aggregator"
	"github.com/kudzimusar/morning-pulse-sub002/internal/config"
	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
	"github.com/kudzimusar/morning-pulse-sub002/internal/store"
	"github.com/kudzimusar/morning-pulse-sub002/pkg/llm"
)

// One-shot job: run a single aggregation for the configured country.
// Scheduling is external; this binary is run once per day.
func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	llmClient, err := llm.NewClient(cfg.Provider, cfg.OpenAIKey, cfg.AnthropicKey)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	docs := store.NewRedisStore(redisClient)
	aggService := aggregator.New(llmClient, docs)

	run, err := aggService.Run(context.Background(), model.DefaultCategories, cfg.Country)
	if errors.Is(err, aggregator.ErrAllCategoriesEmpty) {
		log.Fatalf("aggregation failed, nothing persisted: %v", err)
	}
	if err != nil {
		log.Fatalf("error running aggregation: %v", err)
	}

	slog.Info("aggregation complete",
		"date", run.Date,
		"country", run.Country,
		"categories", len(run.Categories),
		"articles", run.TotalArticles(),
	)
}
