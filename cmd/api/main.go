package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kudzimusar/morning-pulse-sub002/db"
	"github.com/kudzimusar/morning-pulse-sub002/internal/aggregator"
	"github.com/kudzimusar/morning-pulse-sub002/internal/answer"
	"github.com/kudzimusar/morning-pulse-sub002/internal/config"
	"github.com/kudzimusar/morning-pulse-sub002/internal/handler"
	"github.com/kudzimusar/morning-pulse-sub002/internal/repository"
	"github.com/kudzimusar/morning-pulse-sub002/internal/store"
	"github.com/kudzimusar/morning-pulse-sub002/pkg/llm"
)

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

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	docs := store.NewRedisStore(redisClient)
	runRepo := repository.NewRunRepository(conn)

	answerService := answer.New(llmClient)
	aggService := aggregator.New(llmClient, docs)

	askHandler := handler.NewAskHandler(answerService, docs, cfg.Country)
	aggHandler := handler.NewAggregateHandler(aggService, docs, cfg.Country)
	archiveHandler := handler.NewArchiveHandler(runRepo, cfg.Country)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.POST("/ask", askHandler.Ask)
	r.POST("/aggregate", aggHandler.Aggregate)
	r.GET("/news/today", aggHandler.TodayNews)
	r.GET("/news/latest", archiveHandler.GetLatest)
	r.GET("/news/:date", archiveHandler.GetByDate)
	r.GET("/health", aggHandler.Health)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
