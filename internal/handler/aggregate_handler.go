package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kudzimusar/morning-pulse-sub002/internal/aggregator"
	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
	"github.com/kudzimusar/morning-pulse-sub002/internal/store"
)

// Aggregator triggers one aggregation run.
type Aggregator interface {
	Run(ctx context.Context, categories []string, country string) (*model.AggregationRun, error)
}

type AggregateHandler struct {
	agg     Aggregator
	docs    RunReader
	country string
}

func NewAggregateHandler(agg Aggregator, docs RunReader, country string) *AggregateHandler {
	return &AggregateHandler{agg: agg, docs: docs, country: country}
}

// Aggregate runs an aggregation on demand. A run where every category
// came back empty is a failure; partial success is success.
func (h *AggregateHandler) Aggregate(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	country := req.Country
	if country == "" {
		country = h.country
	}

	run, err := h.agg.Run(c.Request.Context(), req.Categories, country)
	if errors.Is(err, aggregator.ErrAllCategoriesEmpty) {
		c.JSON(http.StatusBadGateway, AggregateResponse{
			Success: false,
			Message: "Aggregation failed: no category returned any articles",
			Error:   err.Error(),
		})
		return
	}
	if err != nil {
		slog.Error("error running aggregation", "error", err)
		c.JSON(http.StatusInternalServerError, AggregateResponse{
			Success: false,
			Message: "Aggregation failed",
			Error:   err.Error(),
		})
		return
	}

	categories := make([]string, 0, len(run.Categories))
	for name := range run.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	c.JSON(http.StatusOK, AggregateResponse{
		Success:       true,
		Date:          run.Date,
		Categories:    categories,
		TotalArticles: run.TotalArticles(),
		Message:       "Aggregation completed",
	})
}

// TodayNews returns today's stored run in canonical shape.
func (h *AggregateHandler) TodayNews(c *gin.Context) {
	today := time.Now().UTC().Format(model.DateKey)

	run, err := h.docs.GetRun(c.Request.Context(), h.country, today)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "No news available for today"})
		return
	}
	if err != nil {
		slog.Error("error reading today's run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// Health reports document-store reachability. An absent run for today
// is still healthy.
func (h *AggregateHandler) Health(c *gin.Context) {
	today := time.Now().UTC().Format(model.DateKey)

	_, err := h.docs.GetRun(c.Request.Context(), h.country, today)
	if err != nil && err != store.ErrNotFound {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"store":  "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"store":  "connected",
	})
}
