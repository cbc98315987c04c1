package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

// RunArchive is the read side of the Postgres run archive.
type RunArchive interface {
	GetRun(country, date string) (*model.AggregationRun, error)
	GetLatestRun(country string) (*model.AggregationRun, error)
}

// ArchiveHandler serves historical runs the archiver has written to
// Postgres. Today's hot document stays on the Redis store; anything
// older is answered from here.
type ArchiveHandler struct {
	archive RunArchive
	country string
}

func NewArchiveHandler(archive RunArchive, country string) *ArchiveHandler {
	return &ArchiveHandler{archive: archive, country: country}
}

func (h *ArchiveHandler) GetByDate(c *gin.Context) {
	date := c.Param("date")

	if _, err := time.Parse(model.DateKey, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	run, err := h.archive.GetRun(h.country, date)
	if err != nil {
		slog.Error("error reading archived run", "error", err, "date", date)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No news archived for that date"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *ArchiveHandler) GetLatest(c *gin.Context) {
	run, err := h.archive.GetLatestRun(h.country)
	if err != nil {
		slog.Error("error reading latest archived run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No news archived yet"})
		return
	}

	c.JSON(http.StatusOK, run)
}
