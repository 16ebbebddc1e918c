package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bidlens.app/resolver/internal/history"
	"bidlens.app/resolver/internal/http/dto"
	"bidlens.app/resolver/internal/model"
)

// StatsProvider computes award statistics for a NAICS code.
type StatsProvider interface {
	Stats(ctx context.Context, naics string, window model.SearchWindow) (*history.Stats, error)
}

type HistoryHandler struct {
	stats StatsProvider
	now   func() time.Time
}

func NewHistoryHandler(stats StatsProvider) *HistoryHandler {
	return &HistoryHandler{stats: stats, now: time.Now}
}

const (
	defaultHistoryMonths = 12
	maxHistoryMonths     = 60
)

// AwardStats serves GET /v1/pricing/history?naics=NNNNNN&months=N.
func (h *HistoryHandler) AwardStats(c *gin.Context) {
	ctx := c.Request.Context()

	naics := c.Query("naics")
	if naics == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "naics query parameter is required"})
		return
	}

	months := defaultHistoryMonths
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryMonths {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 60"})
			return
		}
		months = parsed
	}

	window := model.Window(h.now(), time.Duration(months)*30*24*time.Hour, 0)
	stats, err := h.stats.Stats(ctx, naics, window)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute award stats", "naics", naics, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "no pricing source available"})
		return
	}

	c.JSON(http.StatusOK, dto.ToHistoryStatsResponse(stats, window.FromParam(), window.ToParam()))
}
