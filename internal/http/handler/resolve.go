package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bidlens.app/resolver/common/logger"
	"bidlens.app/resolver/internal/http/dto"
	"bidlens.app/resolver/internal/service"
)

type ResolveHandler struct {
	resolutions service.ResolutionService
}

func NewResolveHandler(resolutions service.ResolutionService) *ResolveHandler {
	return &ResolveHandler{resolutions: resolutions}
}

// Resolve runs the tier pipeline for one identifier. A miss is a 404 with
// the trace, not an error: exhausting every tier is a normal outcome.
func (h *ResolveHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	includeTrace := c.Query("trace") == "true"
	ctx = logger.WithLogFields(ctx, logger.LogFields{Identifier: logger.Truncate(req.Identifier, 64)})

	result, trace, err := h.resolutions.Resolve(ctx, req.Identifier)
	if err != nil {
		slog.ErrorContext(ctx, "resolution aborted", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolution failed"})
		return
	}

	if result == nil {
		c.JSON(http.StatusNotFound, dto.ToNotFoundResponse(req.Identifier, trace, includeTrace))
		return
	}

	c.JSON(http.StatusOK, dto.ToResolveResponse(req.Identifier, result, trace, includeTrace))
}

// ListRecent returns the most recent audit entries.
func (h *ResolveHandler) ListRecent(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	resolutions, err := h.resolutions.Recent(ctx, limit)
	if err != nil {
		if errors.Is(err, service.ErrAuditDisabled) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "resolution audit is not configured"})
			return
		}
		slog.ErrorContext(ctx, "failed to list resolutions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resolutions"})
		return
	}

	out := make([]dto.ResolutionResponse, 0, len(resolutions))
	for _, r := range resolutions {
		out = append(out, dto.ToResolutionResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"resolutions": out})
}
