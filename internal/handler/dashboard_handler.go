package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tahasaad555/campus-admin-api/internal/middleware"
	"github.com/tahasaad555/campus-admin-api/internal/models"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
	"github.com/tahasaad555/campus-admin-api/pkg/response"
)

type dashboardSummarizer interface {
	Summary(ctx context.Context) (*models.DashboardSummary, bool, error)
}

// DashboardHandler serves the admin landing page aggregates.
type DashboardHandler struct {
	service dashboardSummarizer
}

// NewDashboardHandler constructs a new DashboardHandler.
func NewDashboardHandler(service dashboardSummarizer) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard aggregates
// @Description Room, class group, timetable and reservation counts plus the busiest rooms.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}
