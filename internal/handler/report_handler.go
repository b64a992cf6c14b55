package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/service"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
	"github.com/tahasaad555/campus-admin-api/pkg/response"
)

// ReportHandler wires asynchronous report generation to HTTP routes.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs a new ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type enqueueReportRequest struct {
	Type   models.ReportType `json:"type" binding:"required"`
	Params string            `json:"params"`
}

// Enqueue godoc
// @Summary Queue a report for rendering
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body enqueueReportRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Enqueue(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req enqueueReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	job, err := h.reports.Enqueue(c.Request.Context(), req.Type, req.Params, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Get godoc
// @Summary Get report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Report job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	job, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role != models.RoleAdmin && job.RequestedBy != claims.UserID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// ListMine godoc
// @Summary List the caller's recent report jobs
// @Tags Reports
// @Produce json
// @Param limit query int false "Max jobs to return"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit := 20
	if parsed, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && parsed > 0 && parsed <= 100 {
		limit = parsed
	}

	jobs, err := h.reports.ListMine(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, nil)
}

// Download godoc
// @Summary Download a rendered report
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Report job ID"
// @Success 200 {file} binary
// @Failure 409 {object} response.Envelope "Report not finished"
// @Router /reports/{id}/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	job, err := h.reports.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role != models.RoleAdmin && job.RequestedBy != claims.UserID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	filename := fmt.Sprintf("report-%s%s", job.ID, extensionFor(job.ContentType))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, job.ContentType, job.Payload)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "text/csv":
		return ".csv"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
