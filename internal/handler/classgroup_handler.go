package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/service"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
	"github.com/tahasaad555/campus-admin-api/pkg/response"
)

// ClassGroupHandler wires class groups, their timetables and the conflict
// pre-check to HTTP routes.
type ClassGroupHandler struct {
	groups    *service.ClassGroupService
	conflicts *service.ConflictService
	metrics   *service.MetricsService
}

// NewClassGroupHandler constructs a new ClassGroupHandler.
func NewClassGroupHandler(groups *service.ClassGroupService, conflicts *service.ConflictService, metrics *service.MetricsService) *ClassGroupHandler {
	return &ClassGroupHandler{groups: groups, conflicts: conflicts, metrics: metrics}
}

// List godoc
// @Summary List class groups
// @Tags Class Groups
// @Produce json
// @Param academic_year query string false "Filter by academic year"
// @Param professor_id query string false "Filter by professor"
// @Param search query string false "Search by name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /class-groups [get]
func (h *ClassGroupHandler) List(c *gin.Context) {
	filter := models.ClassGroupFilter{
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		ProfessorID:  strings.TrimSpace(c.Query("professor_id")),
		Search:       strings.TrimSpace(c.Query("search")),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	groups, total, err := h.groups.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, paginationFor(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get class group detail
// @Tags Class Groups
// @Produce json
// @Param id path string true "Class group ID"
// @Success 200 {object} response.Envelope
// @Router /class-groups/{id} [get]
func (h *ClassGroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Create godoc
// @Summary Create class group
// @Tags Class Groups
// @Accept json
// @Produce json
// @Param payload body service.ClassGroupRequest true "Class group payload"
// @Success 201 {object} response.Envelope
// @Router /class-groups [post]
func (h *ClassGroupHandler) Create(c *gin.Context) {
	var req service.ClassGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class group payload"))
		return
	}
	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Update class group
// @Tags Class Groups
// @Accept json
// @Produce json
// @Param id path string true "Class group ID"
// @Param payload body service.ClassGroupRequest true "Class group payload"
// @Success 200 {object} response.Envelope
// @Router /class-groups/{id} [put]
func (h *ClassGroupHandler) Update(c *gin.Context) {
	var req service.ClassGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class group payload"))
		return
	}
	group, err := h.groups.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Delete godoc
// @Summary Delete class group
// @Tags Class Groups
// @Param id path string true "Class group ID"
// @Success 204
// @Router /class-groups/{id} [delete]
func (h *ClassGroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type setStudentsRequest struct {
	StudentIDs []string `json:"student_ids"`
}

// SetStudents godoc
// @Summary Replace class group membership
// @Tags Class Groups
// @Accept json
// @Param id path string true "Class group ID"
// @Param payload body setStudentsRequest true "Student ids"
// @Success 204
// @Router /class-groups/{id}/students [put]
func (h *ClassGroupHandler) SetStudents(c *gin.Context) {
	var req setStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid membership payload"))
		return
	}
	if err := h.groups.SetStudents(c.Request.Context(), c.Param("id"), req.StudentIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetTimetable godoc
// @Summary Get class group timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Class group ID"
// @Success 200 {object} response.Envelope
// @Router /class-groups/{id}/timetable [get]
func (h *ClassGroupHandler) GetTimetable(c *gin.Context) {
	entries, err := h.groups.GetTimetable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

type replaceTimetableRequest struct {
	Entries []models.TimetableEntry `json:"entries"`
}

// ReplaceTimetable godoc
// @Summary Replace class group timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Class group ID"
// @Param payload body replaceTimetableRequest true "Full timetable"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "One conflict line per finding"
// @Router /class-groups/{id}/timetable [put]
func (h *ClassGroupHandler) ReplaceTimetable(c *gin.Context) {
	var req replaceTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	saved, err := h.groups.ReplaceTimetable(c.Request.Context(), c.Param("id"), req.Entries)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// CheckConflicts godoc
// @Summary Pre-check one candidate slot for conflicts
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Class group ID"
// @Param payload body models.ConflictCheckRequest true "Candidate slot"
// @Success 200 {object} response.Envelope
// @Router /class-groups/{id}/check-conflicts [post]
func (h *ClassGroupHandler) CheckConflicts(c *gin.Context) {
	var req models.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict check payload"))
		return
	}

	result, err := h.conflicts.Check(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		verdict := "clear"
		if result.HasConflict {
			verdict = "conflict"
			if len(result.ConflictType) > 0 {
				verdict = strings.ToLower(string(result.ConflictType[0]))
			}
		}
		h.metrics.RecordConflictCheck(verdict)
	}
	response.JSON(c, http.StatusOK, result, nil)
}
