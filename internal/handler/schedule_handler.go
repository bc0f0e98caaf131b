package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kadeface/ai-class-scheduling/internal/dto"
	"github.com/kadeface/ai-class-scheduling/internal/models"
	appErrors "github.com/kadeface/ai-class-scheduling/pkg/errors"
	"github.com/kadeface/ai-class-scheduling/pkg/response"
)

const maxTeachingPlans = 256

type scheduleOrchestrator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	Proposal(ctx context.Context, proposalID string) (*dto.GenerateScheduleResponse, error)
	Save(ctx context.Context, req dto.SaveScheduleRequest) (int, error)
	List(ctx context.Context, query dto.ScheduleQuery) ([]models.ScheduleEntry, error)
	Export(ctx context.Context, req dto.ExportScheduleRequest) ([]byte, string, error)
}

// ScheduleHandler exposes the scheduling endpoints.
type ScheduleHandler struct {
	service scheduleOrchestrator
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc scheduleOrchestrator) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Generate runs the engine on the posted plans and returns a proposal.
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	if len(req.Plans) > maxTeachingPlans {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d teaching plans per request", maxTeachingPlans)))
		return
	}
	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if resp.Status == "pending" {
		response.Accepted(c, resp)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Proposal returns a proposal by id, including async generation status.
func (h *ScheduleHandler) Proposal(c *gin.Context) {
	resp, err := h.service.Proposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Save commits a ready proposal to persistent storage.
func (h *ScheduleHandler) Save(c *gin.Context) {
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	count, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"savedEntries": count})
}

// List returns persisted schedule entries for a scope.
func (h *ScheduleHandler) List(c *gin.Context) {
	query := dto.ScheduleQuery{
		AcademicYear: c.Query("academicYear"),
		Semester:     c.Query("semester"),
		ClassID:      c.Query("classId"),
		TeacherID:    c.Query("teacherId"),
	}
	entries, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Export streams one class's weekly timetable as CSV or PDF.
func (h *ScheduleHandler) Export(c *gin.Context) {
	req := dto.ExportScheduleRequest{
		AcademicYear: c.Query("academicYear"),
		Semester:     c.Query("semester"),
		ClassID:      c.Query("classId"),
		Format:       c.DefaultQuery("format", "csv"),
	}
	data, contentType, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("timetable-%s.%s", req.ClassID, req.Format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
