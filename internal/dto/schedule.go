package dto

import (
	"github.com/kadeface/ai-class-scheduling/internal/models"
	"github.com/kadeface/ai-class-scheduling/internal/scheduling"
)

// GenerateScheduleRequest carries one scheduling run's fully populated input.
type GenerateScheduleRequest struct {
	AcademicYear string                  `json:"academicYear" validate:"required"`
	Semester     string                  `json:"semester" validate:"required"`
	Plans        []models.TeachingPlan   `json:"plans" validate:"required,min=1"`
	Rules        *models.SchedulingRules `json:"rules,omitempty"`
	Periods      []models.BaseTimeSlot   `json:"periods,omitempty"`
	Rooms        []models.Room           `json:"rooms" validate:"required,min=1"`
	Async        bool                    `json:"async,omitempty"`
}

// GenerateScheduleResponse returns the engine result together with the
// proposal handle used to commit it.
type GenerateScheduleResponse struct {
	ProposalID string             `json:"proposalId"`
	Status     string             `json:"status"`
	Result     *scheduling.Result `json:"result,omitempty"`
}

// SaveScheduleRequest commits a previously generated proposal.
type SaveScheduleRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
}

// ScheduleQuery filters persisted schedule entries.
type ScheduleQuery struct {
	AcademicYear string `form:"academicYear" validate:"required"`
	Semester     string `form:"semester" validate:"required"`
	ClassID      string `form:"classId"`
	TeacherID    string `form:"teacherId"`
}

// ExportScheduleRequest renders one class's weekly timetable.
type ExportScheduleRequest struct {
	AcademicYear string `form:"academicYear" validate:"required"`
	Semester     string `form:"semester" validate:"required"`
	ClassID      string `form:"classId" validate:"required"`
	Format       string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
