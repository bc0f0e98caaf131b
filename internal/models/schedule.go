package models

import "time"

// ScheduleEntryStatus marks the lifecycle of a persisted entry.
type ScheduleEntryStatus string

const (
	ScheduleEntryStatusActive   ScheduleEntryStatus = "active"
	ScheduleEntryStatusArchived ScheduleEntryStatus = "archived"
)

// ScheduleEntry is the persisted form of one engine assignment.
type ScheduleEntry struct {
	ID           string              `db:"id" json:"id"`
	AcademicYear string              `db:"academic_year" json:"academic_year"`
	Semester     string              `db:"semester" json:"semester"`
	ClassID      string              `db:"class_id" json:"class_id"`
	CourseID     string              `db:"course_id" json:"course_id"`
	CourseName   string              `db:"course_name" json:"course_name"`
	TeacherID    string              `db:"teacher_id" json:"teacher_id"`
	TeacherName  string              `db:"teacher_name" json:"teacher_name"`
	RoomID       string              `db:"room_id" json:"room_id"`
	DayOfWeek    int                 `db:"day_of_week" json:"day_of_week"`
	Period       int                 `db:"period" json:"period"`
	Status       ScheduleEntryStatus `db:"status" json:"status"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter describes query params for listing schedule entries.
type ScheduleFilter struct {
	AcademicYear string
	Semester     string
	ClassID      string
	TeacherID    string
	DayOfWeek    int
}
