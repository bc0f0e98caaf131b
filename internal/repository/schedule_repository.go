package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// ScheduleRepository provides persistence for schedule entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Replace atomically rewrites the schedule for the given scope: existing
// entries for the (year, semester, classes) tuple are removed and the new
// entries inserted inside one transaction.
func (r *ScheduleRepository) Replace(ctx context.Context, academicYear, semester string, classIDs []string, entries []models.ScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if len(classIDs) > 0 {
		query, args, buildErr := sqlx.In(
			"DELETE FROM schedule_entries WHERE academic_year = ? AND semester = ? AND class_id IN (?)",
			academicYear, semester, classIDs,
		)
		if buildErr != nil {
			err = fmt.Errorf("build delete query: %w", buildErr)
			return err
		}
		query = tx.Rebind(query)
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			err = fmt.Errorf("delete existing schedule entries: %w", err)
			return err
		}
	}

	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
	}

	if len(entries) > 0 {
		if _, err = tx.NamedExecContext(ctx, `
			INSERT INTO schedule_entries (
				id, academic_year, semester, class_id, course_id, course_name,
				teacher_id, teacher_name, room_id, day_of_week, period, status,
				created_at, updated_at
			) VALUES (
				:id, :academic_year, :semester, :class_id, :course_id, :course_name,
				:teacher_id, :teacher_name, :room_id, :day_of_week, :period, :status,
				:created_at, :updated_at
			)`, entries); err != nil {
			err = fmt.Errorf("insert schedule entries: %w", err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule transaction: %w", err)
	}
	return nil
}

// List returns schedule entries matching the filter, ordered for rendering.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, error) {
	query := `SELECT id, academic_year, semester, class_id, course_id, course_name,
		teacher_id, teacher_name, room_id, day_of_week, period, status, created_at, updated_at
		FROM schedule_entries WHERE status = 'active'`
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DayOfWeek > 0 {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY class_id, day_of_week, period"

	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}
