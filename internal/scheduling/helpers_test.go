package scheduling

import (
	"github.com/kadeface/ai-class-scheduling/internal/models"
)

func testClass(id, name string, students int, homeroomID string) *models.Class {
	c := &models.Class{ID: id, Name: name, Grade: 1, StudentCount: students}
	if homeroomID != "" {
		c.HomeroomID = &homeroomID
	}
	return c
}

func testTeacher(id, name string, subjects ...string) *models.Teacher {
	return &models.Teacher{ID: id, Name: name, Subjects: subjects}
}

func testCourse(id, subject string) *models.Course {
	return &models.Course{ID: id, Name: subject, Subject: subject}
}

func testRoom(id, name, roomType string, capacity int) models.Room {
	return models.Room{ID: id, Name: name, Type: roomType, Capacity: capacity, IsActive: true}
}

func testPlan(class *models.Class, entries ...models.CourseAssignment) models.TeachingPlan {
	return models.TeachingPlan{Class: class, CourseAssignments: entries}
}

func entry(course *models.Course, teacher *models.Teacher, hours int) models.CourseAssignment {
	return models.CourseAssignment{Course: course, Teacher: teacher, WeeklyHours: hours}
}

func weekPeriods(days, periods int) []models.BaseTimeSlot {
	var slots []models.BaseTimeSlot
	for day := 1; day <= days; day++ {
		for period := 1; period <= periods; period++ {
			slots = append(slots, models.BaseTimeSlot{DayOfWeek: day, Period: period})
		}
	}
	return slots
}

// stateWith commits pre-existing assignments so constraint tests can probe a
// known partial schedule.
func stateWith(vars []*Variable, assignments ...*Assignment) *ScheduleState {
	st := NewScheduleState(vars)
	for _, a := range assignments {
		st.Commit(a)
	}
	return st
}
