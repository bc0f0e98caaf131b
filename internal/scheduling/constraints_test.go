package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

func coreVar(id, classID, teacherID string) *Variable {
	return &Variable{ID: id, ClassID: classID, CourseID: "math", TeacherID: teacherID, Subject: "数学", Priority: 9, WeeklyHours: 2}
}

func electiveVar(id, classID, teacherID string) *Variable {
	return &Variable{ID: id, ClassID: classID, CourseID: "music", TeacherID: teacherID, Subject: "音乐", Priority: 5, WeeklyHours: 2}
}

func TestValidateHardConflicts(t *testing.T) {
	rules := models.DefaultSchedulingRules()
	checker := NewChecker(rules)
	slot := models.BaseTimeSlot{DayOfWeek: 1, Period: 1}
	room := testRoom("r1", "101", models.RoomTypeStandard, 50)

	existing := coreVar("a", "c1", "t1")
	occupied := &Assignment{VarID: "a", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: slot}

	tests := []struct {
		name   string
		v      *Variable
		slot   models.BaseTimeSlot
		room   models.Room
		expect RejectReason
	}{
		{
			name:   "same teacher same slot",
			v:      coreVar("b", "c2", "t1"),
			slot:   slot,
			room:   testRoom("r2", "102", models.RoomTypeStandard, 50),
			expect: RejectTeacherConflict,
		},
		{
			name:   "same class same slot",
			v:      coreVar("b", "c1", "t2"),
			slot:   slot,
			room:   testRoom("r2", "102", models.RoomTypeStandard, 50),
			expect: RejectClassConflict,
		},
		{
			name:   "same room same slot",
			v:      coreVar("b", "c2", "t2"),
			slot:   slot,
			room:   room,
			expect: RejectRoomConflict,
		},
		{
			name:   "free slot passes",
			v:      coreVar("b", "c2", "t2"),
			slot:   models.BaseTimeSlot{DayOfWeek: 1, Period: 2},
			room:   testRoom("r2", "102", models.RoomTypeStandard, 50),
			expect: RejectNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := stateWith([]*Variable{existing, tt.v}, occupied)
			assert.Equal(t, tt.expect, checker.Validate(st, tt.v, tt.slot, &tt.room))
		})
	}
}

func TestValidateElectiveOnePerDay(t *testing.T) {
	checker := NewChecker(models.DefaultSchedulingRules())
	room := testRoom("r1", "101", models.RoomTypeStandard, 50)

	first := electiveVar("m1", "c1", "t1")
	second := electiveVar("m2", "c1", "t1")
	st := stateWith([]*Variable{first, second},
		&Assignment{VarID: "m1", ClassID: "c1", CourseID: "music", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 2, Period: 1}})

	sameDay := models.BaseTimeSlot{DayOfWeek: 2, Period: 5}
	assert.Equal(t, RejectElectiveDaily, checker.Validate(st, second, sameDay, &room))

	otherDay := models.BaseTimeSlot{DayOfWeek: 3, Period: 5}
	assert.Equal(t, RejectNone, checker.Validate(st, second, otherDay, &room))
}

func TestValidateCoreDailyCap(t *testing.T) {
	checker := NewChecker(models.DefaultSchedulingRules())
	room := testRoom("r1", "101", models.RoomTypeStandard, 50)

	vars := []*Variable{coreVar("m1", "c1", "t1"), coreVar("m2", "c1", "t1"), coreVar("m3", "c1", "t1")}
	st := stateWith(vars,
		&Assignment{VarID: "m1", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 1, Period: 1}},
		&Assignment{VarID: "m2", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 1, Period: 3}},
	)

	third := models.BaseTimeSlot{DayOfWeek: 1, Period: 5}
	assert.Equal(t, RejectCoreDailyCap, checker.Validate(st, vars[2], third, &room))
}

func TestValidateCoreAntiClustering(t *testing.T) {
	checker := NewChecker(models.DefaultSchedulingRules())
	room := testRoom("r1", "101", models.RoomTypeStandard, 50)

	vars := make([]*Variable, 0, 4)
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		v := coreVar(id, "c1", "t1")
		v.WeeklyHours = 4
		vars = append(vars, v)
	}
	st := stateWith(vars,
		&Assignment{VarID: "m1", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 1, Period: 1}},
		&Assignment{VarID: "m2", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 2, Period: 1}},
		&Assignment{VarID: "m3", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 3, Period: 1}},
	)

	fourthDay := models.BaseTimeSlot{DayOfWeek: 4, Period: 1}
	assert.Equal(t, RejectCoreClustering, checker.Validate(st, vars[3], fourthDay, &room))

	fifthDay := models.BaseTimeSlot{DayOfWeek: 5, Period: 1}
	assert.Equal(t, RejectNone, checker.Validate(st, vars[3], fifthDay, &room))

	relaxed := models.DefaultSchedulingRules()
	disabled := false
	relaxed.AvoidConsecutiveDays = &disabled
	assert.Equal(t, RejectNone, NewChecker(relaxed).Validate(st, vars[3], fourthDay, &room))
}

func TestValidateCoreMinDaysLookahead(t *testing.T) {
	checker := NewChecker(models.DefaultSchedulingRules())
	room := testRoom("r1", "101", models.RoomTypeStandard, 50)

	// Four weekly hours must end up on four distinct days: once three days
	// hold one hour each, the last hour may not stack onto a used day.
	vars := make([]*Variable, 0, 4)
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		v := coreVar(id, "c1", "t1")
		v.WeeklyHours = 4
		vars = append(vars, v)
	}
	st := stateWith(vars,
		&Assignment{VarID: "m1", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 1, Period: 1}},
		&Assignment{VarID: "m2", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 2, Period: 1}},
		&Assignment{VarID: "m3", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 3, Period: 1}},
	)

	stacked := models.BaseTimeSlot{DayOfWeek: 1, Period: 3}
	assert.Equal(t, RejectCoreMinDays, checker.Validate(st, vars[3], stacked, &room))

	freshDay := models.BaseTimeSlot{DayOfWeek: 5, Period: 1}
	assert.Equal(t, RejectNone, checker.Validate(st, vars[3], freshDay, &room))
}

func TestValidateTeacherWorkloadRules(t *testing.T) {
	rules := models.DefaultSchedulingRules()
	rules.Teacher.MaxDailyHours = 2
	rules.Teacher.MaxContinuousHours = 2
	checker := NewChecker(rules)
	room := testRoom("r1", "101", models.RoomTypeStandard, 50)

	vars := []*Variable{coreVar("m1", "c1", "t1"), coreVar("m2", "c2", "t1"), coreVar("m3", "c3", "t1")}
	st := stateWith(vars,
		&Assignment{VarID: "m1", ClassID: "c1", CourseID: "math", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 1, Period: 1}},
		&Assignment{VarID: "m2", ClassID: "c2", CourseID: "math", TeacherID: "t1", RoomID: "r2", Slot: models.BaseTimeSlot{DayOfWeek: 1, Period: 2}},
	)

	third := models.BaseTimeSlot{DayOfWeek: 1, Period: 5}
	assert.Equal(t, RejectTeacherDailyMax, checker.Validate(st, vars[2], third, &room))

	nextDay := models.BaseTimeSlot{DayOfWeek: 2, Period: 1}
	assert.Equal(t, RejectNone, checker.Validate(st, vars[2], nextDay, &room))

	continuous := models.DefaultSchedulingRules()
	continuous.Teacher.MaxContinuousHours = 2
	adjacent := models.BaseTimeSlot{DayOfWeek: 1, Period: 3}
	assert.Equal(t, RejectTeacherNonstop, NewChecker(continuous).Validate(st, vars[2], adjacent, &room))
}

func TestRoomSatisfies(t *testing.T) {
	checker := NewChecker(models.DefaultSchedulingRules())

	lab := testRoom("lab", "实验楼201", models.RoomTypeLab, 60)
	standard := testRoom("std", "101", models.RoomTypeStandard, 30)
	inactive := testRoom("off", "102", models.RoomTypeStandard, 60)
	inactive.IsActive = false

	labVar := &Variable{ClassID: "c1", Subject: "物理实验", StudentCount: 40,
		RoomReq: models.RoomRequirements{Types: []string{models.RoomTypeLab}}}

	assert.True(t, checker.RoomSatisfies(labVar, &lab))
	assert.False(t, checker.RoomSatisfies(labVar, &standard), "wrong room type")
	assert.False(t, checker.RoomSatisfies(labVar, &inactive), "inactive room")

	smallClass := &Variable{ClassID: "c1", StudentCount: 20}
	assert.True(t, checker.RoomSatisfies(smallClass, &standard))

	bigClass := &Variable{ClassID: "c1", StudentCount: 45}
	assert.False(t, checker.RoomSatisfies(bigClass, &standard), "capacity exceeded")

	equipped := &Variable{ClassID: "c1", StudentCount: 20,
		RoomReq: models.RoomRequirements{Equipment: []string{"投影仪"}}}
	assert.True(t, checker.RoomSatisfies(equipped, &standard), "missing equipment is a warning, not a rejection")
}

func TestSoftScoreBounds(t *testing.T) {
	rules := models.DefaultSchedulingRules()
	checker := NewChecker(rules)

	v := coreVar("m1", "c1", "t1")
	st := NewScheduleState([]*Variable{v})

	score := checker.SoftScore(st, v, models.BaseTimeSlot{DayOfWeek: 1, Period: 1})
	require.LessOrEqual(t, score, 100)
	assert.GreaterOrEqual(t, score, 95, "an empty schedule leaves almost nothing to penalise")
}

func TestSoftScorePenalisesAdjacentPeriods(t *testing.T) {
	rules := models.DefaultSchedulingRules()
	checker := NewChecker(rules)

	first := electiveVar("m1", "c1", "t1")
	second := electiveVar("m2", "c1", "t2")
	second.Subject = "美术"
	second.CourseID = "art"
	st := stateWith([]*Variable{first, second},
		&Assignment{VarID: "m1", ClassID: "c1", CourseID: "music", TeacherID: "t1", RoomID: "r1", Slot: models.BaseTimeSlot{DayOfWeek: 1, Period: 1}})

	adjacent := checker.SoftScore(st, second, models.BaseTimeSlot{DayOfWeek: 1, Period: 2})
	separate := checker.SoftScore(st, second, models.BaseTimeSlot{DayOfWeek: 1, Period: 4})
	assert.Less(t, adjacent, separate)
}
