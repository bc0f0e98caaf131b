package scheduling

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// assertScheduleInvariants checks the properties every final schedule must
// hold regardless of input.
func assertScheduleInvariants(t *testing.T, result *Result, rules models.SchedulingRules, totalVars int) {
	t.Helper()

	teacherSlots := make(map[string]bool)
	classSlots := make(map[string]bool)
	roomSlots := make(map[string]bool)
	subjectByDay := make(map[string]int)

	for _, a := range result.Assignments {
		tk := a.TeacherID + "@" + a.Slot.Key()
		ck := a.ClassID + "@" + a.Slot.Key()
		rk := a.RoomID + "@" + a.Slot.Key()
		assert.False(t, teacherSlots[tk], "teacher double-booked at %s", tk)
		assert.False(t, classSlots[ck], "class double-booked at %s", ck)
		if a.RoomID != "" {
			assert.False(t, roomSlots[rk], "room double-booked at %s", rk)
		}
		teacherSlots[tk] = true
		classSlots[ck] = true
		roomSlots[rk] = true
	}

	for _, a := range result.Assignments {
		v := varSubject(result, a.VarID)
		key := a.ClassID + "|" + v + "|" + strconv.Itoa(a.Slot.DayOfWeek)
		subjectByDay[key]++
		if rules.IsCoreSubject(v) {
			assert.LessOrEqual(t, subjectByDay[key], rules.MaxDailyCoreOccurrences,
				"core subject %s exceeds daily cap", v)
		} else {
			assert.LessOrEqual(t, subjectByDay[key], 1, "elective %s repeated on one day", v)
		}
	}

	assert.Equal(t, totalVars, result.AssignedVariables+result.UnassignedVariables)
}

// varSubject finds the assignment of the variable and maps its course id to
// the subject; in these tests the course id identifies the subject.
func varSubject(result *Result, varID string) string {
	for _, a := range result.Assignments {
		if a.VarID == varID {
			switch a.CourseID {
			case "chinese":
				return "语文"
			case "math":
				return "数学"
			case "english":
				return "英语"
			case "music":
				return "音乐"
			case "pe":
				return "体育"
			case "physlab":
				return "物理实验"
			}
			return a.CourseID
		}
	}
	return ""
}


func TestScheduleSingleCoreCourse(t *testing.T) {
	engine := NewEngine(nil)
	class := testClass("c1", "一年级1班", 40, "r1")

	input := Input{
		Plans: []models.TeachingPlan{
			testPlan(class, entry(testCourse("chinese", "语文"), testTeacher("t1", "王老师", "语文"), 3)),
		},
		Rooms:   []models.Room{testRoom("r1", "一年级1班教室", models.RoomTypeStandard, 50)},
		Periods: weekPeriods(5, 8),
	}

	result := engine.Schedule(input)

	require.True(t, result.Success)
	require.Equal(t, 3, result.AssignedVariables)
	assert.Zero(t, result.UnassignedVariables)
	assert.Zero(t, result.HardConstraintViolations)

	days := make(map[int]bool)
	for _, a := range result.Assignments {
		days[a.Slot.DayOfWeek] = true
		assert.LessOrEqual(t, a.Slot.Period, 4, "core hours belong in the morning")
		assert.Equal(t, "r1", a.RoomID)
	}
	assert.Len(t, days, 3, "three hours across three distinct days")
	assert.GreaterOrEqual(t, result.TotalScore, 75)

	assertScheduleInvariants(t, result, models.DefaultSchedulingRules(), 3)
}

func TestScheduleBlocksTeacherDoubleBooking(t *testing.T) {
	engine := NewEngine(nil)
	teacher := testTeacher("t1", "张老师", "数学")

	input := Input{
		Plans: []models.TeachingPlan{
			testPlan(testClass("c1", "一年级1班", 40, "r1"), entry(testCourse("math", "数学"), teacher, 1)),
			testPlan(testClass("c2", "一年级2班", 40, "r2"), entry(testCourse("math", "数学"), teacher, 1)),
		},
		Rooms: []models.Room{
			testRoom("r1", "一年级1班教室", models.RoomTypeStandard, 50),
			testRoom("r2", "一年级2班教室", models.RoomTypeStandard, 50),
		},
		Periods: weekPeriods(5, 8),
	}

	result := engine.Schedule(input)

	require.Equal(t, 2, result.AssignedVariables)
	require.Len(t, result.Assignments, 2)
	a, b := result.Assignments[0], result.Assignments[1]
	assert.NotEqual(t, a.Slot, b.Slot, "shared teacher cannot appear twice in one slot")

	assertScheduleInvariants(t, result, models.DefaultSchedulingRules(), 2)
}

func TestScheduleElectiveOnePerDay(t *testing.T) {
	engine := NewEngine(nil)

	input := Input{
		Plans: []models.TeachingPlan{
			testPlan(testClass("c1", "一年级1班", 40, "r1"),
				entry(testCourse("music", "音乐"), testTeacher("t1", "李老师", "音乐"), 3)),
		},
		Rooms:   []models.Room{testRoom("r1", "一年级1班教室", models.RoomTypeStandard, 50)},
		Periods: weekPeriods(5, 8),
	}

	result := engine.Schedule(input)

	require.Equal(t, 3, result.AssignedVariables)
	days := make(map[int]bool)
	for _, a := range result.Assignments {
		days[a.Slot.DayOfWeek] = true
	}
	assert.Len(t, days, 3, "one music hour per day forces three distinct days")

	assertScheduleInvariants(t, result, models.DefaultSchedulingRules(), 3)
}

func TestScheduleCoreDailyCap(t *testing.T) {
	engine := NewEngine(nil)

	input := Input{
		Plans: []models.TeachingPlan{
			testPlan(testClass("c1", "一年级1班", 40, "r1"),
				entry(testCourse("math", "数学"), testTeacher("t1", "张老师", "数学"), 6)),
		},
		Rooms:   []models.Room{testRoom("r1", "一年级1班教室", models.RoomTypeStandard, 50)},
		Periods: weekPeriods(5, 8),
	}

	result := engine.Schedule(input)

	require.Equal(t, 6, result.AssignedVariables)

	perDay := make(map[int]int)
	for _, a := range result.Assignments {
		perDay[a.Slot.DayOfWeek]++
	}
	for day, count := range perDay {
		assert.LessOrEqual(t, count, 2, "day %d exceeds the daily core cap", day)
	}
	assert.GreaterOrEqual(t, len(perDay), 3)

	assertScheduleInvariants(t, result, models.DefaultSchedulingRules(), 6)
}

func TestScheduleReportsInfeasibleDemand(t *testing.T) {
	engine := NewEngine(nil)
	rules := models.SchedulingRules{WorkingDays: []int{1, 2, 3}}

	input := Input{
		Plans: []models.TeachingPlan{
			testPlan(testClass("c1", "一年级1班", 40, "r1"),
				entry(testCourse("math", "数学"), testTeacher("t1", "张老师", "数学"), 7),
				entry(testCourse("pe", "体育"), testTeacher("t2", "刘老师", "体育"), 3)),
		},
		Rules:   rules,
		Rooms:   []models.Room{testRoom("r1", "一年级1班教室", models.RoomTypeStandard, 50)},
		Periods: weekPeriods(3, 8),
	}

	result := engine.Schedule(input)

	// Seven math hours cannot fit three days at two per day.
	assert.Greater(t, result.UnassignedVariables, 0)
	assert.Equal(t, 10, result.AssignedVariables+result.UnassignedVariables)

	found := false
	for _, s := range result.Suggestions {
		if strings.Contains(s, "未能安排") {
			found = true
		}
	}
	assert.True(t, found, "suggestions must mention unplaced courses, got %v", result.Suggestions)
}

func TestScheduleRoomTypeRequirementUnmet(t *testing.T) {
	engine := NewEngine(nil)

	lab := testCourse("physlab", "物理实验")
	lab.RoomRequirements = models.RoomRequirements{Types: []string{models.RoomTypeLab}}

	input := Input{
		Plans: []models.TeachingPlan{
			testPlan(testClass("c1", "一年级1班", 40, ""),
				entry(lab, testTeacher("t1", "赵老师", "物理"), 2)),
		},
		Rooms:   []models.Room{testRoom("r1", "101", models.RoomTypeStandard, 50)},
		Periods: weekPeriods(5, 8),
	}

	result := engine.Schedule(input)

	assert.False(t, result.Success)
	assert.Zero(t, result.AssignedVariables)
	assert.Equal(t, 2, result.UnassignedVariables)

	found := false
	for _, s := range result.Suggestions {
		if strings.Contains(s, "教室") {
			found = true
		}
	}
	assert.True(t, found, "suggestions must mention room constraints, got %v", result.Suggestions)
}

func TestScheduleEmptyPlanIsNoOp(t *testing.T) {
	engine := NewEngine(nil)

	result := engine.Schedule(Input{Periods: weekPeriods(5, 8)})

	assert.False(t, result.Success)
	assert.Zero(t, result.AssignedVariables)
	assert.Zero(t, result.UnassignedVariables)
	assert.Zero(t, result.TotalScore)
}

func TestScheduleIsDeterministic(t *testing.T) {
	build := func() Input {
		return Input{
			Plans: []models.TeachingPlan{
				testPlan(testClass("c1", "一年级1班", 40, "r1"),
					entry(testCourse("chinese", "语文"), testTeacher("t1", "王老师", "语文"), 4),
					entry(testCourse("math", "数学"), testTeacher("t2", "张老师", "数学"), 4),
					entry(testCourse("music", "音乐"), testTeacher("t3", "李老师", "音乐"), 2)),
				testPlan(testClass("c2", "一年级2班", 38, "r2"),
					entry(testCourse("math", "数学"), testTeacher("t2", "张老师", "数学"), 4),
					entry(testCourse("pe", "体育"), testTeacher("t4", "刘老师", "体育"), 2)),
			},
			Rooms: []models.Room{
				testRoom("r1", "一年级1班教室", models.RoomTypeStandard, 50),
				testRoom("r2", "一年级2班教室", models.RoomTypeStandard, 50),
			},
			Periods: weekPeriods(5, 8),
		}
	}

	first := NewEngine(nil).Schedule(build())
	second := NewEngine(nil).Schedule(build())

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestScheduleCoreGetsMorningsOverElectives(t *testing.T) {
	engine := NewEngine(nil)

	input := Input{
		Plans: []models.TeachingPlan{
			testPlan(testClass("c1", "一年级1班", 40, "r1"),
				entry(testCourse("chinese", "语文"), testTeacher("t1", "王老师", "语文"), 4),
				entry(testCourse("music", "音乐"), testTeacher("t2", "李老师", "音乐"), 4)),
		},
		Rooms:   []models.Room{testRoom("r1", "一年级1班教室", models.RoomTypeStandard, 50)},
		Periods: weekPeriods(5, 8),
	}

	result := engine.Schedule(input)
	require.Equal(t, 8, result.AssignedVariables)

	coreMorning, coreTotal, electiveMorning, electiveTotal := 0, 0, 0, 0
	for _, a := range result.Assignments {
		if a.CourseID == "chinese" {
			coreTotal++
			if a.Slot.Period <= 4 {
				coreMorning++
			}
		} else {
			electiveTotal++
			if a.Slot.Period <= 4 {
				electiveMorning++
			}
		}
	}
	require.Positive(t, coreTotal)
	require.Positive(t, electiveTotal)
	coreFraction := float64(coreMorning) / float64(coreTotal)
	electiveFraction := float64(electiveMorning) / float64(electiveTotal)
	assert.GreaterOrEqual(t, coreFraction, electiveFraction)
}

func TestScheduleWithoutRooms(t *testing.T) {
	engine := NewEngine(nil)

	input := Input{
		Plans: []models.TeachingPlan{
			testPlan(testClass("c1", "一年级1班", 40, ""),
				entry(testCourse("math", "数学"), testTeacher("t1", "张老师", "数学"), 1)),
		},
		Periods: weekPeriods(5, 8),
	}

	result := engine.Schedule(input)
	require.NotNil(t, result)
	assert.Zero(t, result.AssignedVariables, "no rooms means nothing can be placed")
	assert.Equal(t, 1, result.UnassignedVariables)
}

