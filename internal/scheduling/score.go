package scheduling

import (
	"math"
	"sort"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// Evaluate rates the whole schedule across the four quality dimensions, each
// 0..25. An empty schedule scores zero.
func Evaluate(st *ScheduleState, rules models.SchedulingRules) Quality {
	if len(st.Assignments) == 0 {
		return Quality{}
	}

	classes := assignedClasses(st)
	teachers := assignedTeachers(st)

	q := Quality{
		CoreDispersion:     scoreCoreDispersionTotal(st, rules, classes),
		TeacherBalance:     scoreTeacherBalanceTotal(st, rules, teachers),
		StudentFatigue:     scoreStudentFatigueTotal(st, rules, classes),
		WeeklyDistribution: scoreWeeklyDistributionTotal(st, rules, classes),
	}
	q.Total = q.CoreDispersion + q.TeacherBalance + q.StudentFatigue + q.WeeklyDistribution
	if q.Total > 100 {
		q.Total = 100
	}
	return q
}

// scoreCoreDispersionTotal penalises days overloaded with core subjects and
// same-subject stacking of more than one hour per day.
func scoreCoreDispersionTotal(st *ScheduleState, rules models.SchedulingRules, classes []string) int {
	if len(classes) == 0 {
		return 0
	}
	totalPenalty := 0.0
	for _, classID := range classes {
		penalty := 0
		for _, day := range rules.WorkingDays {
			coreOnDay := 0
			for _, subject := range rules.CoreSubjects {
				count := st.SubjectCountOn(classID, day, subject)
				coreOnDay += count
				if count > 1 {
					penalty += (count - 1) * 2
				}
			}
			if coreOnDay > len(rules.CoreSubjects)+1 {
				penalty += (coreOnDay - len(rules.CoreSubjects) - 1) * 3
			}
		}
		totalPenalty += float64(penalty)
	}
	return clampDimension(25 - int(math.Round(totalPenalty/float64(len(classes)))))
}

// scoreTeacherBalanceTotal penalises uneven per-day teaching loads.
func scoreTeacherBalanceTotal(st *ScheduleState, rules models.SchedulingRules, teachers []string) int {
	if len(teachers) == 0 {
		return 0
	}
	totalDeviation := 0.0
	for _, teacherID := range teachers {
		counts := make([]float64, 0, len(rules.WorkingDays))
		for _, day := range rules.WorkingDays {
			counts = append(counts, float64(st.TeacherCountOn(teacherID, day)))
		}
		totalDeviation += stddev(counts)
	}
	avg := totalDeviation / float64(len(teachers))
	return clampDimension(25 - int(math.Round(avg*5)))
}

// scoreStudentFatigueTotal penalises back-to-back periods per class and day.
func scoreStudentFatigueTotal(st *ScheduleState, rules models.SchedulingRules, classes []string) int {
	if len(classes) == 0 {
		return 0
	}
	totalAdjacent := 0
	for _, classID := range classes {
		for _, day := range rules.WorkingDays {
			for period := 1; period < rules.DailyPeriods; period++ {
				here := models.BaseTimeSlot{DayOfWeek: day, Period: period}
				next := models.BaseTimeSlot{DayOfWeek: day, Period: period + 1}
				if st.ClassBusyAt(classID, here) && st.ClassBusyAt(classID, next) {
					totalAdjacent++
				}
			}
		}
	}
	avg := float64(totalAdjacent) / float64(len(classes))
	return clampDimension(25 - int(math.Round(avg)))
}

// scoreWeeklyDistributionTotal penalises the per-class standard deviation of
// daily course counts; the distribution mode scales the penalty.
func scoreWeeklyDistributionTotal(st *ScheduleState, rules models.SchedulingRules, classes []string) int {
	if len(classes) == 0 {
		return 0
	}
	factor := 3.0
	switch rules.DistributionMode {
	case models.DistributionDaily:
		factor = 5.0
	case models.DistributionConcentrated:
		factor = 1.5
	}

	totalDeviation := 0.0
	for _, classID := range classes {
		counts := make([]float64, 0, len(rules.WorkingDays))
		for _, day := range rules.WorkingDays {
			counts = append(counts, float64(st.ClassCountOn(classID, day)))
		}
		totalDeviation += stddev(counts)
	}
	avg := totalDeviation / float64(len(classes))
	return clampDimension(25 - int(math.Round(avg*factor)))
}

func clampDimension(score int) int {
	if score < 0 {
		return 0
	}
	if score > 25 {
		return 25
	}
	return score
}

func assignedClasses(st *ScheduleState) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range st.Assignments {
		if !seen[a.ClassID] {
			seen[a.ClassID] = true
			ids = append(ids, a.ClassID)
		}
	}
	sort.Strings(ids)
	return ids
}

func assignedTeachers(st *ScheduleState) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range st.Assignments {
		if !seen[a.TeacherID] {
			seen[a.TeacherID] = true
			ids = append(ids, a.TeacherID)
		}
	}
	sort.Strings(ids)
	return ids
}
