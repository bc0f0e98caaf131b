package scheduling

import (
	"math"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// RejectReason explains why a candidate placement failed hard validation.
type RejectReason string

const (
	RejectNone            RejectReason = ""
	RejectTeacherConflict RejectReason = "teacher_conflict"
	RejectTeacherDailyMax RejectReason = "teacher_daily_max"
	RejectTeacherNonstop  RejectReason = "teacher_continuous_max"
	RejectClassConflict   RejectReason = "class_conflict"
	RejectRoomConflict    RejectReason = "room_conflict"
	RejectRoomUnsuitable  RejectReason = "room_unsuitable"
	RejectElectiveDaily   RejectReason = "elective_one_per_day"
	RejectCoreDailyCap    RejectReason = "core_daily_cap"
	RejectCoreClustering  RejectReason = "core_clustering"
	RejectCoreMinDays     RejectReason = "core_min_days"
)

// Checker evaluates hard constraints and soft quality contributions against a
// partial assignment. All methods are pure with respect to the state.
type Checker struct {
	rules models.SchedulingRules
}

// NewChecker builds a checker for one rule set.
func NewChecker(rules models.SchedulingRules) *Checker {
	return &Checker{rules: rules}
}

// Validate runs every hard constraint for the candidate placement and returns
// the first reason that rejects it, or RejectNone.
func (c *Checker) Validate(st *ScheduleState, v *Variable, slot models.BaseTimeSlot, room *models.Room) RejectReason {
	if st.TeacherBusyAt(v.TeacherID, slot) {
		return RejectTeacherConflict
	}
	if st.ClassBusyAt(v.ClassID, slot) {
		return RejectClassConflict
	}
	if reason := c.checkTeacherRules(st, v, slot); reason != RejectNone {
		return reason
	}
	if room != nil {
		if st.RoomBusyAt(room.ID, slot) {
			return RejectRoomConflict
		}
		if !c.RoomSatisfies(v, room) {
			return RejectRoomUnsuitable
		}
	}
	return c.checkSubjectRules(st, v, slot)
}

// FeasibleAt is the assignment-feasibility predicate shared by the propagator
// and the search pre-check. Rooms are resolved later, so room constraints are
// not part of it.
func (c *Checker) FeasibleAt(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) bool {
	if st.TeacherBusyAt(v.TeacherID, slot) {
		return false
	}
	if st.ClassBusyAt(v.ClassID, slot) {
		return false
	}
	if c.checkTeacherRules(st, v, slot) != RejectNone {
		return false
	}
	return c.checkSubjectRules(st, v, slot) == RejectNone
}

func (c *Checker) checkTeacherRules(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) RejectReason {
	if max := c.rules.Teacher.MaxDailyHours; max > 0 {
		if st.TeacherCountOn(v.TeacherID, slot.DayOfWeek) >= max {
			return RejectTeacherDailyMax
		}
	}
	if max := c.rules.Teacher.MaxContinuousHours; max > 0 {
		run := 1
		for p := slot.Period - 1; p >= 1; p-- {
			if !st.TeacherBusyAt(v.TeacherID, models.BaseTimeSlot{DayOfWeek: slot.DayOfWeek, Period: p}) {
				break
			}
			run++
		}
		for p := slot.Period + 1; ; p++ {
			if !st.TeacherBusyAt(v.TeacherID, models.BaseTimeSlot{DayOfWeek: slot.DayOfWeek, Period: p}) {
				break
			}
			run++
		}
		if run > max {
			return RejectTeacherNonstop
		}
	}
	return RejectNone
}

func (c *Checker) checkSubjectRules(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) RejectReason {
	day := slot.DayOfWeek
	sameDay := st.SubjectCountOn(v.ClassID, day, v.Subject)

	if !v.IsCore() {
		if sameDay >= 1 {
			return RejectElectiveDaily
		}
		return RejectNone
	}

	if sameDay >= c.rules.MaxDailyCoreOccurrences {
		return RejectCoreDailyCap
	}

	// Anti-clustering: the same core subject on the three immediately
	// preceding days blocks a fourth consecutive day. Non-wrapping.
	if c.rules.AvoidConsecutiveDays != nil && *c.rules.AvoidConsecutiveDays {
		if day >= 4 &&
			st.SubjectCountOn(v.ClassID, day-1, v.Subject) > 0 &&
			st.SubjectCountOn(v.ClassID, day-2, v.Subject) > 0 &&
			st.SubjectCountOn(v.ClassID, day-3, v.Subject) > 0 {
			return RejectCoreClustering
		}
	}

	// Stacking a second hour onto a day must not make the minimum-days spread
	// unreachable for heavy core subjects.
	if st.SubjectTotal(v.ClassID, v.Subject) >= c.rules.MinDaysPerWeek && sameDay > 0 {
		daysUsed := st.SubjectDaysUsed(v.ClassID, v.Subject)
		remainingAfter := st.SubjectRemaining(v.ClassID, v.Subject) - 1
		if daysUsed+remainingAfter < c.rules.MinDaysPerWeek {
			return RejectCoreMinDays
		}
	}

	return RejectNone
}

// RoomSatisfies checks the course's room requirements: activity, capacity and
// type. Missing equipment is tolerated; it degrades quality, not validity.
func (c *Checker) RoomSatisfies(v *Variable, room *models.Room) bool {
	if !room.IsActive {
		return false
	}
	if c.rules.Room.RespectCapacityLimits || v.RoomReq.Capacity > 0 {
		required := v.RoomReq.Capacity
		if required == 0 {
			required = v.StudentCount
		}
		if required > 0 && room.Capacity > 0 && room.Capacity < required {
			return false
		}
	}
	if len(v.RoomReq.Types) > 0 {
		matched := false
		for _, t := range v.RoomReq.Types {
			if t == room.Type {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// --- Soft scoring ---

// softScorer rates one quality dimension of a candidate placement, 0..25.
type softScorer func(c *Checker, st *ScheduleState, v *Variable, slot models.BaseTimeSlot) int

var softScorers = []softScorer{
	(*Checker).scoreCoreDispersion,
	(*Checker).scoreTeacherBalance,
	(*Checker).scoreStudentFatigue,
	(*Checker).scoreWeeklyDistribution,
}

// SoftScore rates the candidate placement across the four soft dimensions,
// each 0..25, summed and capped at 100.
func (c *Checker) SoftScore(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) int {
	total := 0
	for _, scorer := range softScorers {
		total += scorer(c, st, v, slot)
	}
	if total > 100 {
		total = 100
	}
	return total
}

// scoreCoreDispersion penalises piling further core subjects onto a day that
// already carries several for the class.
func (c *Checker) scoreCoreDispersion(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) int {
	if !v.IsCore() {
		return 25
	}
	coreOnDay := 0
	for _, subject := range c.rules.CoreSubjects {
		coreOnDay += st.SubjectCountOn(v.ClassID, slot.DayOfWeek, subject)
	}
	score := 25 - coreOnDay*5
	if score < 0 {
		score = 0
	}
	return score
}

// scoreTeacherBalance penalises growing a teacher's load on one day.
func (c *Checker) scoreTeacherBalance(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) int {
	perDay := st.TeacherCountOn(v.TeacherID, slot.DayOfWeek)
	score := 25 - perDay*4
	if score < 0 {
		score = 0
	}
	return score
}

// scoreStudentFatigue penalises adjacent periods for the class on the day.
func (c *Checker) scoreStudentFatigue(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) int {
	score := 25
	if slot.Period > 1 && st.ClassBusyAt(v.ClassID, models.BaseTimeSlot{DayOfWeek: slot.DayOfWeek, Period: slot.Period - 1}) {
		score -= 8
	}
	if st.ClassBusyAt(v.ClassID, models.BaseTimeSlot{DayOfWeek: slot.DayOfWeek, Period: slot.Period + 1}) {
		score -= 8
	}
	return score
}

// scoreWeeklyDistribution penalises widening the spread of the class's
// per-day counts; the distribution mode scales the stddev penalty.
func (c *Checker) scoreWeeklyDistribution(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) int {
	counts := make([]float64, 0, len(c.rules.WorkingDays))
	for _, day := range c.rules.WorkingDays {
		count := float64(st.ClassCountOn(v.ClassID, day))
		if day == slot.DayOfWeek {
			count++
		}
		counts = append(counts, count)
	}
	deviation := stddev(counts)

	factor := 3.0
	switch c.rules.DistributionMode {
	case models.DistributionDaily:
		factor = 5.0
	case models.DistributionConcentrated:
		factor = 1.5
	}

	score := 25 - int(math.Round(deviation*factor))
	if score < 0 {
		score = 0
	}
	return score
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, value := range values {
		mean += value
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, value := range values {
		diff := value - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
