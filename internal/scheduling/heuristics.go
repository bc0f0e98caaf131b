package scheduling

import (
	"sort"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// Variable-selection composite weights. The variable minimising the weighted
// sum is scheduled next: small domains, high priority, high constraint degree
// and high urgency all pull the composite down.
const (
	weightDomainSize       = 0.40
	weightPriority         = 0.25
	weightConstraintDegree = 0.20
	weightTimeUrgency      = 0.15
)

// selectionContext carries the precomputed facts variable selection needs.
type selectionContext struct {
	checker *Checker
	rules   models.SchedulingRules
	// stage variables per teacher, counted once when the context is built,
	// for the co-occupancy degree.
	teacherLoad map[string]int
}

func newSelectionContext(checker *Checker, rules models.SchedulingRules, vars []*Variable) *selectionContext {
	load := make(map[string]int)
	for _, v := range vars {
		load[v.TeacherID]++
	}
	return &selectionContext{checker: checker, rules: rules, teacherLoad: load}
}

// selectVariable picks the next variable to schedule from the stage's
// unassigned variables, minimising the composite score. Ties break on the
// first-encountered variable, so input order keeps the search reproducible.
func (sc *selectionContext) selectVariable(st *ScheduleState, stageVars []*Variable) *Variable {
	var best *Variable
	bestScore := 0.0
	for _, v := range stageVars {
		if _, open := st.Unassigned[v.ID]; !open {
			continue
		}
		score := sc.compositeScore(st, v)
		if best == nil || score < bestScore {
			best = v
			bestScore = score
		}
	}
	return best
}

func (sc *selectionContext) compositeScore(st *ScheduleState, v *Variable) float64 {
	domainSize := float64(feasibleDomainSize(sc.checker, st, v))
	priority := float64(priorityScore(v.Priority))
	degree := float64(invert(sc.constraintDegree(st, v)))
	urgency := float64(invert(sc.timeUrgency(st, v)))

	return weightDomainSize*domainSize +
		weightPriority*priority +
		weightConstraintDegree*degree +
		weightTimeUrgency*urgency
}

// priorityScore maps variable priority into bands: core is 0, then 20, 40,
// 60, 80 for decreasing priority.
func priorityScore(priority int) int {
	switch {
	case priority >= corePriority:
		return 0
	case priority >= 7:
		return 20
	case priority >= 5:
		return 40
	case priority >= 3:
		return 60
	default:
		return 80
	}
}

// constraintDegree accumulates how entangled the variable is: teacher
// co-occupancy with other pending hours, room specialisation, and global time
// preferences all raise it.
func (sc *selectionContext) constraintDegree(st *ScheduleState, v *Variable) int {
	degree := 0
	if pending := sc.teacherLoad[v.TeacherID]; pending > 1 {
		degree += (pending - 1) * 3
	}
	if len(v.RoomReq.Types) > 0 {
		degree += 20
	}
	if v.RoomReq.Capacity > 0 {
		degree += 5
	}
	if len(sc.rules.PreferredTimeSlots) > 0 || len(sc.rules.AvoidTimeSlots) > 0 {
		degree += 10
	}
	return degree
}

// timeUrgency rises with preference lists and continuous-block requirements;
// stacked remaining hours for the same subject also push a variable forward.
func (sc *selectionContext) timeUrgency(st *ScheduleState, v *Variable) int {
	urgency := 0
	if len(sc.rules.PreferredTimeSlots) > 0 {
		urgency += 15
	}
	if len(sc.rules.AvoidTimeSlots) > 0 {
		urgency += 10
	}
	if v.RequiresContinuous {
		urgency += 30
	}
	if remaining := st.SubjectRemaining(v.ClassID, v.Subject); remaining > 2 {
		urgency += remaining * 2
	}
	return urgency
}

// invert folds an accumulated degree into the minimised composite: more
// constrained variables yield smaller terms.
func invert(degree int) int {
	if degree > 100 {
		degree = 100
	}
	return 100 - degree
}

// --- Value ordering ---

// orderCandidates sorts the variable's current domain by descending K-12
// preference score; ties resolve by (day, period) to keep runs reproducible.
func orderCandidates(checker *Checker, st *ScheduleState, v *Variable, rules models.SchedulingRules) []models.BaseTimeSlot {
	type scored struct {
		slot  models.BaseTimeSlot
		score int
	}
	candidates := make([]scored, 0, len(v.Domain))
	for _, slot := range v.Domain {
		candidates = append(candidates, scored{slot: slot, score: slotPreference(st, v, slot, rules)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].slot.DayOfWeek != candidates[j].slot.DayOfWeek {
			return candidates[i].slot.DayOfWeek < candidates[j].slot.DayOfWeek
		}
		return candidates[i].slot.Period < candidates[j].slot.Period
	})

	ordered := make([]models.BaseTimeSlot, len(candidates))
	for i, c := range candidates {
		ordered[i] = c.slot
	}
	return ordered
}

// slotPreference scores one candidate slot for the variable. It combines
// explicit preference lists, the morning-golden-time bonus for core subjects,
// subject-type fit, continuous-block suitability and same-subject spread.
func slotPreference(st *ScheduleState, v *Variable, slot models.BaseTimeSlot, rules models.SchedulingRules) int {
	score := 50

	for _, period := range rules.PreferredTimeSlots {
		if slot.Period == period {
			score += 20
			break
		}
	}
	for _, period := range rules.AvoidTimeSlots {
		if slot.Period == period {
			score -= 20
			break
		}
	}

	if v.IsCore() {
		switch {
		case slot.Period <= 2:
			score += 25
		case slot.Period <= 4:
			score += 15
		case slot.Period <= 6:
			score += 5
		}
	} else {
		score += electiveSlotBonus(v.Subject, slot.Period)
	}

	if rules.Teacher.AvoidFridayAfternoon && slot.DayOfWeek == 5 && slot.Period > 4 {
		score -= 15
	}

	if v.RequiresContinuous {
		score += continuousBonus(st, v, slot)
	}

	score += spreadBonus(st, v, slot)

	return score
}

// electiveSlotBonus expresses subject-type time preferences: physical
// education in the afternoon, arts mid-day.
func electiveSlotBonus(subject string, period int) int {
	switch subject {
	case "体育":
		if period >= 5 {
			return 10
		}
		if period <= 2 {
			return -10
		}
	case "音乐", "美术":
		if period >= 3 && period <= 6 {
			return 5
		}
	}
	return 0
}

// continuousBonus favours slots adjacent to an already-placed hour of the
// same course, so linked periods end up back to back.
func continuousBonus(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) int {
	adjacentSame := 0
	for _, delta := range []int{-1, 1} {
		neighbour := models.BaseTimeSlot{DayOfWeek: slot.DayOfWeek, Period: slot.Period + delta}
		if id, ok := st.classBusy[occKey{v.ClassID, neighbour}]; ok {
			if a := st.Assignments[id]; a != nil && a.CourseID == v.CourseID {
				adjacentSame++
			}
		}
	}
	return adjacentSame * 15
}

// spreadBonus rewards placing the subject away from days that already hold
// it; adjacent days are mildly penalised.
func spreadBonus(st *ScheduleState, v *Variable, slot models.BaseTimeSlot) int {
	score := 0
	if st.SubjectCountOn(v.ClassID, slot.DayOfWeek-1, v.Subject) > 0 {
		score -= 8
	}
	if st.SubjectCountOn(v.ClassID, slot.DayOfWeek+1, v.Subject) > 0 {
		score -= 8
	}
	if st.SubjectCountOn(v.ClassID, slot.DayOfWeek, v.Subject) > 0 {
		score -= 5
	}
	return score
}
