package scheduling

import "github.com/kadeface/ai-class-scheduling/internal/models"

// Propagator prunes variable domains against the current partial assignment.
// It runs once at stage start; within search, feasibility is re-checked per
// candidate instead of re-propagating.
type Propagator struct {
	checker *Checker
}

// NewPropagator builds a propagator sharing the stage's checker.
func NewPropagator(checker *Checker) *Propagator {
	return &Propagator{checker: checker}
}

// Prune reduces each unassigned variable's domain to the slots passing the
// feasibility predicate. A variable whose domain collapses is recorded as a
// structured conflict and the state is marked infeasible; pruning continues
// so every collapsed variable is reported.
func (p *Propagator) Prune(st *ScheduleState, vars []*Variable) bool {
	feasible := true
	for _, v := range vars {
		if _, open := st.Unassigned[v.ID]; !open {
			continue
		}
		reduced := make([]models.BaseTimeSlot, 0, len(v.Domain))
		for _, slot := range v.Domain {
			if p.checker.FeasibleAt(st, v, slot) {
				reduced = append(reduced, slot)
			}
		}
		v.Domain = reduced
		if len(reduced) == 0 {
			feasible = false
			st.addConflict(v.ClassID, v.ID, []string{
				ConstraintTime, ConstraintTeacher, ConstraintClass, ConstraintRoom,
			})
		}
	}
	if !feasible {
		st.IsFeasible = false
	}
	return feasible
}

// feasibleDomainSize counts the slots in the variable's domain still passing
// the predicate against the current assignments, without mutating the domain.
func feasibleDomainSize(checker *Checker, st *ScheduleState, v *Variable) int {
	count := 0
	for _, slot := range v.Domain {
		if checker.FeasibleAt(st, v, slot) {
			count++
		}
	}
	return count
}
