package scheduling

import (
	"time"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// searchBudget guards termination across both stages of a run.
type searchBudget struct {
	maxIterations int
	deadline      time.Time
	iterations    int
	limitHit      bool
}

func newSearchBudget(rules models.SchedulingRules, now time.Time) *searchBudget {
	return &searchBudget{
		maxIterations: rules.MaxIterations,
		deadline:      now.Add(rules.TimeLimit),
	}
}

func (b *searchBudget) spend() bool {
	b.iterations++
	if b.iterations > b.maxIterations || !time.Now().Before(b.deadline) {
		b.limitHit = true
		return false
	}
	return true
}

// stageOutcome reports how a stage strategy ended.
type stageOutcome struct {
	complete bool
	limitHit bool
	placed   int
}

// frame is one level of the explicit backtracking stack. Depth is bounded by
// the stage's variable count, so no recursion is involved.
type frame struct {
	v          *Variable
	candidates []models.BaseTimeSlot
	next       int
	committed  bool
}

// backtrackingSearch runs Strategy A for one stage: MRV-style variable
// selection, preference-ordered candidate slots, room allocation and full
// hard-constraint validation per candidate, chronological backtracking on
// dead ends. Assignments from earlier stages are immutable context.
func backtrackingSearch(
	st *ScheduleState,
	stageVars []*Variable,
	checker *Checker,
	allocator *RoomAllocator,
	rules models.SchedulingRules,
	budget *searchBudget,
) stageOutcome {
	sc := newSelectionContext(checker, rules, stageVars)
	outcome := stageOutcome{}

	first := sc.selectVariable(st, stageVars)
	if first == nil {
		outcome.complete = true
		return outcome
	}

	stack := make([]*frame, 0, len(stageVars))
	stack = append(stack, &frame{v: first, candidates: orderCandidates(checker, st, first, rules)})

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if f.committed {
			// A deeper frame exhausted its candidates; revert and move on.
			st.Undo(f.v.ID)
			outcome.placed--
			f.committed = false
		}

		if f.next >= len(f.candidates) {
			stack = stack[:len(stack)-1]
			continue
		}

		slot := f.candidates[f.next]
		f.next++

		if !budget.spend() {
			outcome.limitHit = true
			return outcome
		}

		if !checker.FeasibleAt(st, f.v, slot) {
			continue
		}
		room := allocator.Pick(f.v)
		if room == nil {
			// No room can serve this variable at all; no candidate will work.
			f.next = len(f.candidates)
			continue
		}
		if checker.Validate(st, f.v, slot, room) != RejectNone {
			continue
		}

		st.Commit(&Assignment{
			VarID:     f.v.ID,
			ClassID:   f.v.ClassID,
			CourseID:  f.v.CourseID,
			TeacherID: f.v.TeacherID,
			RoomID:    room.ID,
			Slot:      slot,
		})
		f.committed = true
		outcome.placed++

		next := sc.selectVariable(st, stageVars)
		if next == nil {
			outcome.complete = true
			return outcome
		}
		stack = append(stack, &frame{v: next, candidates: orderCandidates(checker, st, next, rules)})
	}

	// Search space exhausted; every trial assignment has been undone.
	return outcome
}

// greedyAssign runs Strategy B: variables in input order, first slot that
// passes the pre-check and full validation wins, no backtracking.
func greedyAssign(
	st *ScheduleState,
	stageVars []*Variable,
	checker *Checker,
	allocator *RoomAllocator,
	budget *searchBudget,
) stageOutcome {
	outcome := stageOutcome{complete: true}

	for _, v := range stageVars {
		if _, open := st.Unassigned[v.ID]; !open {
			continue
		}

		room := allocator.Pick(v)
		if room == nil {
			outcome.complete = false
			continue
		}

		placed := false
		for _, slot := range v.Domain {
			if !budget.spend() {
				outcome.limitHit = true
				outcome.complete = false
				return outcome
			}
			if !checker.FeasibleAt(st, v, slot) {
				continue
			}
			if checker.Validate(st, v, slot, room) != RejectNone {
				continue
			}
			st.Commit(&Assignment{
				VarID:     v.ID,
				ClassID:   v.ClassID,
				CourseID:  v.CourseID,
				TeacherID: v.TeacherID,
				RoomID:    room.ID,
				Slot:      slot,
			})
			outcome.placed++
			placed = true
			break
		}
		if !placed {
			outcome.complete = false
		}
	}
	return outcome
}
