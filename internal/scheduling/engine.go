package scheduling

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// Input is the fully populated snapshot one scheduling run works on. The
// engine performs no lookups and no I/O; everything is resolved up front.
type Input struct {
	Plans        []models.TeachingPlan
	Rules        models.SchedulingRules
	Periods      []models.BaseTimeSlot
	Rooms        []models.Room
	AcademicYear string
	Semester     string
}

// Engine runs the staged constraint-satisfaction search. One engine value is
// safe for concurrent runs; all mutable state lives in the per-run
// ScheduleState.
type Engine struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine builds an engine. A nil logger falls back to a no-op logger.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, now: time.Now}
}

type stage struct {
	phase RunPhase
	vars  []*Variable
}

// Schedule assigns every unit-hour demand in the plans to a (slot, room)
// pair, core subjects first, and returns the assembled result. Failures
// short of a panic never abort the run; unplaced variables are reported with
// diagnostics. Panics escaping the checker or allocator are caught and
// surfaced as a failed result.
func (e *Engine) Schedule(input Input) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("scheduling run aborted", zap.Any("panic", r))
			result = &Result{
				Success:     false,
				Message:     fmt.Sprintf("scheduling aborted: %v", r),
				Suggestions: []string{"检查输入数据的完整性后重试"},
			}
		}
	}()

	rules := input.Rules.Normalize()
	started := e.now()

	vars, diags := BuildVariables(input.Plans, rules)
	if len(vars) == 0 {
		return emptyResult(diags)
	}

	periods := filterPeriods(input.Periods, rules)
	if len(periods) == 0 {
		periods = DefaultPeriods(rules)
	}

	classIDs := collectClassIDs(vars)
	classSlots := ExpandClassSlots(periods, classIDs)
	domains := domainsByClass(classSlots)
	for _, v := range vars {
		v.Domain = append([]models.BaseTimeSlot(nil), domains[v.ClassID]...)
	}

	st := NewScheduleState(vars)
	st.Phase = PhasePreparing

	checker := NewChecker(rules)
	allocator := NewRoomAllocator(input.Rooms)
	propagator := NewPropagator(checker)
	budget := newSearchBudget(rules, started)

	core, elective := SplitByStage(vars)
	stages := []stage{
		{phase: PhaseStageCore, vars: core},
		{phase: PhaseStageElective, vars: elective},
	}

	for _, s := range stages {
		if len(s.vars) == 0 {
			continue
		}
		st.Phase = s.phase

		propagator.Prune(st, s.vars)

		outcome := backtrackingSearch(st, s.vars, checker, allocator, rules, budget)
		if !outcome.complete {
			fallback := greedyAssign(st, s.vars, checker, allocator, budget)
			outcome.placed += fallback.placed
			outcome.limitHit = outcome.limitHit || fallback.limitHit
		}

		e.logger.Info("scheduling stage finished",
			zap.String("stage", string(s.phase)),
			zap.Int("stage_variables", len(s.vars)),
			zap.Int("assigned_total", len(st.Assignments)),
			zap.Int("unassigned_total", len(st.Unassigned)),
			zap.Bool("complete", outcome.complete),
			zap.Bool("limit_hit", outcome.limitHit),
			zap.Int("iterations", budget.iterations),
		)

		if outcome.limitHit {
			break
		}
	}

	st.Phase = PhaseScoring
	quality := Evaluate(st, rules)
	st.Score = quality.Total
	st.IsComplete = len(st.Unassigned) == 0

	st.Phase = PhaseDone
	result = AssembleResult(st, quality, diags, budget.limitHit)

	e.logger.Info("scheduling run finished",
		zap.Int("assigned", result.AssignedVariables),
		zap.Int("unassigned", result.UnassignedVariables),
		zap.Int("score", result.TotalScore),
		zap.Duration("elapsed", e.now().Sub(started)),
	)
	return result
}

func emptyResult(diags []InputDiagnostic) *Result {
	return &Result{
		Success:     false,
		Message:     "没有可排课的课程安排",
		Diagnostics: diags,
		Suggestions: []string{"请先为班级配置教学计划"},
	}
}

func collectClassIDs(vars []*Variable) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, v := range vars {
		if !seen[v.ClassID] {
			seen[v.ClassID] = true
			ids = append(ids, v.ClassID)
		}
	}
	sort.Strings(ids)
	return ids
}

func domainsByClass(slots []models.ClassTimeSlot) map[string][]models.BaseTimeSlot {
	domains := make(map[string][]models.BaseTimeSlot)
	for _, slot := range slots {
		if !slot.IsAvailable {
			continue
		}
		domains[slot.ClassID] = append(domains[slot.ClassID], slot.BaseTimeSlot)
	}
	return domains
}
