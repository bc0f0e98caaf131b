package scheduling

import (
	"fmt"
	"sort"
)

// AssembleResult packages the run state into the synchronous result:
// counters, sorted assignments and rule-driven suggestions.
func AssembleResult(st *ScheduleState, quality Quality, diags []InputDiagnostic, limitHit bool) *Result {
	assignments := make([]Assignment, 0, len(st.Assignments))
	for _, a := range st.Assignments {
		assignments = append(assignments, *a)
	}
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].ClassID != assignments[j].ClassID {
			return assignments[i].ClassID < assignments[j].ClassID
		}
		if assignments[i].Slot.DayOfWeek != assignments[j].Slot.DayOfWeek {
			return assignments[i].Slot.DayOfWeek < assignments[j].Slot.DayOfWeek
		}
		if assignments[i].Slot.Period != assignments[j].Slot.Period {
			return assignments[i].Slot.Period < assignments[j].Slot.Period
		}
		return assignments[i].VarID < assignments[j].VarID
	})

	r := &Result{
		Success:                  len(assignments) > 0,
		AssignedVariables:        len(assignments),
		UnassignedVariables:      len(st.Unassigned),
		HardConstraintViolations: len(st.Conflicts),
		SoftConstraintViolations: countSoftViolations(quality),
		TotalScore:               quality.Total,
		Assignments:              assignments,
		Quality:                  quality,
		Diagnostics:              diags,
		Conflicts:                st.Conflicts,
	}
	r.Message = buildMessage(r, limitHit)
	r.Suggestions = buildSuggestions(r)
	return r
}

// countSoftViolations counts quality dimensions falling below the acceptable
// floor of 15 out of 25.
func countSoftViolations(quality Quality) int {
	violations := 0
	for _, score := range []int{
		quality.CoreDispersion,
		quality.TeacherBalance,
		quality.StudentFatigue,
		quality.WeeklyDistribution,
	} {
		if score < 15 {
			violations++
		}
	}
	return violations
}

func buildMessage(r *Result, limitHit bool) string {
	switch {
	case r.AssignedVariables == 0:
		return "排课失败，没有课程被安排"
	case limitHit:
		return fmt.Sprintf("排课达到迭代或时间上限，已安排 %d 门课时，%d 门未安排", r.AssignedVariables, r.UnassignedVariables)
	case r.UnassignedVariables > 0:
		return fmt.Sprintf("排课部分完成，已安排 %d 门课时，%d 门未安排", r.AssignedVariables, r.UnassignedVariables)
	default:
		return fmt.Sprintf("排课完成，共安排 %d 门课时，评分 %d", r.AssignedVariables, r.TotalScore)
	}
}

// buildSuggestions derives advice from the result counters.
func buildSuggestions(r *Result) []string {
	var suggestions []string
	if r.UnassignedVariables > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("有 %d 门课时未能安排，请检查教师、教室和时段资源是否充足", r.UnassignedVariables))
	}
	if r.HardConstraintViolations > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("存在 %d 个硬约束冲突，应优先解决", r.HardConstraintViolations))
	}
	if r.SoftConstraintViolations > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("存在 %d 个软约束问题，建议优化课程分布", r.SoftConstraintViolations))
	}
	if r.TotalScore < 80 {
		suggestions = append(suggestions, "课表质量一般，建议调整课程分布以提升均衡性")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "课表质量良好")
	}
	return suggestions
}
