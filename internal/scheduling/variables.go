package scheduling

import (
	"fmt"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// BuildVariables expands teaching plans into unit-hour variables. A plan entry
// demanding h weekly hours yields h variables differing only in the ID suffix.
// Entries missing a populated class, course or teacher are skipped and
// reported; they never count as scheduled.
func BuildVariables(plans []models.TeachingPlan, rules models.SchedulingRules) ([]*Variable, []InputDiagnostic) {
	var vars []*Variable
	var diags []InputDiagnostic

	for planIdx, plan := range plans {
		if plan.Class == nil {
			diags = append(diags, InputDiagnostic{
				PlanIndex: planIdx,
				Reason:    "teaching plan has no class",
			})
			continue
		}
		for entryIdx, entry := range plan.CourseAssignments {
			if reason := invalidEntryReason(entry); reason != "" {
				diags = append(diags, InputDiagnostic{
					PlanIndex:  planIdx,
					EntryIndex: entryIdx,
					ClassID:    plan.Class.ID,
					Reason:     reason,
				})
				continue
			}

			subject := entry.Course.Subject
			priority := electivePriority
			if rules.IsCoreSubject(subject) {
				priority = corePriority
			}

			requiresContinuous := entry.RequiresContinuous || entry.Course.RequiresContinuous
			continuousHours := entry.ContinuousHours
			if continuousHours == 0 {
				continuousHours = entry.Course.ContinuousHours
			}

			homeroom := ""
			if plan.Class.HomeroomID != nil {
				homeroom = *plan.Class.HomeroomID
			}

			for hour := 0; hour < entry.WeeklyHours; hour++ {
				vars = append(vars, &Variable{
					ID:                 varKey(plan.Class.ID, entry.Course.ID, hour),
					ClassID:            plan.Class.ID,
					CourseID:           entry.Course.ID,
					TeacherID:          entry.Teacher.ID,
					Subject:            subject,
					Priority:           priority,
					ClassName:          plan.Class.Name,
					StudentCount:       plan.Class.StudentCount,
					HomeroomID:         homeroom,
					RoomReq:            entry.Course.RoomRequirements,
					RequiresContinuous: requiresContinuous,
					ContinuousHours:    continuousHours,
					WeeklyHours:        entry.WeeklyHours,
				})
			}
		}
	}
	return vars, diags
}

// SplitByStage partitions variables into the core group scheduled first and
// the elective group scheduled against it.
func SplitByStage(vars []*Variable) (core, elective []*Variable) {
	for _, v := range vars {
		if v.IsCore() {
			core = append(core, v)
		} else {
			elective = append(elective, v)
		}
	}
	return core, elective
}

func invalidEntryReason(entry models.CourseAssignment) string {
	if entry.Course == nil {
		return "course assignment has no course"
	}
	if entry.Teacher == nil {
		return fmt.Sprintf("course %s has no teacher", entry.Course.ID)
	}
	if entry.WeeklyHours < 1 {
		return fmt.Sprintf("course %s has non-positive weekly hours", entry.Course.ID)
	}
	return ""
}
