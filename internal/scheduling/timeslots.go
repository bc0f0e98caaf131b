package scheduling

import "github.com/kadeface/ai-class-scheduling/internal/models"

// DefaultPeriods derives the weekly period grid from the rules when the
// caller supplies none: every working day crossed with every daily period.
func DefaultPeriods(rules models.SchedulingRules) []models.BaseTimeSlot {
	slots := make([]models.BaseTimeSlot, 0, len(rules.WorkingDays)*rules.DailyPeriods)
	for _, day := range rules.WorkingDays {
		for period := 1; period <= rules.DailyPeriods; period++ {
			slots = append(slots, models.BaseTimeSlot{DayOfWeek: day, Period: period})
		}
	}
	return slots
}

// ExpandClassSlots cross-joins the base periods with every class, producing
// the per-class slot universe the propagator prunes from.
func ExpandClassSlots(periods []models.BaseTimeSlot, classIDs []string) []models.ClassTimeSlot {
	slots := make([]models.ClassTimeSlot, 0, len(periods)*len(classIDs))
	for _, classID := range classIDs {
		for _, base := range periods {
			slots = append(slots, models.ClassTimeSlot{
				BaseTimeSlot: base,
				ClassID:      classID,
				IsAvailable:  true,
			})
		}
	}
	return slots
}

// filterPeriods drops slots outside the configured working days and daily
// period range, keeping the caller's ordering.
func filterPeriods(periods []models.BaseTimeSlot, rules models.SchedulingRules) []models.BaseTimeSlot {
	working := make(map[int]bool, len(rules.WorkingDays))
	for _, day := range rules.WorkingDays {
		working[day] = true
	}
	var result []models.BaseTimeSlot
	for _, slot := range periods {
		if !working[slot.DayOfWeek] {
			continue
		}
		if slot.Period < 1 || slot.Period > rules.DailyPeriods {
			continue
		}
		result = append(result, slot)
	}
	return result
}
