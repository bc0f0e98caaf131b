package models

import (
	"sort"
	"time"
)

// DistributionMode steers how the weekly-distribution soft scorer weighs
// spread versus concentration of a class's course load.
type DistributionMode string

const (
	DistributionDaily        DistributionMode = "daily"
	DistributionBalanced     DistributionMode = "balanced"
	DistributionConcentrated DistributionMode = "concentrated"
)

// TeacherRules carries per-teacher workload limits.
type TeacherRules struct {
	MaxDailyHours         int  `json:"max_daily_hours,omitempty"`
	MaxContinuousHours    int  `json:"max_continuous_hours,omitempty"`
	MinRestBetweenCourses int  `json:"min_rest_between_courses,omitempty"`
	AvoidFridayAfternoon  bool `json:"avoid_friday_afternoon,omitempty"`
}

// RoomRules carries room-allocation preferences.
type RoomRules struct {
	RespectCapacityLimits bool `json:"respect_capacity_limits"`
	PreferFixedClassrooms bool `json:"prefer_fixed_classrooms"`
	AllowRoomSharing      bool `json:"allow_room_sharing"`
}

// SchedulingRules configures one scheduling run. Zero values are replaced by
// Normalize; callers may pass a partially filled struct.
type SchedulingRules struct {
	CoreSubjects            []string         `json:"core_subjects,omitempty"`
	DistributionMode        DistributionMode `json:"distribution_mode,omitempty"`
	MaxDailyCoreOccurrences int              `json:"max_daily_core_occurrences,omitempty"`
	MinDaysPerWeek          int              `json:"min_days_per_week,omitempty"`
	AvoidConsecutiveDays    *bool            `json:"avoid_consecutive_days,omitempty"`
	PreferredTimeSlots      []int            `json:"preferred_time_slots,omitempty"`
	AvoidTimeSlots          []int            `json:"avoid_time_slots,omitempty"`
	MaxIterations           int              `json:"max_iterations,omitempty"`
	TimeLimit               time.Duration    `json:"time_limit,omitempty"`
	WorkingDays             []int            `json:"working_days,omitempty"`
	DailyPeriods            int              `json:"daily_periods,omitempty"`
	Teacher                 TeacherRules     `json:"teacher,omitempty"`
	Room                    RoomRules        `json:"room,omitempty"`
}

// DefaultSchedulingRules returns the rule set used when the caller supplies
// nothing: Chinese, math and English as core subjects on a 5x8 week.
func DefaultSchedulingRules() SchedulingRules {
	avoid := true
	return SchedulingRules{
		CoreSubjects:            []string{"语文", "数学", "英语"},
		DistributionMode:        DistributionBalanced,
		MaxDailyCoreOccurrences: 2,
		MinDaysPerWeek:          4,
		AvoidConsecutiveDays:    &avoid,
		MaxIterations:           10000,
		TimeLimit:               300 * time.Second,
		WorkingDays:             []int{1, 2, 3, 4, 5},
		DailyPeriods:            8,
		Room: RoomRules{
			RespectCapacityLimits: true,
			PreferFixedClassrooms: true,
			AllowRoomSharing:      true,
		},
	}
}

// Normalize fills unset fields from the defaults and replaces an
// out-of-range daily period count with the default; working days outside
// 1..7 are dropped. It returns a copy; the receiver is not modified.
func (r SchedulingRules) Normalize() SchedulingRules {
	defaults := DefaultSchedulingRules()

	if len(r.CoreSubjects) == 0 {
		r.CoreSubjects = defaults.CoreSubjects
	}
	switch r.DistributionMode {
	case DistributionDaily, DistributionBalanced, DistributionConcentrated:
	default:
		r.DistributionMode = defaults.DistributionMode
	}
	if r.MaxDailyCoreOccurrences <= 0 {
		r.MaxDailyCoreOccurrences = defaults.MaxDailyCoreOccurrences
	}
	if r.MinDaysPerWeek <= 0 {
		r.MinDaysPerWeek = defaults.MinDaysPerWeek
	}
	if r.AvoidConsecutiveDays == nil {
		r.AvoidConsecutiveDays = defaults.AvoidConsecutiveDays
	}
	if r.MaxIterations <= 0 {
		r.MaxIterations = defaults.MaxIterations
	}
	if r.TimeLimit <= 0 {
		r.TimeLimit = defaults.TimeLimit
	}
	r.WorkingDays = normalizeWorkingDays(r.WorkingDays, defaults.WorkingDays)
	if r.DailyPeriods < 1 || r.DailyPeriods > 12 {
		r.DailyPeriods = defaults.DailyPeriods
	}
	return r
}

// IsCoreSubject reports whether the subject belongs to the configured core
// set. Matching is exact string equality on the normalised subject name.
func (r SchedulingRules) IsCoreSubject(subject string) bool {
	for _, s := range r.CoreSubjects {
		if s == subject {
			return true
		}
	}
	return false
}

func normalizeWorkingDays(days, fallback []int) []int {
	seen := make(map[int]bool, len(days))
	var result []int
	for _, day := range days {
		if day < 1 || day > 7 || seen[day] {
			continue
		}
		seen[day] = true
		result = append(result, day)
	}
	if len(result) == 0 {
		return fallback
	}
	sort.Ints(result)
	return result
}
