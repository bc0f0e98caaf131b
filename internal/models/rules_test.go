package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	rules := SchedulingRules{}.Normalize()

	assert.Equal(t, []string{"语文", "数学", "英语"}, rules.CoreSubjects)
	assert.Equal(t, DistributionBalanced, rules.DistributionMode)
	assert.Equal(t, 2, rules.MaxDailyCoreOccurrences)
	assert.Equal(t, 4, rules.MinDaysPerWeek)
	assert.Equal(t, 10000, rules.MaxIterations)
	assert.Equal(t, 300*time.Second, rules.TimeLimit)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rules.WorkingDays)
	assert.Equal(t, 8, rules.DailyPeriods)
	if assert.NotNil(t, rules.AvoidConsecutiveDays) {
		assert.True(t, *rules.AvoidConsecutiveDays)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	disabled := false
	rules := SchedulingRules{
		CoreSubjects:         []string{"数学"},
		DistributionMode:     DistributionConcentrated,
		WorkingDays:          []int{3, 1, 1, 9},
		DailyPeriods:         6,
		AvoidConsecutiveDays: &disabled,
	}.Normalize()

	assert.Equal(t, []string{"数学"}, rules.CoreSubjects)
	assert.Equal(t, DistributionConcentrated, rules.DistributionMode)
	assert.Equal(t, []int{1, 3}, rules.WorkingDays, "days deduplicated, sorted, out-of-range dropped")
	assert.Equal(t, 6, rules.DailyPeriods)
	assert.False(t, *rules.AvoidConsecutiveDays)
}

func TestNormalizeResetsOutOfRangePeriods(t *testing.T) {
	assert.Equal(t, 8, SchedulingRules{DailyPeriods: 13}.Normalize().DailyPeriods)
	assert.Equal(t, 8, SchedulingRules{DailyPeriods: -1}.Normalize().DailyPeriods)
}

func TestIsCoreSubject(t *testing.T) {
	rules := DefaultSchedulingRules()
	assert.True(t, rules.IsCoreSubject("数学"))
	assert.False(t, rules.IsCoreSubject("体育"))
	assert.False(t, rules.IsCoreSubject("数学 "), "matching is exact, not fuzzy")
}
