// Package planner manages weekly lifting plans and monthly fasting plans.
package planner

import (
	"errors"
	"fmt"
	"slices"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// ErrSelectionRejected is returned when a plan selection is out of range.
// The state returned alongside it is the unchanged input.
var ErrSelectionRejected = errors.New("plan selection rejected")

func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSelectionRejected, fmt.Sprintf(format, args...))
}

// ReplaceWeekPlan sets the lifting days for weekKey and clears the week's confirmation.
// Fewer than three dates are accepted while editing; more than three, duplicates or
// dates outside the week are rejected.
func ReplaceWeekPlan(s models.AppState, weekKey string, dates []string) (models.AppState, error) {
	if !utils.IsWeekKey(weekKey) {
		return s, rejectf("week key %q is not a Sunday", weekKey)
	}
	sorted, err := normalize(dates)
	if err != nil {
		return s, err
	}
	if len(sorted) > constants.LiftingDaysPerWeek {
		return s, rejectf("at most %d lifting days per week, got %d", constants.LiftingDaysPerWeek, len(sorted))
	}
	for _, d := range sorted {
		if utils.WeekKey(d) != weekKey {
			return s, rejectf("%s is not in the week of %s", d, weekKey)
		}
	}
	return s.WithWeekPlan(weekKey, sorted), nil
}

// ReplaceFastPlan sets the fast days for monthKey and clears the month's confirmation.
// The dates must be consecutive and inside the month.
func ReplaceFastPlan(s models.AppState, monthKey string, dates []string) (models.AppState, error) {
	if _, err := utils.ParseMonth(monthKey); err != nil {
		return s, rejectf("%v", err)
	}
	sorted, err := normalize(dates)
	if err != nil {
		return s, err
	}
	if len(sorted) > constants.FastRunDays {
		return s, rejectf("a fast spans %d days, got %d", constants.FastRunDays, len(sorted))
	}
	for i, d := range sorted {
		if utils.MonthKey(d) != monthKey {
			return s, rejectf("%s is not in %s", d, monthKey)
		}
		if i > 0 && utils.AddDays(sorted[i-1], 1) != d {
			return s, rejectf("fast days must be consecutive, %s does not follow %s", d, sorted[i-1])
		}
	}
	return s.WithFastPlan(monthKey, sorted), nil
}

// FastRun returns the three-day run beginning at start.
func FastRun(start string) []string {
	run := make([]string, constants.FastRunDays)
	for i := range run {
		run[i] = utils.AddDays(start, i)
	}
	return run
}

// FastStartBounds returns the earliest and latest start dates for which a full
// run fits inside monthKey.
func FastStartBounds(monthKey string) (first, last string, err error) {
	if _, err := utils.ParseMonth(monthKey); err != nil {
		return "", "", err
	}
	n := utils.DaysInMonth(monthKey)
	return utils.MonthDay(monthKey, 1), utils.MonthDay(monthKey, n-constants.FastRunDays+1), nil
}

// ConfirmWeekPlan marks the week's current dates as reviewed.
// Callers only offer this once the plan is complete.
func ConfirmWeekPlan(s models.AppState, weekKey string) models.AppState {
	return s.WithWeekConfirmed(weekKey)
}

// ConfirmMonthPlan marks the month's current fast dates as reviewed.
func ConfirmMonthPlan(s models.AppState, monthKey string) models.AppState {
	return s.WithMonthConfirmed(monthKey)
}

// IsWeekPlanComplete reports whether the week has exactly three lifting days.
func IsWeekPlanComplete(s models.AppState, weekKey string) bool {
	return s.WeekPlan(weekKey).Size() == constants.LiftingDaysPerWeek
}

// IsWeekPlanConfirmed reports whether the week plan was confirmed.
func IsWeekPlanConfirmed(s models.AppState, weekKey string) bool {
	return s.WeekConfirmed(weekKey)
}

// IsMonthPlanComplete reports whether the month has a full three-day fast.
func IsMonthPlanComplete(s models.AppState, monthKey string) bool {
	return s.FastPlan(monthKey).Size() == constants.FastRunDays
}

// IsMonthPlanConfirmed reports whether the fasting plan was confirmed.
func IsMonthPlanConfirmed(s models.AppState, monthKey string) bool {
	return s.MonthConfirmed(monthKey)
}

func normalize(dates []string) ([]string, error) {
	out := append([]string{}, dates...)
	for _, d := range out {
		if !utils.IsDate(d) {
			return nil, rejectf("%q is not a YYYY-MM-DD date", d)
		}
	}
	slices.Sort(out)
	if len(slices.Compact(slices.Clone(out))) != len(out) {
		return nil, rejectf("duplicate dates in selection")
	}
	return out, nil
}
