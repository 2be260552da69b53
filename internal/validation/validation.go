package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictPassReused           ConflictType = "pass_reused"
	ConflictPlanOutOfRange       ConflictType = "plan_out_of_range"
	ConflictPlanOversized        ConflictType = "plan_oversized"
	ConflictFastNotContiguous    ConflictType = "fast_not_contiguous"
	ConflictConfirmedIncomplete  ConflictType = "confirmed_incomplete"
	ConflictWeightAndMissed      ConflictType = "weight_and_missed"
	ConflictInvalidDate          ConflictType = "invalid_date"
	ConflictMissingTrackingStart ConflictType = "missing_tracking_start"
)

// Conflict represents a detected inconsistency in tracked state
type Conflict struct {
	Type        ConflictType
	Description string
	Key         string   // date, week key or month key the conflict belongs to
	Dates       []string // dates involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string   // Human-readable description of the action
	SourceConflict Conflict // The conflict that triggered this fix action
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// PassConflict returns another date in date's week on which the same pass was
// used. The detector only reports; it never prevents a second use.
func PassConflict(s models.AppState, date string, kind models.PassKind) (string, bool) {
	for _, other := range utils.WeekDates(utils.WeekKey(date)) {
		if other == date {
			continue
		}
		if !s.HasDay(other) {
			continue
		}
		if s.Day(other).Field(kind).IsYes() {
			return other, true
		}
	}
	return "", false
}

// Validate checks the whole state for inconsistencies. Results are ordered by
// category, then by key.
func Validate(s models.AppState) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if !utils.IsDate(s.TrackingStart) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMissingTrackingStart,
			Description: fmt.Sprintf("Tracking start %q is not a valid date", s.TrackingStart),
		})
	}

	// Pass reuse, one conflict per week and pass kind
	usage := make(map[string][]string)
	for _, date := range s.RecordedDates() {
		if !utils.IsDate(date) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Day record has invalid date key %q", date),
				Key:         date,
			})
			continue
		}
		day := s.Day(date)
		for _, kind := range []models.PassKind{models.DessertPass, models.MealPass} {
			if day.Field(kind).IsYes() {
				k := utils.WeekKey(date) + "|" + string(kind)
				usage[k] = append(usage[k], date)
			}
		}
		for _, slot := range []models.WeightSlot{models.Morning, models.Night} {
			if _, ok := day.Weight(slot); ok && day.Missed(slot) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictWeightAndMissed,
					Description: fmt.Sprintf("%s: %s weight is recorded and also flagged missed", date, slot),
					Key:         date,
					Dates:       []string{date},
				})
			}
		}
	}
	for _, k := range sortedKeys(usage) {
		dates := usage[k]
		if len(dates) < 2 {
			continue
		}
		weekKey, kind, _ := strings.Cut(k, "|")
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictPassReused,
			Description: fmt.Sprintf("%s used %d times in week of %s (%s)", kind, len(dates), weekKey, strings.Join(dates, ", ")),
			Key:         weekKey,
			Dates:       dates,
		})
	}

	for _, weekKey := range sortedKeys(s.WeekPlans) {
		plan := s.WeekPlans[weekKey]
		if plan.Size() > constants.LiftingDaysPerWeek {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictPlanOversized,
				Description: fmt.Sprintf("Week of %s has %d lifting days (max %d)", weekKey, plan.Size(), constants.LiftingDaysPerWeek),
				Key:         weekKey,
				Dates:       plan.Dates,
			})
		}
		for _, d := range plan.Dates {
			if utils.WeekKey(d) != weekKey {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictPlanOutOfRange,
					Description: fmt.Sprintf("Lifting day %s is outside the week of %s", d, weekKey),
					Key:         weekKey,
					Dates:       []string{d},
				})
			}
		}
		if s.WeekConfirmed(weekKey) && plan.Size() != constants.LiftingDaysPerWeek {
			result.Conflicts = append(result.Conflicts, confirmedIncomplete("Week of "+weekKey, weekKey, plan.Dates))
		}
	}
	for _, weekKey := range sortedKeys(s.ConfirmedWeeks) {
		if _, ok := s.WeekPlans[weekKey]; !ok && s.ConfirmedWeeks[weekKey] {
			result.Conflicts = append(result.Conflicts, confirmedIncomplete("Week of "+weekKey, weekKey, nil))
		}
	}

	for _, monthKey := range sortedKeys(s.FastPlans) {
		plan := s.FastPlans[monthKey]
		if plan.Size() > constants.FastRunDays {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictPlanOversized,
				Description: fmt.Sprintf("Fast plan for %s has %d days (expected %d)", monthKey, plan.Size(), constants.FastRunDays),
				Key:         monthKey,
				Dates:       plan.Dates,
			})
		}
		sorted := slices.Sorted(slices.Values(plan.Dates))
		for i, d := range sorted {
			if utils.MonthKey(d) != monthKey {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictPlanOutOfRange,
					Description: fmt.Sprintf("Fast day %s is outside %s", d, monthKey),
					Key:         monthKey,
					Dates:       []string{d},
				})
			}
			if i > 0 && utils.AddDays(sorted[i-1], 1) != d {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictFastNotContiguous,
					Description: fmt.Sprintf("Fast plan for %s is not a consecutive run (%s)", monthKey, strings.Join(sorted, ", ")),
					Key:         monthKey,
					Dates:       sorted,
				})
				break
			}
		}
		if s.MonthConfirmed(monthKey) && plan.Size() != constants.FastRunDays {
			result.Conflicts = append(result.Conflicts, confirmedIncomplete("Fast plan for "+monthKey, monthKey, plan.Dates))
		}
	}
	for _, monthKey := range sortedKeys(s.ConfirmedMonths) {
		if _, ok := s.FastPlans[monthKey]; !ok && s.ConfirmedMonths[monthKey] {
			result.Conflicts = append(result.Conflicts, confirmedIncomplete("Fast plan for "+monthKey, monthKey, nil))
		}
	}

	return result
}

func confirmedIncomplete(label, key string, dates []string) Conflict {
	return Conflict{
		Type:        ConflictConfirmedIncomplete,
		Description: fmt.Sprintf("%s is confirmed but has %d of 3 days", label, len(dates)),
		Key:         key,
		Dates:       dates,
	}
}

// AutoFix repairs the conflicts that have an unambiguous fix and returns the new
// state. A weight that is both recorded and flagged missed keeps the value; a
// confirmed incomplete plan is unconfirmed. Other conflicts are left for the user.
func AutoFix(s models.AppState, conflicts []Conflict) (models.AppState, []FixAction) {
	var actions []FixAction
	for _, c := range conflicts {
		switch c.Type {
		case ConflictWeightAndMissed:
			day := s.Day(c.Key)
			for _, slot := range []models.WeightSlot{models.Morning, models.Night} {
				if v, ok := day.Weight(slot); ok && day.Missed(slot) {
					day = day.WithWeight(slot, &v)
				}
			}
			s = s.WithDay(day)
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Cleared missed flag on %s, kept recorded weight", c.Key),
				SourceConflict: c,
			})
		case ConflictConfirmedIncomplete:
			if utils.IsWeekKey(c.Key) {
				s = s.WithWeekUnconfirmed(c.Key)
			} else {
				s = s.WithMonthUnconfirmed(c.Key)
			}
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Unconfirmed incomplete plan %s", c.Key),
				SourceConflict: c,
			})
		}
	}
	return s, actions
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
