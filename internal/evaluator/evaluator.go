// Package evaluator decides whether a tracked day is complete.
package evaluator

import (
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// Item identifies one outstanding answer on a day.
type Item struct {
	Field models.DayField   // set for day-level questions
	Rule  *models.DietRule  // set for diet rules
	Slot  models.WeightSlot // set for weigh-ins
}

func (i Item) String() string {
	switch {
	case i.Rule != nil:
		return i.Rule.Label()
	case i.Slot != "":
		return string(i.Slot) + " weight"
	default:
		return fieldLabels[i.Field]
	}
}

var fieldLabels = map[models.DayField]string{
	models.FieldDietException:     "Diet exception day",
	models.FieldDessertPass:       "Used dessert pass",
	models.FieldMealPass:          "Used meal pass",
	models.FieldWeightLiftingDone: "Lifted weights",
	models.FieldWaterFastDone:     "Water fasted",
}

// FieldLabel returns the question text for a day-level field.
func FieldLabel(f models.DayField) string { return fieldLabels[f] }

// IsLiftingDay reports whether date is in its week's lifting plan.
func IsLiftingDay(s models.AppState, date string) bool {
	return s.WeekPlan(utils.WeekKey(date)).Contains(date)
}

// IsFastDay reports whether date is in its month's fast plan.
func IsFastDay(s models.AppState, date string) bool {
	return s.FastPlan(utils.MonthKey(date)).Contains(date)
}

// IsDayComplete reports whether every required answer for date is present.
func IsDayComplete(s models.AppState, date string) bool {
	return len(MissingItems(s, date)) == 0
}

// MissingItems lists the unanswered requirements for date in display order.
// An empty result means the day is complete.
func MissingItems(s models.AppState, date string) []Item {
	day := s.Day(date)
	var missing []Item

	if !day.DietException.Answered() {
		missing = append(missing, Item{Field: models.FieldDietException})
	}
	// An exception day waives the rule and pass questions.
	if !day.DietException.IsYes() {
		for _, r := range models.DietRules {
			if !day.Diet.Get(r).Answered() {
				rule := r
				missing = append(missing, Item{Rule: &rule})
			}
		}
		if !day.DessertPass.Answered() {
			missing = append(missing, Item{Field: models.FieldDessertPass})
		}
		if !day.MealPass.Answered() {
			missing = append(missing, Item{Field: models.FieldMealPass})
		}
	}

	for _, slot := range []models.WeightSlot{models.Morning, models.Night} {
		if !day.WeightAccounted(slot) {
			missing = append(missing, Item{Slot: slot})
		}
	}

	if IsLiftingDay(s, date) && !day.WeightLiftingDone.Answered() {
		missing = append(missing, Item{Field: models.FieldWeightLiftingDone})
	}
	if IsFastDay(s, date) && !day.WaterFastDone.Answered() {
		missing = append(missing, Item{Field: models.FieldWaterFastDone})
	}

	return missing
}

// DietRequirementSatisfied reports whether the day met the diet goal: an exception
// day, a pass used, or every diet rule answered no.
func DietRequirementSatisfied(day models.DayRecord) bool {
	return day.DietException.IsYes() ||
		day.DessertPass.IsYes() ||
		day.MealPass.IsYes() ||
		day.Diet.AllNo()
}
