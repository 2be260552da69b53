package models

import (
	"fmt"
	"math"
)

// DayField names a day-level yes/no question.
type DayField string

const (
	FieldDietException     DayField = "dietException"
	FieldDessertPass       DayField = "dessertPass"
	FieldMealPass          DayField = "mealPass"
	FieldWeightLiftingDone DayField = "weightLiftingDone"
	FieldWaterFastDone     DayField = "waterFastDone"
)

// DayFields lists every day-level question.
var DayFields = []DayField{
	FieldDietException,
	FieldDessertPass,
	FieldMealPass,
	FieldWeightLiftingDone,
	FieldWaterFastDone,
}

// PassKind is a weekly-limited diet exception.
type PassKind = DayField

const (
	DessertPass PassKind = FieldDessertPass
	MealPass    PassKind = FieldMealPass
)

// WeightSlot selects the morning or night weigh-in.
type WeightSlot string

const (
	Morning WeightSlot = "morning"
	Night   WeightSlot = "night"
)

func ParseWeightSlot(s string) (WeightSlot, error) {
	switch WeightSlot(s) {
	case Morning, Night:
		return WeightSlot(s), nil
	}
	return "", fmt.Errorf("invalid weight slot %q (expected morning or night)", s)
}

// DayRecord is the tracked answers for one calendar date.
// A weight value and its missed flag are never both set.
type DayRecord struct {
	Date                string      `json:"date"`
	Diet                DietAnswers `json:"diet"`
	DietException       Answer      `json:"dietException"`
	DessertPass         Answer      `json:"dessertPass"`
	MealPass            Answer      `json:"mealPass"`
	WeightMorning       *float64    `json:"weightMorning"`
	WeightNight         *float64    `json:"weightNight"`
	WeightMorningMissed bool        `json:"weightMorningMissed"`
	WeightNightMissed   bool        `json:"weightNightMissed"`
	WeightLiftingDone   Answer      `json:"weightLiftingDone"`
	WaterFastDone       Answer      `json:"waterFastDone"`
}

// NewDayRecord returns the default, fully unanswered record for date.
func NewDayRecord(date string) DayRecord {
	return DayRecord{Date: date}
}

// Field returns the answer for a day-level question.
func (d DayRecord) Field(f DayField) Answer {
	switch f {
	case FieldDietException:
		return d.DietException
	case FieldDessertPass:
		return d.DessertPass
	case FieldMealPass:
		return d.MealPass
	case FieldWeightLiftingDone:
		return d.WeightLiftingDone
	case FieldWaterFastDone:
		return d.WaterFastDone
	}
	return Unanswered
}

// WithField returns a copy with the day-level question f set to a.
func (d DayRecord) WithField(f DayField, a Answer) DayRecord {
	switch f {
	case FieldDietException:
		d.DietException = a
	case FieldDessertPass:
		d.DessertPass = a
	case FieldMealPass:
		d.MealPass = a
	case FieldWeightLiftingDone:
		d.WeightLiftingDone = a
	case FieldWaterFastDone:
		d.WaterFastDone = a
	}
	return d
}

// WithDiet returns a copy with one diet rule answered.
func (d DayRecord) WithDiet(r DietRule, a Answer) DayRecord {
	d.Diet = d.Diet.With(r, a)
	return d
}

// Weight returns the finite weight for slot, if any.
func (d DayRecord) Weight(slot WeightSlot) (float64, bool) {
	var v *float64
	switch slot {
	case Morning:
		v = d.WeightMorning
	case Night:
		v = d.WeightNight
	}
	if v == nil || !IsFinite(*v) {
		return 0, false
	}
	return *v, true
}

// Missed reports whether the weigh-in for slot was flagged as missed.
func (d DayRecord) Missed(slot WeightSlot) bool {
	switch slot {
	case Morning:
		return d.WeightMorningMissed
	case Night:
		return d.WeightNightMissed
	}
	return false
}

// WithWeight returns a copy with the weight for slot set, clearing its missed flag.
// A nil or non-finite value clears the weight.
func (d DayRecord) WithWeight(slot WeightSlot, value *float64) DayRecord {
	var v *float64
	if value != nil && IsFinite(*value) {
		x := *value
		v = &x
	}
	switch slot {
	case Morning:
		d.WeightMorning = v
		d.WeightMorningMissed = false
	case Night:
		d.WeightNight = v
		d.WeightNightMissed = false
	}
	return d
}

// WithMissedToggled flips the missed flag for slot. Setting the flag clears the weight.
func (d DayRecord) WithMissedToggled(slot WeightSlot) DayRecord {
	switch slot {
	case Morning:
		d.WeightMorningMissed = !d.WeightMorningMissed
		if d.WeightMorningMissed {
			d.WeightMorning = nil
		}
	case Night:
		d.WeightNightMissed = !d.WeightNightMissed
		if d.WeightNightMissed {
			d.WeightNight = nil
		}
	}
	return d
}

// WeightAccounted reports whether slot has either a finite value or a missed flag.
func (d DayRecord) WeightAccounted(slot WeightSlot) bool {
	if _, ok := d.Weight(slot); ok {
		return true
	}
	return d.Missed(slot)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
