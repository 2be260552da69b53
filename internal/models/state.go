package models

import (
	"maps"
	"slices"
)

// AppState is the aggregate root. Values are treated as immutable snapshots:
// every With* method returns a new AppState and leaves the receiver untouched.
type AppState struct {
	Days            map[string]DayRecord `json:"days"`
	WeekPlans       map[string]WeekPlan  `json:"weekPlans"`
	FastPlans       map[string]FastPlan  `json:"fastPlans"`
	TrackingStart   string               `json:"trackingStart"`
	ConfirmedWeeks  map[string]bool      `json:"confirmedWeeks"`
	ConfirmedMonths map[string]bool      `json:"confirmedMonths"`
}

// NewAppState returns an empty state that starts tracking on trackingStart.
func NewAppState(trackingStart string) AppState {
	return AppState{
		Days:            map[string]DayRecord{},
		WeekPlans:       map[string]WeekPlan{},
		FastPlans:       map[string]FastPlan{},
		TrackingStart:   trackingStart,
		ConfirmedWeeks:  map[string]bool{},
		ConfirmedMonths: map[string]bool{},
	}
}

// Normalize replaces nil maps with empty ones, e.g. after decoding partial JSON.
func (s AppState) Normalize() AppState {
	if s.Days == nil {
		s.Days = map[string]DayRecord{}
	}
	if s.WeekPlans == nil {
		s.WeekPlans = map[string]WeekPlan{}
	}
	if s.FastPlans == nil {
		s.FastPlans = map[string]FastPlan{}
	}
	if s.ConfirmedWeeks == nil {
		s.ConfirmedWeeks = map[string]bool{}
	}
	if s.ConfirmedMonths == nil {
		s.ConfirmedMonths = map[string]bool{}
	}
	return s
}

// Day returns the record for date, or the default unanswered record when none exists.
func (s AppState) Day(date string) DayRecord {
	if d, ok := s.Days[date]; ok {
		d.Date = date
		return d
	}
	return NewDayRecord(date)
}

// HasDay reports whether a record was ever written for date.
func (s AppState) HasDay(date string) bool {
	_, ok := s.Days[date]
	return ok
}

// RecordedDates returns every recorded date in ascending order.
func (s AppState) RecordedDates() []string {
	return slices.Sorted(maps.Keys(s.Days))
}

func (s AppState) WeekPlan(weekKey string) WeekPlan { return s.WeekPlans[weekKey] }

func (s AppState) FastPlan(monthKey string) FastPlan { return s.FastPlans[monthKey] }

func (s AppState) WeekConfirmed(weekKey string) bool { return s.ConfirmedWeeks[weekKey] }

func (s AppState) MonthConfirmed(monthKey string) bool { return s.ConfirmedMonths[monthKey] }

// WithDay returns a copy of s with rec stored under rec.Date.
func (s AppState) WithDay(rec DayRecord) AppState {
	s.Days = cloneWith(s.Days, rec.Date, rec)
	return s
}

// WithWeekPlan replaces the week's dates and clears its confirmation.
func (s AppState) WithWeekPlan(weekKey string, dates []string) AppState {
	s.WeekPlans = cloneWith(s.WeekPlans, weekKey, WeekPlan{Dates: append([]string{}, dates...)})
	s.ConfirmedWeeks = cloneWithout(s.ConfirmedWeeks, weekKey)
	return s
}

// WithFastPlan replaces the month's dates and clears its confirmation.
func (s AppState) WithFastPlan(monthKey string, dates []string) AppState {
	s.FastPlans = cloneWith(s.FastPlans, monthKey, FastPlan{Dates: append([]string{}, dates...)})
	s.ConfirmedMonths = cloneWithout(s.ConfirmedMonths, monthKey)
	return s
}

func (s AppState) WithWeekConfirmed(weekKey string) AppState {
	s.ConfirmedWeeks = cloneWith(s.ConfirmedWeeks, weekKey, true)
	return s
}

func (s AppState) WithMonthConfirmed(monthKey string) AppState {
	s.ConfirmedMonths = cloneWith(s.ConfirmedMonths, monthKey, true)
	return s
}

// WithWeekUnconfirmed clears the week's confirmation without touching its plan.
func (s AppState) WithWeekUnconfirmed(weekKey string) AppState {
	s.ConfirmedWeeks = cloneWithout(s.ConfirmedWeeks, weekKey)
	return s
}

// WithMonthUnconfirmed clears the month's confirmation without touching its plan.
func (s AppState) WithMonthUnconfirmed(monthKey string) AppState {
	s.ConfirmedMonths = cloneWithout(s.ConfirmedMonths, monthKey)
	return s
}

func cloneWith[V any](m map[string]V, key string, v V) map[string]V {
	out := make(map[string]V, len(m)+1)
	maps.Copy(out, m)
	out[key] = v
	return out
}

func cloneWithout[V any](m map[string]V, key string) map[string]V {
	out := make(map[string]V, len(m))
	maps.Copy(out, m)
	delete(out, key)
	return out
}
