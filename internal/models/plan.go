package models

import "slices"

// WeekPlan holds the lifting days chosen for one Sunday-anchored week.
type WeekPlan struct {
	Dates []string `json:"dates"`
}

// FastPlan holds the contiguous three-day water fast chosen for one month.
type FastPlan struct {
	Dates []string `json:"dates"`
}

// Contains reports whether date is a planned lifting day.
func (p WeekPlan) Contains(date string) bool { return slices.Contains(p.Dates, date) }

func (p WeekPlan) Size() int { return len(p.Dates) }

// Contains reports whether date falls in the planned fast window.
func (p FastPlan) Contains(date string) bool { return slices.Contains(p.Dates, date) }

func (p FastPlan) Size() int { return len(p.Dates) }
