// Package gate decides which blocking requirement, if any, must be satisfied
// before the regular daily view is shown.
package gate

import (
	"fmt"

	"github.com/julianstephens/tally/internal/evaluator"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/planner"
	"github.com/julianstephens/tally/internal/utils"
)

type Kind int

const (
	None Kind = iota
	MonthPlanRequired
	WeekPlanRequired
	PreviousDayRequired
)

func (k Kind) String() string {
	switch k {
	case MonthPlanRequired:
		return "MONTH_PLAN_REQUIRED"
	case WeekPlanRequired:
		return "WEEK_PLAN_REQUIRED"
	case PreviousDayRequired:
		return "PREVIOUS_DAY_REQUIRED"
	}
	return "NONE"
}

// Requirement is the single gate active for a given day. Key is the month key,
// week key or date the requirement refers to and is empty for None.
type Requirement struct {
	Kind Kind
	Key  string
}

func (r Requirement) Blocking() bool { return r.Kind != None }

// Message describes what the user has to do to clear the requirement.
func (r Requirement) Message() string {
	switch r.Kind {
	case MonthPlanRequired:
		return fmt.Sprintf("Plan and confirm the water fast for %s", r.Key)
	case WeekPlanRequired:
		return fmt.Sprintf("Plan and confirm lifting days for the week of %s", r.Key)
	case PreviousDayRequired:
		return fmt.Sprintf("Finish logging %s", r.Key)
	}
	return "All caught up"
}

// Evaluate returns the highest-priority requirement for today. The month plan
// must be complete and confirmed first, then the week plan, then yesterday's
// record must be complete. Yesterday is only checked when
// it falls on or after the tracking start.
func Evaluate(s models.AppState, today string) Requirement {
	month := utils.MonthKey(today)
	if !planner.IsMonthPlanComplete(s, month) || !planner.IsMonthPlanConfirmed(s, month) {
		return Requirement{Kind: MonthPlanRequired, Key: month}
	}

	week := utils.WeekKey(today)
	if !planner.IsWeekPlanComplete(s, week) || !planner.IsWeekPlanConfirmed(s, week) {
		return Requirement{Kind: WeekPlanRequired, Key: week}
	}

	yesterday := utils.AddDays(today, -1)
	if yesterday >= s.TrackingStart && !evaluator.IsDayComplete(s, yesterday) {
		return Requirement{Kind: PreviousDayRequired, Key: yesterday}
	}

	return Requirement{Kind: None}
}
