// Package tracker exposes the user-facing operations: each mutation validates
// its input, derives the next snapshot and hands it to the state store.
package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/evaluator"
	"github.com/julianstephens/tally/internal/gate"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/planner"
	"github.com/julianstephens/tally/internal/state"
	"github.com/julianstephens/tally/internal/utils"
	"github.com/julianstephens/tally/internal/validation"
)

// ErrPlanIncomplete is returned when confirming a plan that does not yet have
// all of its dates.
var ErrPlanIncomplete = errors.New("plan is incomplete")

type Service struct {
	store *state.Store
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Service)

// WithClock overrides the wall clock used to derive today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store *state.Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{store: store, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date in the service's timezone.
func (s *Service) Today() string {
	return utils.DateOf(s.now().In(s.loc))
}

// State returns the current snapshot.
func (s *Service) State() models.AppState {
	return s.store.Get()
}

// Gate evaluates the blocking requirement for today.
func (s *Service) Gate() gate.Requirement {
	return gate.Evaluate(s.store.Get(), s.Today())
}

func (s *Service) MissingItems(date string) []evaluator.Item {
	return evaluator.MissingItems(s.store.Get(), date)
}

func (s *Service) PassConflict(date string, kind models.PassKind) (string, bool) {
	return validation.PassConflict(s.store.Get(), date, kind)
}

func (s *Service) updateDay(date string, fn func(models.DayRecord) models.DayRecord) error {
	if _, err := utils.ParseDate(date); err != nil {
		return err
	}
	cur := s.store.Get()
	return s.store.Replace(cur.WithDay(fn(cur.Day(date))))
}

// SetDietAnswer records the answer to one diet rule.
func (s *Service) SetDietAnswer(date string, rule models.DietRule, a models.Answer) error {
	if !rule.Valid() {
		return fmt.Errorf("unknown diet rule %d", rule)
	}
	logger.Debug("Set diet answer", "date", date, "rule", rule, "answer", a)
	return s.updateDay(date, func(d models.DayRecord) models.DayRecord {
		return d.WithDiet(rule, a)
	})
}

// SetDayAnswer records a day-level yes/no answer.
func (s *Service) SetDayAnswer(date string, field models.DayField, a models.Answer) error {
	if evaluator.FieldLabel(field) == "" {
		return fmt.Errorf("unknown day field %q", field)
	}
	logger.Debug("Set day answer", "date", date, "field", field, "answer", a)
	return s.updateDay(date, func(d models.DayRecord) models.DayRecord {
		return d.WithField(field, a)
	})
}

// ParseWeight reads a weight from user input. Empty, non-numeric, non-finite
// and non-positive input yields nil, meaning no value.
func ParseWeight(input string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || !models.IsFinite(v) || v <= 0 {
		return nil
	}
	return &v
}

// SetWeight sets or, with a nil value, clears the weight for slot. Either way
// the slot's missed flag is cleared.
func (s *Service) SetWeight(date string, slot models.WeightSlot, value *float64) error {
	return s.updateDay(date, func(d models.DayRecord) models.DayRecord {
		return d.WithWeight(slot, value)
	})
}

// SetWeightInput is SetWeight over raw user input.
func (s *Service) SetWeightInput(date string, slot models.WeightSlot, input string) error {
	return s.SetWeight(date, slot, ParseWeight(input))
}

// ToggleWeightMissed flips the missed flag for slot, clearing any value when set.
func (s *Service) ToggleWeightMissed(date string, slot models.WeightSlot) error {
	return s.updateDay(date, func(d models.DayRecord) models.DayRecord {
		return d.WithMissedToggled(slot)
	})
}

func (s *Service) apply(next models.AppState, err error) error {
	if err != nil {
		if errors.Is(err, planner.ErrSelectionRejected) {
			logger.Info("Plan selection rejected", "reason", err)
		}
		return err
	}
	return s.store.Replace(next)
}

// ReplaceWeekPlan sets the week's lifting days, clearing its confirmation.
func (s *Service) ReplaceWeekPlan(weekKey string, dates []string) error {
	return s.apply(planner.ReplaceWeekPlan(s.store.Get(), weekKey, dates))
}

// ReplaceFastPlan sets the month's fast days, clearing its confirmation.
func (s *Service) ReplaceFastPlan(monthKey string, dates []string) error {
	return s.apply(planner.ReplaceFastPlan(s.store.Get(), monthKey, dates))
}

// ReplaceFastPlanFrom plans the full fast starting at start in start's month.
func (s *Service) ReplaceFastPlanFrom(start string) error {
	if _, err := utils.ParseDate(start); err != nil {
		return err
	}
	return s.ReplaceFastPlan(utils.MonthKey(start), planner.FastRun(start))
}

// ConfirmWeekPlan confirms a complete week plan.
func (s *Service) ConfirmWeekPlan(weekKey string) error {
	cur := s.store.Get()
	if !planner.IsWeekPlanComplete(cur, weekKey) {
		return fmt.Errorf("%w: week of %s has %d of %d lifting days", ErrPlanIncomplete, weekKey, cur.WeekPlan(weekKey).Size(), constants.LiftingDaysPerWeek)
	}
	return s.store.Replace(planner.ConfirmWeekPlan(cur, weekKey))
}

// ConfirmMonthPlan confirms a complete fast plan.
func (s *Service) ConfirmMonthPlan(monthKey string) error {
	cur := s.store.Get()
	if !planner.IsMonthPlanComplete(cur, monthKey) {
		return fmt.Errorf("%w: %s has %d of %d fast days", ErrPlanIncomplete, monthKey, cur.FastPlan(monthKey).Size(), constants.FastRunDays)
	}
	return s.store.Replace(planner.ConfirmMonthPlan(cur, monthKey))
}

// Import replaces the whole state, for example from an export file.
func (s *Service) Import(next models.AppState) error {
	if !utils.IsDate(next.TrackingStart) {
		return fmt.Errorf("%w: imported trackingStart %q", utils.ErrInvalidDate, next.TrackingStart)
	}
	return s.store.Replace(next)
}

// Repair applies the automatic fixes for the state's current conflicts.
func (s *Service) Repair() ([]validation.FixAction, error) {
	cur := s.store.Get()
	result := validation.Validate(cur)
	next, fixes := validation.AutoFix(cur, result.Conflicts)
	if len(fixes) == 0 {
		return nil, nil
	}
	if err := s.store.Replace(next); err != nil {
		return nil, err
	}
	return fixes, nil
}
