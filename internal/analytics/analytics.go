// Package analytics derives weight trends and goal-achievement series for charting.
package analytics

import (
	"fmt"

	"github.com/julianstephens/tally/internal/evaluator"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// Metric selects which goal an achievement series tracks.
type Metric string

const (
	MetricDiet          Metric = "diet"
	MetricWeightsLogged Metric = "weights"
	MetricLifting       Metric = "lifting"
	MetricFast          Metric = "fast"
)

// Metrics lists every supported metric.
var Metrics = []Metric{MetricDiet, MetricWeightsLogged, MetricLifting, MetricFast}

func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q (expected diet, weights, lifting or fast)", s)
}

// Outcome is one day's goal result. OutcomeNone means the goal did not apply
// or there was no data, which is different from an unmet goal.
type Outcome int8

const (
	OutcomeNone Outcome = iota
	OutcomeUnmet
	OutcomeMet
)

// Value returns 1 for met, 0 for unmet, and false when there is no value.
func (o Outcome) Value() (float64, bool) {
	switch o {
	case OutcomeMet:
		return 1, true
	case OutcomeUnmet:
		return 0, true
	}
	return 0, false
}

func (o Outcome) String() string {
	switch o {
	case OutcomeMet:
		return "met"
	case OutcomeUnmet:
		return "unmet"
	}
	return "none"
}

// Point is one value of a date-indexed series.
type Point struct {
	Date  string
	Value float64
}

// GoalPoint is one day of an achievement series.
type GoalPoint struct {
	Date    string
	Outcome Outcome
}

// DailyAverage averages the finite morning and night weights. With one finite
// weight that weight is returned; with none there is no average.
func DailyAverage(day models.DayRecord) (float64, bool) {
	m, okM := day.Weight(models.Morning)
	n, okN := day.Weight(models.Night)
	switch {
	case okM && okN:
		return (m + n) / 2, true
	case okM:
		return m, true
	case okN:
		return n, true
	}
	return 0, false
}

// RollingAverage averages the daily averages of the window days ending on date,
// skipping days without data. There is no value when the window has no data.
func RollingAverage(s models.AppState, date string, window int) (float64, bool) {
	if window < 1 || !utils.IsDate(date) {
		return 0, false
	}
	sum, n := 0.0, 0
	for i := 0; i < window; i++ {
		d := utils.AddDays(date, -i)
		if !s.HasDay(d) {
			continue
		}
		if v, ok := DailyAverage(s.Day(d)); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// WeightSeries returns the daily average of every recorded day that has one,
// in ascending date order.
func WeightSeries(s models.AppState) []Point {
	var series []Point
	for _, date := range s.RecordedDates() {
		if v, ok := DailyAverage(s.Day(date)); ok {
			series = append(series, Point{Date: date, Value: v})
		}
	}
	return series
}

// RollingSeries returns the rolling average for each date in [from, to] that has one.
func RollingSeries(s models.AppState, from, to string, window int) []Point {
	var series []Point
	for _, date := range utils.DateRange(from, to) {
		if v, ok := RollingAverage(s, date, window); ok {
			series = append(series, Point{Date: date, Value: v})
		}
	}
	return series
}

// GoalSeries returns one outcome per date in [from, to] for metric.
func GoalSeries(s models.AppState, metric Metric, from, to string) []GoalPoint {
	dates := utils.DateRange(from, to)
	series := make([]GoalPoint, 0, len(dates))
	for _, date := range dates {
		series = append(series, GoalPoint{Date: date, Outcome: GoalOutcome(s, metric, date)})
	}
	return series
}

// GoalOutcome evaluates metric for a single date.
func GoalOutcome(s models.AppState, metric Metric, date string) Outcome {
	day := s.Day(date)
	switch metric {
	case MetricDiet:
		if !s.HasDay(date) || !dietAnswered(day) {
			return OutcomeNone
		}
		return outcomeOf(evaluator.DietRequirementSatisfied(day))
	case MetricWeightsLogged:
		if !s.HasDay(date) {
			return OutcomeNone
		}
		_, okM := day.Weight(models.Morning)
		_, okN := day.Weight(models.Night)
		return outcomeOf(okM && okN)
	case MetricLifting:
		if !evaluator.IsLiftingDay(s, date) {
			return OutcomeNone
		}
		return outcomeOf(day.WeightLiftingDone.IsYes())
	case MetricFast:
		if !evaluator.IsFastDay(s, date) {
			return OutcomeNone
		}
		return outcomeOf(day.WaterFastDone.IsYes())
	}
	return OutcomeNone
}

// GoalRate returns the share of met days among days the goal applied to.
func GoalRate(series []GoalPoint) (float64, bool) {
	met, relevant := 0, 0
	for _, p := range series {
		switch p.Outcome {
		case OutcomeMet:
			met++
			relevant++
		case OutcomeUnmet:
			relevant++
		}
	}
	if relevant == 0 {
		return 0, false
	}
	return float64(met) / float64(relevant), true
}

// dietAnswered reports whether any diet-related question was answered. A day
// recorded only for weights or plans has no diet outcome.
func dietAnswered(day models.DayRecord) bool {
	return day.DietException.Answered() ||
		day.DessertPass.Answered() ||
		day.MealPass.Answered() ||
		day.Diet.AnyAnswered()
}

func outcomeOf(met bool) Outcome {
	if met {
		return OutcomeMet
	}
	return OutcomeUnmet
}
