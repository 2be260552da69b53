package analytics

import (
	"math"
	"testing"

	"github.com/julianstephens/tally/internal/models"
)

func w(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func withWeights(s models.AppState, date string, morning, night *float64) models.AppState {
	return s.WithDay(s.Day(date).WithWeight(models.Morning, morning).WithWeight(models.Night, night))
}

func TestDailyAverage(t *testing.T) {
	tests := []struct {
		name    string
		morning *float64
		night   *float64
		want    float64
		wantOK  bool
	}{
		{name: "both present", morning: w(150.2), night: w(149.8), want: 150.0, wantOK: true},
		{name: "morning only", morning: w(150.2), want: 150.2, wantOK: true},
		{name: "night only", night: w(149.8), want: 149.8, wantOK: true},
		{name: "neither", wantOK: false},
		{name: "non-finite ignored", morning: w(math.NaN()), night: w(148), want: 148, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := models.NewDayRecord("2024-06-10")
			// Write the fields directly so non-finite values reach the average
			day.WeightMorning = tt.morning
			day.WeightNight = tt.night

			got, ok := DailyAverage(day)
			if ok != tt.wantOK {
				t.Fatalf("DailyAverage() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !approx(got, tt.want) {
				t.Errorf("DailyAverage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRollingAverage(t *testing.T) {
	s := models.NewAppState("2024-06-01")

	if _, ok := RollingAverage(s, "2024-06-10", 7); ok {
		t.Error("empty window should have no average")
	}

	s = withWeights(s, "2024-06-05", w(160), nil)
	if got, ok := RollingAverage(s, "2024-06-10", 7); !ok || !approx(got, 160) {
		t.Errorf("single data point = %v, %v; want 160", got, ok)
	}

	s = withWeights(s, "2024-06-10", w(150), w(152))
	// Day without weights inside the window must not pull the mean toward zero
	s = s.WithDay(s.Day("2024-06-08").WithField(models.FieldDietException, models.Yes))
	if got, ok := RollingAverage(s, "2024-06-10", 7); !ok || !approx(got, 155.5) {
		t.Errorf("two data points = %v, %v; want 155.5", got, ok)
	}

	// 2024-06-03 is outside the 7-day window ending 2024-06-10
	s = withWeights(s, "2024-06-03", w(200), nil)
	if got, _ := RollingAverage(s, "2024-06-10", 7); !approx(got, 155.5) {
		t.Errorf("window leaked an older day: got %v", got)
	}

	if _, ok := RollingAverage(s, "2024-06-10", 0); ok {
		t.Error("zero window should have no average")
	}
}

func TestWeightSeries(t *testing.T) {
	s := models.NewAppState("2024-06-01")
	s = withWeights(s, "2024-06-12", w(151), nil)
	s = withWeights(s, "2024-06-10", w(150), w(152))
	s = s.WithDay(s.Day("2024-06-11").WithMissedToggled(models.Morning))

	series := WeightSeries(s)
	if len(series) != 2 {
		t.Fatalf("WeightSeries() = %v, want 2 points", series)
	}
	if series[0].Date != "2024-06-10" || !approx(series[0].Value, 151) {
		t.Errorf("series[0] = %+v", series[0])
	}
	if series[1].Date != "2024-06-12" || !approx(series[1].Value, 151) {
		t.Errorf("series[1] = %+v", series[1])
	}
}

func TestRollingSeries(t *testing.T) {
	s := models.NewAppState("2024-06-01")
	s = withWeights(s, "2024-06-02", w(150), nil)
	s = withWeights(s, "2024-06-04", w(154), nil)

	series := RollingSeries(s, "2024-06-01", "2024-06-04", 2)
	// 06-01 has no data; 06-02 = 150; 06-03 = 150; 06-04 = 154
	if len(series) != 3 {
		t.Fatalf("RollingSeries() = %v", series)
	}
	if !approx(series[2].Value, 154) {
		t.Errorf("window of 2 ending 06-04 = %v, want 154", series[2].Value)
	}
}

func TestGoalSeries(t *testing.T) {
	s := models.NewAppState("2024-06-01").
		WithWeekPlan("2024-06-09", []string{"2024-06-10", "2024-06-12", "2024-06-14"}).
		WithFastPlan("2024-06", []string{"2024-06-11", "2024-06-12", "2024-06-13"})

	s = s.WithDay(s.Day("2024-06-10").
		WithField(models.FieldWeightLiftingDone, models.Yes).
		WithField(models.FieldDietException, models.Yes).
		WithWeight(models.Morning, w(150)).
		WithWeight(models.Night, w(151)))
	s = s.WithDay(s.Day("2024-06-11").
		WithField(models.FieldWaterFastDone, models.Yes).
		WithWeight(models.Morning, w(150)))
	s = s.WithDay(s.Day("2024-06-12").
		WithField(models.FieldWeightLiftingDone, models.No).
		WithField(models.FieldWaterFastDone, models.No))

	tests := []struct {
		metric Metric
		want   []Outcome // 06-10 .. 06-13
	}{
		{metric: MetricLifting, want: []Outcome{OutcomeMet, OutcomeNone, OutcomeUnmet, OutcomeNone}},
		{metric: MetricFast, want: []Outcome{OutcomeNone, OutcomeMet, OutcomeUnmet, OutcomeUnmet}},
		{metric: MetricWeightsLogged, want: []Outcome{OutcomeMet, OutcomeUnmet, OutcomeUnmet, OutcomeNone}},
		{metric: MetricDiet, want: []Outcome{OutcomeMet, OutcomeNone, OutcomeNone, OutcomeNone}},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			series := GoalSeries(s, tt.metric, "2024-06-10", "2024-06-13")
			if len(series) != len(tt.want) {
				t.Fatalf("GoalSeries() returned %d points", len(series))
			}
			for i, p := range series {
				if p.Outcome != tt.want[i] {
					t.Errorf("%s on %s = %v, want %v", tt.metric, p.Date, p.Outcome, tt.want[i])
				}
			}
		})
	}
}

func TestDietOutcomeNeedsDietAnswers(t *testing.T) {
	s := models.NewAppState("2024-06-01")
	s = s.WithDay(s.Day("2024-06-03").WithWeight(models.Morning, w(180)))
	s = s.WithDay(s.Day("2024-06-04").WithDiet(models.NonKetoFruit, models.Yes))
	s = s.WithDay(s.Day("2024-06-05").WithField(models.FieldMealPass, models.No))

	tests := []struct {
		date string
		want Outcome
	}{
		{"2024-06-03", OutcomeNone},
		{"2024-06-04", OutcomeUnmet},
		{"2024-06-05", OutcomeUnmet},
	}
	for _, tt := range tests {
		if got := GoalOutcome(s, MetricDiet, tt.date); got != tt.want {
			t.Errorf("GoalOutcome(diet, %s) = %v, want %v", tt.date, got, tt.want)
		}
	}
	if _, ok := GoalRate(GoalSeries(s, MetricDiet, "2024-06-03", "2024-06-03")); ok {
		t.Error("a weigh-in-only day should not count toward the diet rate")
	}
}

func TestOutcomeValue(t *testing.T) {
	if v, ok := OutcomeMet.Value(); !ok || v != 1 {
		t.Errorf("OutcomeMet.Value() = %v, %v", v, ok)
	}
	if v, ok := OutcomeUnmet.Value(); !ok || v != 0 {
		t.Errorf("OutcomeUnmet.Value() = %v, %v", v, ok)
	}
	if _, ok := OutcomeNone.Value(); ok {
		t.Error("OutcomeNone must have no value")
	}
}

func TestGoalRate(t *testing.T) {
	series := []GoalPoint{
		{Outcome: OutcomeMet},
		{Outcome: OutcomeNone},
		{Outcome: OutcomeUnmet},
		{Outcome: OutcomeMet},
	}
	if got, ok := GoalRate(series); !ok || !approx(got, 2.0/3.0) {
		t.Errorf("GoalRate() = %v, %v; want 2/3", got, ok)
	}
	if _, ok := GoalRate([]GoalPoint{{Outcome: OutcomeNone}}); ok {
		t.Error("GoalRate() with no relevant days should have no value")
	}
}

func TestParseMetric(t *testing.T) {
	for _, m := range Metrics {
		if got, err := ParseMetric(string(m)); err != nil || got != m {
			t.Errorf("ParseMetric(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseMetric("sleep"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
