package tracker

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/gate"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/planner"
	"github.com/julianstephens/tally/internal/state"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/utils"
)

func setupService(t *testing.T, today string) (*Service, *storage.JSONStore) {
	t.Helper()
	p := storage.NewJSONStore(filepath.Join(t.TempDir(), "tally.json"))
	if err := p.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	st, _, err := state.Load(p, today)
	if err != nil {
		t.Fatalf("state.Load() failed: %v", err)
	}
	now, err := time.ParseInLocation("2006-01-02 15:04", today+" 09:30", time.UTC)
	if err != nil {
		t.Fatalf("bad test date: %v", err)
	}
	return New(st, time.UTC, WithClock(func() time.Time { return now })), p
}

func reload(t *testing.T, p storage.Provider) models.AppState {
	t.Helper()
	st, recovery, err := state.Load(p, "2000-01-01")
	if err != nil {
		t.Fatalf("state.Load() failed: %v", err)
	}
	if recovery != state.RecoveryNone {
		t.Fatalf("reload recovery = %q, want none", recovery)
	}
	return st.Get()
}

func TestToday(t *testing.T) {
	p := storage.NewJSONStore(filepath.Join(t.TempDir(), "tally.json"))
	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	st, _, err := state.Load(p, "2024-06-01")
	if err != nil {
		t.Fatal(err)
	}
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 20:00 UTC on the 11th is already the 12th in Tokyo
	now := time.Date(2024, 6, 11, 20, 0, 0, 0, time.UTC)
	svc := New(st, tokyo, WithClock(func() time.Time { return now }))
	if got := svc.Today(); got != "2024-06-12" {
		t.Errorf("Today() = %s, want 2024-06-12", got)
	}
}

func TestSetDayAnswerPersists(t *testing.T) {
	svc, p := setupService(t, "2024-06-12")

	if err := svc.SetDayAnswer("2024-06-11", models.FieldDessertPass, models.Yes); err != nil {
		t.Fatalf("SetDayAnswer() failed: %v", err)
	}
	if err := svc.SetDietAnswer("2024-06-11", models.DietRules[0], models.No); err != nil {
		t.Fatalf("SetDietAnswer() failed: %v", err)
	}

	got := reload(t, p).Day("2024-06-11")
	if !got.DessertPass.IsYes() {
		t.Errorf("dessertPass = %v, want yes", got.DessertPass)
	}
	if !got.Diet.Get(models.DietRules[0]).IsNo() {
		t.Errorf("diet[%s] = %v, want no", models.DietRules[0], got.Diet.Get(models.DietRules[0]))
	}
}

func TestDayMutationsRejectBadInput(t *testing.T) {
	svc, _ := setupService(t, "2024-06-12")
	before := svc.State()

	if err := svc.SetDayAnswer("2024-13-40", models.FieldMealPass, models.Yes); !errors.Is(err, utils.ErrInvalidDate) {
		t.Errorf("SetDayAnswer(bad date) error = %v, want ErrInvalidDate", err)
	}
	if err := svc.SetDayAnswer("2024-06-11", models.DayField("bogus"), models.Yes); err == nil {
		t.Error("SetDayAnswer(unknown field) should fail")
	}
	if err := svc.SetDietAnswer("2024-06-11", models.DietRule(99), models.Yes); err == nil {
		t.Error("SetDietAnswer(unknown rule) should fail")
	}
	if len(svc.State().Days) != len(before.Days) {
		t.Error("rejected mutations should leave state unchanged")
	}
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"180.5", 180.5, true},
		{"  172 ", 172, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
		{"0", 0, false},
		{"-150", 0, false},
		{"0.1", 0.1, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseWeight(tt.input)
			if (got != nil) != tt.ok {
				t.Fatalf("ParseWeight(%q) = %v, want ok=%v", tt.input, got, tt.ok)
			}
			if tt.ok && *got != tt.want {
				t.Errorf("ParseWeight(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestWeightInputAndMissed(t *testing.T) {
	svc, p := setupService(t, "2024-06-12")
	date := "2024-06-11"

	if err := svc.SetWeightInput(date, models.Morning, "181.2"); err != nil {
		t.Fatalf("SetWeightInput() failed: %v", err)
	}
	if v, ok := svc.State().Day(date).Weight(models.Morning); !ok || v != 181.2 {
		t.Errorf("morning weight = %v, %v; want 181.2, true", v, ok)
	}

	if err := svc.ToggleWeightMissed(date, models.Morning); err != nil {
		t.Fatalf("ToggleWeightMissed() failed: %v", err)
	}
	day := reload(t, p).Day(date)
	if _, ok := day.Weight(models.Morning); ok {
		t.Error("marking missed should clear the weight")
	}
	if !day.Missed(models.Morning) {
		t.Error("morning should be missed")
	}

	if err := svc.SetWeightInput(date, models.Morning, "not a number"); err != nil {
		t.Fatalf("SetWeightInput() failed: %v", err)
	}
	day = svc.State().Day(date)
	if day.Missed(models.Morning) {
		t.Error("setting a weight should clear the missed flag")
	}
	if _, ok := day.Weight(models.Morning); ok {
		t.Error("unparsable input should leave no weight")
	}
}

func TestWeekPlanFlow(t *testing.T) {
	svc, p := setupService(t, "2024-06-12")
	week := "2024-06-09"

	if err := svc.ReplaceWeekPlan(week, []string{"2024-06-10", "2024-06-12"}); err != nil {
		t.Fatalf("ReplaceWeekPlan() failed: %v", err)
	}
	if err := svc.ConfirmWeekPlan(week); !errors.Is(err, ErrPlanIncomplete) {
		t.Fatalf("ConfirmWeekPlan(partial) error = %v, want ErrPlanIncomplete", err)
	}
	if svc.State().WeekConfirmed(week) {
		t.Fatal("partial plan should not be confirmed")
	}

	if err := svc.ReplaceWeekPlan(week, []string{"2024-06-10", "2024-06-12", "2024-06-14"}); err != nil {
		t.Fatalf("ReplaceWeekPlan() failed: %v", err)
	}
	if err := svc.ConfirmWeekPlan(week); err != nil {
		t.Fatalf("ConfirmWeekPlan() failed: %v", err)
	}
	if !reload(t, p).WeekConfirmed(week) {
		t.Error("confirmation should persist")
	}

	// replacing a confirmed plan clears confirmation
	if err := svc.ReplaceWeekPlan(week, []string{"2024-06-11", "2024-06-12", "2024-06-14"}); err != nil {
		t.Fatalf("ReplaceWeekPlan() failed: %v", err)
	}
	if svc.State().WeekConfirmed(week) {
		t.Error("replacing the plan should clear confirmation")
	}
}

func TestReplaceWeekPlanRejected(t *testing.T) {
	svc, _ := setupService(t, "2024-06-12")
	week := "2024-06-09"
	if err := svc.ReplaceWeekPlan(week, []string{"2024-06-10", "2024-06-12", "2024-06-14"}); err != nil {
		t.Fatal(err)
	}

	err := svc.ReplaceWeekPlan(week, []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13"})
	if !errors.Is(err, planner.ErrSelectionRejected) {
		t.Fatalf("ReplaceWeekPlan(4 dates) error = %v, want ErrSelectionRejected", err)
	}
	if got := svc.State().WeekPlan(week).Dates; len(got) != 3 || got[0] != "2024-06-10" {
		t.Errorf("rejected replace changed plan to %v", got)
	}
}

func TestFastPlanFlow(t *testing.T) {
	svc, _ := setupService(t, "2024-06-12")

	if err := svc.ReplaceFastPlanFrom("2024-06-29"); !errors.Is(err, planner.ErrSelectionRejected) {
		t.Errorf("ReplaceFastPlanFrom(crossing month) error = %v, want ErrSelectionRejected", err)
	}
	if err := svc.ReplaceFastPlanFrom("06/20/2024"); !errors.Is(err, utils.ErrInvalidDate) {
		t.Errorf("ReplaceFastPlanFrom(bad date) error = %v, want ErrInvalidDate", err)
	}
	if err := svc.ConfirmMonthPlan("2024-06"); !errors.Is(err, ErrPlanIncomplete) {
		t.Errorf("ConfirmMonthPlan(empty) error = %v, want ErrPlanIncomplete", err)
	}

	if err := svc.ReplaceFastPlanFrom("2024-06-20"); err != nil {
		t.Fatalf("ReplaceFastPlanFrom() failed: %v", err)
	}
	want := []string{"2024-06-20", "2024-06-21", "2024-06-22"}
	got := svc.State().FastPlan("2024-06").Dates
	if len(got) != len(want) {
		t.Fatalf("fast plan = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fast plan[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if err := svc.ConfirmMonthPlan("2024-06"); err != nil {
		t.Fatalf("ConfirmMonthPlan() failed: %v", err)
	}
}

func TestGateFollowsMutations(t *testing.T) {
	svc, _ := setupService(t, "2024-06-12")

	if got := svc.Gate(); got.Kind != gate.MonthPlanRequired {
		t.Fatalf("Gate() = %v, want MONTH_PLAN_REQUIRED", got.Kind)
	}
	mustDo(t, svc.ReplaceFastPlanFrom("2024-06-20"))
	mustDo(t, svc.ConfirmMonthPlan("2024-06"))
	if got := svc.Gate(); got.Kind != gate.WeekPlanRequired {
		t.Fatalf("Gate() = %v, want WEEK_PLAN_REQUIRED", got.Kind)
	}
	mustDo(t, svc.ReplaceWeekPlan("2024-06-09", []string{"2024-06-10", "2024-06-12", "2024-06-14"}))
	mustDo(t, svc.ConfirmWeekPlan("2024-06-09"))

	// tracking started today, so yesterday is not required
	if got := svc.Gate(); got.Kind != gate.None {
		t.Errorf("Gate() = %v, want NONE", got.Kind)
	}
}

func TestPassConflictAndRepair(t *testing.T) {
	svc, _ := setupService(t, "2024-06-12")

	mustDo(t, svc.SetDayAnswer("2024-06-10", models.FieldMealPass, models.Yes))
	if other, ok := svc.PassConflict("2024-06-12", models.MealPass); !ok || other != "2024-06-10" {
		t.Errorf("PassConflict() = %q, %v; want 2024-06-10, true", other, ok)
	}
	if _, ok := svc.PassConflict("2024-06-12", models.DessertPass); ok {
		t.Error("dessert pass should not conflict")
	}

	fixes, err := svc.Repair()
	if err != nil {
		t.Fatalf("Repair() failed: %v", err)
	}
	if len(fixes) != 0 {
		t.Errorf("Repair() on consistent state = %v, want no fixes", fixes)
	}
}

func TestImport(t *testing.T) {
	svc, p := setupService(t, "2024-06-12")

	if err := svc.Import(models.AppState{TrackingStart: "soon"}); !errors.Is(err, utils.ErrInvalidDate) {
		t.Errorf("Import(bad trackingStart) error = %v, want ErrInvalidDate", err)
	}

	next := models.NewAppState("2024-01-01").WithFastPlan("2024-01", []string{"2024-01-05"})
	if err := svc.Import(next); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	got := reload(t, p)
	if got.TrackingStart != "2024-01-01" || got.FastPlan("2024-01").Size() != 1 {
		t.Errorf("imported state = %+v", got)
	}
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
