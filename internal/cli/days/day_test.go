package days

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/tally/internal/cli/clitest"
	"github.com/julianstephens/tally/internal/evaluator"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

func TestDaySetAndShow(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.json")

	if err := (&DaySetCmd{Field: "exception", Answer: "yes", Date: "2024-06-11"}).Run(ctx); err != nil {
		t.Fatalf("day set failed: %v", err)
	}
	if err := (&DayWeightCmd{Slot: "morning", Value: "181.4", Date: "2024-06-11"}).Run(ctx); err != nil {
		t.Fatalf("day weight failed: %v", err)
	}
	if err := (&DayMissedCmd{Slot: "night", Date: "2024-06-11"}).Run(ctx); err != nil {
		t.Fatalf("day missed failed: %v", err)
	}

	out.Reset()
	if err := (&DayShowCmd{Date: "2024-06-11"}).Run(ctx); err != nil {
		t.Fatalf("day show failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"2024-06-11 (Tuesday)", "181.4", "missed", "Day complete"} {
		if !strings.Contains(got, want) {
			t.Errorf("day show output missing %q:\n%s", want, got)
		}
	}
	// an exception day hides the diet rules
	if strings.Contains(got, models.NonKetoFruit.Label()) {
		t.Errorf("day show should hide diet rules on an exception day:\n%s", got)
	}
}

func TestDayShowListsMissing(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.json")

	if err := (&DayShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("day show failed: %v", err)
	}
	if !strings.Contains(out.String(), "2024-06-12") {
		t.Errorf("day show should default to today:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "10 left") {
		t.Errorf("fresh day should have 10 outstanding items:\n%s", out.String())
	}
}

func TestDayDiet(t *testing.T) {
	ctx, _ := clitest.NewContext(t, "2024-06-12", "tally.json")

	if err := (&DayDietCmd{Rule: "processed-food", Answer: "no"}).Run(ctx); err != nil {
		t.Fatalf("day diet failed: %v", err)
	}
	svc, _ := ctx.Service()
	if got := svc.State().Day("2024-06-12").Diet.Get(models.ProcessedFood); !got.IsNo() {
		t.Errorf("processedFood = %v, want no", got)
	}

	if err := (&DayDietCmd{Rule: "candy", Answer: "no"}).Run(ctx); err == nil {
		t.Error("unknown rule should fail")
	}
	if err := (&DayDietCmd{Rule: "processed-food", Answer: "maybe"}).Run(ctx); err == nil {
		t.Error("invalid answer should fail")
	}
}

func TestDaySetWarnsOnPassReuse(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.json")

	if err := (&DaySetCmd{Field: "meal-pass", Answer: "yes", Date: "2024-06-10"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&DaySetCmd{Field: "meal-pass", Answer: "yes"}).Run(ctx); err != nil {
		t.Fatalf("second pass use should be recorded: %v", err)
	}
	if !strings.Contains(out.String(), "already used this week on 2024-06-10") {
		t.Errorf("expected pass warning, got:\n%s", out.String())
	}
}

func TestDayCommandsRejectBadDate(t *testing.T) {
	ctx, _ := clitest.NewContext(t, "2024-06-12", "tally.json")

	err := (&DaySetCmd{Field: "lifting", Answer: "yes", Date: "June 1"}).Run(ctx)
	if !errors.Is(err, utils.ErrInvalidDate) {
		t.Errorf("error = %v, want ErrInvalidDate", err)
	}
	if err := (&DaySetCmd{Field: "sleep", Answer: "yes"}).Run(ctx); err == nil {
		t.Error("unknown field should fail")
	}
}

func TestDayWeightClears(t *testing.T) {
	ctx, out := clitest.NewContext(t, "2024-06-12", "tally.json")

	if err := (&DayWeightCmd{Slot: "night", Value: "175"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&DayWeightCmd{Slot: "night", Value: ""}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	svc, _ := ctx.Service()
	if _, ok := svc.State().Day("2024-06-12").Weight(models.Night); ok {
		t.Error("empty value should clear the weight")
	}
	if !strings.Contains(out.String(), "Cleared night weight") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	for _, v := range []string{"175", "-150"} {
		if err := (&DayWeightCmd{Slot: "night", Value: v}).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := svc.State().Day("2024-06-12").Weight(models.Night); ok {
		t.Error("a negative weight should clear the slot, not be stored")
	}
}

func TestAnswersApply(t *testing.T) {
	ctx, _ := clitest.NewContext(t, "2024-06-12", "tally.json")
	svc, err := ctx.Service()
	if err != nil {
		t.Fatal(err)
	}
	date := "2024-06-12"

	items := svc.MissingItems(date)
	answers := NewAnswers(items)
	for i, item := range items {
		switch {
		case item.Slot == models.Morning:
			answers.Values[i] = "180.2"
		case item.Slot == models.Night:
			answers.Values[i] = choiceMissed
		case item.Field == models.FieldMealPass:
			answers.Values[i] = choiceSkip
		default:
			answers.Values[i] = choiceNo
		}
	}

	applied, err := answers.Apply(svc, date)
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if applied != len(items)-1 {
		t.Errorf("applied = %d, want %d", applied, len(items)-1)
	}

	left := svc.MissingItems(date)
	if len(left) != 1 || left[0].Field != models.FieldMealPass {
		t.Errorf("MissingItems() after apply = %v, want only the meal pass", left)
	}
	day := svc.State().Day(date)
	if v, ok := day.Weight(models.Morning); !ok || v != 180.2 {
		t.Errorf("morning = %v, %v; want 180.2", v, ok)
	}
	if !day.Missed(models.Night) {
		t.Error("night should be missed")
	}
}

func TestAnswersApplyDropsDietOnException(t *testing.T) {
	ctx, _ := clitest.NewContext(t, "2024-06-12", "tally.json")
	svc, err := ctx.Service()
	if err != nil {
		t.Fatal(err)
	}
	date := "2024-06-12"

	items := svc.MissingItems(date)
	answers := NewAnswers(items)
	for i, item := range items {
		switch {
		case item.Field == models.FieldDietException:
			answers.Values[i] = choiceYes
		case item.Slot != "":
			answers.Values[i] = choiceSkip
		case item.Field == models.FieldDessertPass || item.Field == models.FieldMealPass:
			answers.Values[i] = choiceYes
		default:
			answers.Values[i] = choiceNo
		}
	}
	if !answers.exceptionChosen() {
		t.Fatal("exceptionChosen() = false with the exception answered yes")
	}

	if _, err := answers.Apply(svc, date); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	day := svc.State().Day(date)
	if !day.DietException.IsYes() {
		t.Error("exception answer was not saved")
	}
	if day.Diet.AnyAnswered() || day.DessertPass.Answered() || day.MealPass.Answered() {
		t.Errorf("diet answers were saved on an exception day: %+v", day)
	}
}

func TestDependsOnException(t *testing.T) {
	rule := models.ProcessedFood
	tests := []struct {
		item evaluator.Item
		want bool
	}{
		{evaluator.Item{Rule: &rule}, true},
		{evaluator.Item{Field: models.FieldDessertPass}, true},
		{evaluator.Item{Field: models.FieldMealPass}, true},
		{evaluator.Item{Field: models.FieldDietException}, false},
		{evaluator.Item{Field: models.FieldWeightLiftingDone}, false},
		{evaluator.Item{Slot: models.Night}, false},
	}
	for _, tt := range tests {
		if got := dependsOnException(tt.item); got != tt.want {
			t.Errorf("dependsOnException(%s) = %v, want %v", tt.item, got, tt.want)
		}
	}
}

func TestAnswersFormBuilds(t *testing.T) {
	rule := models.RefinedCarbs
	answers := NewAnswers([]evaluator.Item{
		{Field: models.FieldDietException},
		{Rule: &rule},
		{Slot: models.Morning},
	})
	if form := answers.Form("2024-06-12"); form == nil {
		t.Fatal("Form() returned nil")
	}
}
