package days

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tally/internal/analytics"
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/evaluator"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/tracker"
	"github.com/julianstephens/tally/internal/utils"
)

// fieldNames maps command-line field names to day-level questions.
var fieldNames = map[string]models.DayField{
	"exception":    models.FieldDietException,
	"dessert-pass": models.FieldDessertPass,
	"meal-pass":    models.FieldMealPass,
	"lifting":      models.FieldWeightLiftingDone,
	"fast":         models.FieldWaterFastDone,
}

func parseField(name string) (models.DayField, error) {
	if f, ok := fieldNames[strings.ToLower(name)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown field %q (expected exception, dessert-pass, meal-pass, lifting or fast)", name)
}

type DayCmd struct {
	Show   DayShowCmd   `cmd:"" help:"Show a day's answers and what is left." default:"1"`
	Diet   DayDietCmd   `cmd:"" help:"Answer a diet rule."`
	Set    DaySetCmd    `cmd:"" help:"Answer a day-level question."`
	Weight DayWeightCmd `cmd:"" help:"Record a weigh-in."`
	Missed DayMissedCmd `cmd:"" help:"Toggle a missed weigh-in."`
	Edit   DayEditCmd   `cmd:"" help:"Answer the outstanding questions interactively."`
}

type DayShowCmd struct {
	Date string `help:"Date to show (YYYY-MM-DD). Defaults to today." short:"d"`
}

func (c *DayShowCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	date, err := cli.ResolveDate(svc, c.Date)
	if err != nil {
		return err
	}
	ctx.Println(FormatDay(svc.State(), date, ctx.Config.RollingWindow))
	return nil
}

// FormatDay renders a day's answers followed by its completion status.
func FormatDay(s models.AppState, date string, window int) string {
	var b strings.Builder
	day := s.Day(date)

	title := date
	if t, err := utils.ParseDate(date); err == nil {
		title = fmt.Sprintf("%s (%s)", date, t.Weekday())
	}
	var tags []string
	if evaluator.IsLiftingDay(s, date) {
		tags = append(tags, "lifting day")
	}
	if evaluator.IsFastDay(s, date) {
		tags = append(tags, "fast day")
	}
	if len(tags) > 0 {
		title += "  " + cli.Muted("["+strings.Join(tags, ", ")+"]")
	}
	fmt.Fprintln(&b, cli.Heading(title))

	row := func(label, value string) {
		fmt.Fprintf(&b, "  %-26s %s\n", label, value)
	}

	row(evaluator.FieldLabel(models.FieldDietException), day.DietException.String())
	if !day.DietException.IsYes() {
		for _, r := range models.DietRules {
			row(r.Label(), day.Diet.Get(r).String())
		}
		row(evaluator.FieldLabel(models.FieldDessertPass), day.DessertPass.String())
		row(evaluator.FieldLabel(models.FieldMealPass), day.MealPass.String())
	}
	for _, slot := range []models.WeightSlot{models.Morning, models.Night} {
		row(string(slot)+" weight", formatWeight(day, slot))
	}
	if avg, ok := analytics.DailyAverage(day); ok {
		row("Daily average", fmt.Sprintf("%.1f", avg))
	}
	if avg, ok := analytics.RollingAverage(s, date, window); ok {
		row(fmt.Sprintf("%d-day average", window), fmt.Sprintf("%.1f", avg))
	}
	if evaluator.IsLiftingDay(s, date) {
		row(evaluator.FieldLabel(models.FieldWeightLiftingDone), day.WeightLiftingDone.String())
	}
	if evaluator.IsFastDay(s, date) {
		row(evaluator.FieldLabel(models.FieldWaterFastDone), day.WaterFastDone.String())
	}

	fmt.Fprintln(&b)
	missing := evaluator.MissingItems(s, date)
	if len(missing) == 0 {
		b.WriteString(cli.Success("Day complete"))
		return b.String()
	}
	labels := make([]string, len(missing))
	for i, item := range missing {
		labels[i] = item.String()
	}
	b.WriteString(cli.Warning(fmt.Sprintf("%d left: %s", len(missing), strings.Join(labels, ", "))))
	return b.String()
}

func formatWeight(day models.DayRecord, slot models.WeightSlot) string {
	if v, ok := day.Weight(slot); ok {
		return fmt.Sprintf("%.1f", v)
	}
	if day.Missed(slot) {
		return "missed"
	}
	return "unanswered"
}

type DayDietCmd struct {
	Rule   string `arg:"" help:"Diet rule, e.g. non-keto-fruit or processed-food."`
	Answer string `arg:"" help:"yes, no or clear."`
	Date   string `help:"Date (YYYY-MM-DD). Defaults to today." short:"d"`
}

func (c *DayDietCmd) Run(ctx *cli.Context) error {
	rule, err := models.ParseDietRule(c.Rule)
	if err != nil {
		return err
	}
	answer, err := models.ParseAnswer(c.Answer)
	if err != nil {
		return err
	}
	svc, date, err := serviceAndDate(ctx, c.Date)
	if err != nil {
		return err
	}
	if err := svc.SetDietAnswer(date, rule, answer); err != nil {
		return err
	}
	ctx.Println(cli.Success(fmt.Sprintf("%s: %s on %s", rule.Label(), answer, date)))
	return nil
}

type DaySetCmd struct {
	Field  string `arg:"" help:"exception, dessert-pass, meal-pass, lifting or fast."`
	Answer string `arg:"" help:"yes, no or clear."`
	Date   string `help:"Date (YYYY-MM-DD). Defaults to today." short:"d"`
}

func (c *DaySetCmd) Run(ctx *cli.Context) error {
	field, err := parseField(c.Field)
	if err != nil {
		return err
	}
	answer, err := models.ParseAnswer(c.Answer)
	if err != nil {
		return err
	}
	svc, date, err := serviceAndDate(ctx, c.Date)
	if err != nil {
		return err
	}

	if answer.IsYes() && (field == models.DessertPass || field == models.MealPass) {
		if other, conflict := svc.PassConflict(date, field); conflict {
			ctx.Println(cli.Warning(fmt.Sprintf("%s was already used this week on %s", passName(field), other)))
		}
	}
	if err := svc.SetDayAnswer(date, field, answer); err != nil {
		return err
	}
	ctx.Println(cli.Success(fmt.Sprintf("%s: %s on %s", evaluator.FieldLabel(field), answer, date)))
	return nil
}

func passName(kind models.PassKind) string {
	if kind == models.DessertPass {
		return "The dessert pass"
	}
	return "The meal pass"
}

type DayWeightCmd struct {
	Slot  string `arg:"" enum:"morning,night" help:"morning or night."`
	Value string `arg:"" optional:"" help:"Weight. Empty, non-numeric or non-positive input clears it."`
	Date  string `help:"Date (YYYY-MM-DD). Defaults to today." short:"d"`
}

func (c *DayWeightCmd) Run(ctx *cli.Context) error {
	slot, err := models.ParseWeightSlot(c.Slot)
	if err != nil {
		return err
	}
	svc, date, err := serviceAndDate(ctx, c.Date)
	if err != nil {
		return err
	}
	value := tracker.ParseWeight(c.Value)
	if err := svc.SetWeight(date, slot, value); err != nil {
		return err
	}
	if value == nil {
		ctx.Println(cli.Success(fmt.Sprintf("Cleared %s weight on %s", slot, date)))
		return nil
	}
	ctx.Println(cli.Success(fmt.Sprintf("%s weight %.1f on %s", slot, *value, date)))
	return nil
}

type DayMissedCmd struct {
	Slot string `arg:"" enum:"morning,night" help:"morning or night."`
	Date string `help:"Date (YYYY-MM-DD). Defaults to today." short:"d"`
}

func (c *DayMissedCmd) Run(ctx *cli.Context) error {
	slot, err := models.ParseWeightSlot(c.Slot)
	if err != nil {
		return err
	}
	svc, date, err := serviceAndDate(ctx, c.Date)
	if err != nil {
		return err
	}
	if err := svc.ToggleWeightMissed(date, slot); err != nil {
		return err
	}
	if svc.State().Day(date).Missed(slot) {
		ctx.Println(cli.Success(fmt.Sprintf("Marked %s weigh-in missed on %s", slot, date)))
	} else {
		ctx.Println(cli.Success(fmt.Sprintf("Cleared missed %s weigh-in on %s", slot, date)))
	}
	return nil
}

func serviceAndDate(ctx *cli.Context, date string) (*tracker.Service, string, error) {
	svc, err := ctx.Service()
	if err != nil {
		return nil, "", err
	}
	date, err = cli.ResolveDate(svc, date)
	if err != nil {
		return nil, "", err
	}
	return svc, date, nil
}
