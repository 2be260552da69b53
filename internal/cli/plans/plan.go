package plans

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/planner"
	"github.com/julianstephens/tally/internal/tracker"
	"github.com/julianstephens/tally/internal/utils"
)

type PlanCmd struct {
	Week  WeekCmd  `cmd:"" help:"Plan lifting days for a week." default:"1"`
	Month MonthCmd `cmd:"" help:"Plan the water fast for a month."`
}

type WeekCmd struct {
	Show    WeekShowCmd    `cmd:"" help:"Show the week's lifting plan." default:"1"`
	Set     WeekSetCmd     `cmd:"" help:"Replace the week's lifting days."`
	Confirm WeekConfirmCmd `cmd:"" help:"Confirm a complete week plan."`
}

type MonthCmd struct {
	Show    MonthShowCmd    `cmd:"" help:"Show the month's fast plan." default:"1"`
	Set     MonthSetCmd     `cmd:"" help:"Plan the fast starting on a date."`
	Confirm MonthConfirmCmd `cmd:"" help:"Confirm a complete fast plan."`
}

// resolveWeek accepts any date in the week, defaulting to the current week.
func resolveWeek(svc *tracker.Service, week string) (string, error) {
	date, err := cli.ResolveDate(svc, week)
	if err != nil {
		return "", err
	}
	return utils.WeekKey(date), nil
}

func resolveMonth(svc *tracker.Service, month string) (string, error) {
	if month == "" {
		return utils.MonthKey(svc.Today()), nil
	}
	if _, err := utils.ParseMonth(month); err != nil {
		return "", err
	}
	return month, nil
}

// FormatWeek renders the seven days of the week with the planned ones marked.
func FormatWeek(s models.AppState, weekKey string) string {
	var b strings.Builder
	plan := s.WeekPlan(weekKey)

	fmt.Fprintln(&b, cli.Heading("Week of "+weekKey))
	for _, date := range utils.WeekDates(weekKey) {
		t, _ := utils.ParseDate(date)
		mark := cli.Muted("·")
		if plan.Contains(date) {
			mark = "●"
		}
		fmt.Fprintf(&b, "  %s %s %s\n", mark, date, t.Weekday().String()[:3])
	}
	fmt.Fprintln(&b)
	b.WriteString(planStatus(plan.Size(), constants.LiftingDaysPerWeek, "lifting days",
		planner.IsWeekPlanConfirmed(s, weekKey)))
	return b.String()
}

// FormatMonth renders the month's fast days and the valid start range.
func FormatMonth(s models.AppState, monthKey string) string {
	var b strings.Builder
	plan := s.FastPlan(monthKey)

	fmt.Fprintln(&b, cli.Heading("Water fast for "+monthKey))
	if plan.Size() == 0 {
		fmt.Fprintln(&b, "  "+cli.Muted("no fast days planned"))
	}
	for _, date := range plan.Dates {
		fmt.Fprintf(&b, "  ● %s\n", date)
	}
	if first, last, err := planner.FastStartBounds(monthKey); err == nil {
		fmt.Fprintln(&b, "  "+cli.Muted(fmt.Sprintf("a fast may start from %s to %s", first, last)))
	}
	fmt.Fprintln(&b)
	b.WriteString(planStatus(plan.Size(), constants.FastRunDays, "fast days",
		planner.IsMonthPlanConfirmed(s, monthKey)))
	return b.String()
}

func planStatus(size, want int, noun string, confirmed bool) string {
	switch {
	case size == want && confirmed:
		return cli.Success("Confirmed")
	case size == want:
		return cli.Warning(fmt.Sprintf("%d of %d %s, not confirmed", size, want, noun))
	default:
		return cli.Warning(fmt.Sprintf("%d of %d %s", size, want, noun))
	}
}

type WeekShowCmd struct {
	Week string `help:"Any date in the week (YYYY-MM-DD). Defaults to this week." short:"w"`
}

func (c *WeekShowCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	week, err := resolveWeek(svc, c.Week)
	if err != nil {
		return err
	}
	ctx.Println(FormatWeek(svc.State(), week))
	return nil
}

type WeekSetCmd struct {
	Dates       []string `arg:"" optional:"" help:"Up to three dates in the week, space or comma separated."`
	Week        string   `help:"Any date in the week (YYYY-MM-DD). Defaults to this week." short:"w"`
	Interactive bool     `help:"Pick the days from a list." short:"i"`
}

func (c *WeekSetCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	week, err := resolveWeek(svc, c.Week)
	if err != nil {
		return err
	}

	dates := cli.SplitDates(c.Dates)
	if c.Interactive {
		dates = svc.State().WeekPlan(week).Dates
		if err := WeekForm(week, &dates).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				ctx.Println("Plan unchanged.")
				return nil
			}
			return err
		}
	}

	if err := svc.ReplaceWeekPlan(week, dates); err != nil {
		return err
	}
	ctx.Println(FormatWeek(svc.State(), week))
	return nil
}

// WeekForm builds a multi-select over the seven days of the week.
func WeekForm(weekKey string, selected *[]string) *huh.Form {
	var options []huh.Option[string]
	for _, date := range utils.WeekDates(weekKey) {
		t, _ := utils.ParseDate(date)
		options = append(options, huh.NewOption(fmt.Sprintf("%s %s", t.Weekday().String()[:3], date), date))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Lifting days for the week of " + weekKey).
				Options(options...).
				Limit(constants.LiftingDaysPerWeek).
				Value(selected),
		),
	).WithTheme(huh.ThemeDracula())
}

type WeekConfirmCmd struct {
	Week string `help:"Any date in the week (YYYY-MM-DD). Defaults to this week." short:"w"`
}

func (c *WeekConfirmCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	week, err := resolveWeek(svc, c.Week)
	if err != nil {
		return err
	}
	if err := svc.ConfirmWeekPlan(week); err != nil {
		return err
	}
	ctx.Println(cli.Success("Confirmed lifting days for the week of " + week))
	return nil
}

type MonthShowCmd struct {
	Month string `help:"Month (YYYY-MM). Defaults to this month." short:"m"`
}

func (c *MonthShowCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	month, err := resolveMonth(svc, c.Month)
	if err != nil {
		return err
	}
	ctx.Println(FormatMonth(svc.State(), month))
	return nil
}

type MonthSetCmd struct {
	Start string `arg:"" help:"First day of the fast (YYYY-MM-DD)."`
}

func (c *MonthSetCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	if err := svc.ReplaceFastPlanFrom(c.Start); err != nil {
		return err
	}
	ctx.Println(FormatMonth(svc.State(), utils.MonthKey(c.Start)))
	return nil
}

type MonthConfirmCmd struct {
	Month string `help:"Month (YYYY-MM). Defaults to this month." short:"m"`
}

func (c *MonthConfirmCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	month, err := resolveMonth(svc, c.Month)
	if err != nil {
		return err
	}
	if err := svc.ConfirmMonthPlan(month); err != nil {
		return err
	}
	ctx.Println(cli.Success("Confirmed the water fast for " + month))
	return nil
}
