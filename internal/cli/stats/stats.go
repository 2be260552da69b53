package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/tally/internal/analytics"
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

type StatsCmd struct {
	Weight WeightCmd `cmd:"" help:"Show daily and rolling average weights." default:"1"`
	Goals  GoalsCmd  `cmd:"" help:"Show goal achievement for a metric."`
}

type WeightCmd struct {
	Days   int `help:"Number of days to show, ending today." default:"14"`
	Window int `help:"Rolling average window in days. Defaults to the configured rolling_window."`
}

func (c *WeightCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	window := c.Window
	if window == 0 {
		window = ctx.Config.RollingWindow
	}
	if window < 1 {
		return fmt.Errorf("--window must be at least 1")
	}

	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	to := svc.Today()
	from := utils.AddDays(to, -(c.Days - 1))
	ctx.Println(WeightTable(svc.State(), from, to, window))
	return nil
}

// WeightTable renders one row per date in [from, to] with the daily and
// rolling averages. Dates without data show a dash.
func WeightTable(s models.AppState, from, to string, window int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Morning", "Night", "Average", fmt.Sprintf("%d-day", window))

	for _, date := range utils.DateRange(from, to) {
		day := s.Day(date)
		avg := "-"
		if v, ok := analytics.DailyAverage(day); ok {
			avg = fmt.Sprintf("%.1f", v)
		}
		rolling := "-"
		if v, ok := analytics.RollingAverage(s, date, window); ok {
			rolling = fmt.Sprintf("%.1f", v)
		}
		t.Row(date, slotValue(day, models.Morning), slotValue(day, models.Night), avg, rolling)
	}
	return t.String()
}

func slotValue(day models.DayRecord, slot models.WeightSlot) string {
	if v, ok := day.Weight(slot); ok {
		return fmt.Sprintf("%.1f", v)
	}
	if day.Missed(slot) {
		return "missed"
	}
	return "-"
}

type GoalsCmd struct {
	Metric string `arg:"" enum:"diet,weights,lifting,fast" help:"diet, weights, lifting or fast."`
	Days   int    `help:"Number of days to show, ending today." default:"28"`
}

func (c *GoalsCmd) Run(ctx *cli.Context) error {
	metric, err := analytics.ParseMetric(c.Metric)
	if err != nil {
		return err
	}
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	to := svc.Today()
	series := analytics.GoalSeries(svc.State(), metric, utils.AddDays(to, -(c.Days-1)), to)
	ctx.Println(FormatGoals(metric, series))
	return nil
}

// FormatGoals renders a series as a strip of marks followed by the met rate:
// ● met, ○ unmet, · not applicable.
func FormatGoals(metric analytics.Metric, series []analytics.GoalPoint) string {
	var b strings.Builder
	if len(series) > 0 {
		fmt.Fprintf(&b, "%s\n", cli.Heading(fmt.Sprintf("%s goal, %s to %s", metric, series[0].Date, series[len(series)-1].Date)))
	}

	for i, p := range series {
		if i > 0 && i%7 == 0 {
			b.WriteString("\n")
		}
		switch p.Outcome {
		case analytics.OutcomeMet:
			b.WriteString("● ")
		case analytics.OutcomeUnmet:
			b.WriteString("○ ")
		default:
			b.WriteString(cli.Muted("· "))
		}
	}
	b.WriteString("\n\n")

	rate, ok := analytics.GoalRate(series)
	if !ok {
		b.WriteString(cli.Muted("No days with data"))
		return b.String()
	}
	met := 0
	relevant := 0
	for _, p := range series {
		if _, has := p.Outcome.Value(); has {
			relevant++
		}
		if p.Outcome == analytics.OutcomeMet {
			met++
		}
	}
	fmt.Fprintf(&b, "Met %d of %d days (%.0f%%)", met, relevant, rate*100)
	return b.String()
}
