// Package tui is the interactive dashboard: the active gate, one day's
// answers, recent days and the plans around the selected date.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/analytics"
	"github.com/julianstephens/tally/internal/cli/days"
	"github.com/julianstephens/tally/internal/evaluator"
	"github.com/julianstephens/tally/internal/gate"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/tracker"
	"github.com/julianstephens/tally/internal/utils"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateRecent
	StatePlans
	stateCount
)

var stateTitles = []string{"Day", "Recent", "Plans"}

// recentDays is how many days the Recent table shows, ending on the selected date.
const recentDays = 14

type Model struct {
	svc      *tracker.Service
	window   int
	state    SessionState
	keys     KeyMap
	help     help.Model
	recent   table.Model
	date     string
	form     *huh.Form
	answers  *days.Answers
	status   string
	err      error
	quitting bool
	width    int
	height   int
}

// NewModel opens on the day the gate is waiting for, or today.
func NewModel(svc *tracker.Service, window int) Model {
	date := svc.Today()
	if req := svc.Gate(); req.Kind == gate.PreviousDayRequired {
		date = req.Key
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Done", Width: 6},
			{Title: "Morning", Width: 9},
			{Title: "Night", Width: 9},
			{Title: "Average", Width: 9},
			{Title: fmt.Sprintf("%d-day", window), Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(recentDays+1),
	)

	m := Model{
		svc:    svc,
		window: window,
		state:  StateDay,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		recent: t,
		date:   date,
	}
	m.refreshRecent()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Date returns the selected date.
func (m Model) Date() string { return m.date }

func (m Model) ShortHelp() []key.Binding { return m.keys.ShortHelp() }

func (m Model) FullHelp() [][]key.Binding { return m.keys.FullHelp() }

func (m *Model) refreshRecent() {
	s := m.svc.State()
	rows := make([]table.Row, 0, recentDays)
	for i := 0; i < recentDays; i++ {
		date := utils.AddDays(m.date, -i)
		if date < s.TrackingStart {
			break
		}
		rows = append(rows, recentRow(s, date, m.window))
	}
	m.recent.SetRows(rows)
	m.recent.GotoTop()
}

func recentRow(s models.AppState, date string, window int) table.Row {
	day := s.Day(date)
	done := "·"
	if s.HasDay(date) {
		done = "✗"
		if evaluator.IsDayComplete(s, date) {
			done = "✓"
		}
	}
	avg, rolling := "-", "-"
	if v, ok := analytics.DailyAverage(day); ok {
		avg = fmt.Sprintf("%.1f", v)
	}
	if v, ok := analytics.RollingAverage(s, date, window); ok {
		rolling = fmt.Sprintf("%.1f", v)
	}
	return table.Row{date, done, weightCell(day, models.Morning), weightCell(day, models.Night), avg, rolling}
}

func weightCell(day models.DayRecord, slot models.WeightSlot) string {
	if v, ok := day.Weight(slot); ok {
		return fmt.Sprintf("%.1f", v)
	}
	if day.Missed(slot) {
		return "missed"
	}
	return "-"
}
