package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/cli/days"
	"github.com/julianstephens/tally/internal/cli/plans"
	"github.com/julianstephens/tally/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.form != nil:
		content = m.form.View()
	case m.state == StateDay:
		content = days.FormatDay(m.svc.State(), m.date, m.window)
	case m.state == StateRecent:
		content = m.recent.View()
	case m.state == StatePlans:
		s := m.svc.State()
		content = lipgloss.JoinVertical(lipgloss.Left,
			plans.FormatWeek(s, utils.WeekKey(m.date)),
			"",
			plans.FormatMonth(s, utils.MonthKey(m.date)),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewBanner(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range stateTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, inactiveTabStyle.Render(m.date))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewBanner() string {
	req := m.svc.Gate()
	if !req.Blocking() {
		return clearStyle.Render(req.Message())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		bannerStyle.Render(fmt.Sprintf("%s: %s", req.Kind, req.Message())),
		hintStyle.Render(cli.NextStep(req)),
	)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	if m.status != "" {
		return hintStyle.Render(m.status)
	}
	return ""
}
