package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/cli/days"
	"github.com/julianstephens/tally/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % stateCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state + stateCount - 1) % stateCount
			return m, nil
		case key.Matches(msg, m.keys.PrevDay):
			m.moveDate(-1)
			return m, nil
		case key.Matches(msg, m.keys.NextDay):
			m.moveDate(1)
			return m, nil
		case key.Matches(msg, m.keys.Today):
			m.date = m.svc.Today()
			m.refreshRecent()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status, m.err = "", nil
			m.refreshRecent()
			return m, nil
		case key.Matches(msg, m.keys.Edit):
			return m.startEdit()
		}

		if m.state == StateRecent {
			var cmd tea.Cmd
			m.recent, cmd = m.recent.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// moveDate steps the selection, never past today or before tracking started.
func (m *Model) moveDate(delta int) {
	next := utils.AddDays(m.date, delta)
	if next > m.svc.Today() || next < m.svc.State().TrackingStart {
		return
	}
	m.date = next
	m.status, m.err = "", nil
	m.refreshRecent()
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	missing := m.svc.MissingItems(m.date)
	if len(missing) == 0 {
		m.status = m.date + " is already complete"
		return m, nil
	}
	m.answers = days.NewAnswers(missing)
	m.form = m.answers.Form(m.date)
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.form, m.answers = nil, nil
		m.status = "Edit cancelled"
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		applied, err := m.answers.Apply(m.svc, m.date)
		m.form, m.answers = nil, nil
		if err != nil {
			m.err = err
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %d answer(s) for %s", applied, m.date)
		m.refreshRecent()
		return m, nil
	case huh.StateAborted:
		m.form, m.answers = nil, nil
		m.status = "Edit cancelled"
		return m, nil
	}
	return m, cmd
}
