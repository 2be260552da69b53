package cli

import "github.com/charmbracelet/lipgloss"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func Success(s string) string { return successStyle.Render("✓ " + s) }

func Warning(s string) string { return warningStyle.Render("⚠ " + s) }

func Danger(s string) string { return dangerStyle.Render("❌ " + s) }

func Heading(s string) string { return headingStyle.Render(s) }

func Muted(s string) string { return mutedStyle.Render(s) }
