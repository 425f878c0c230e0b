package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	publicStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	privateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func visibilityBadge(v string) string {
	if v == "public" {
		return publicStyle.Render("public")
	}
	return privateStyle.Render("private")
}
