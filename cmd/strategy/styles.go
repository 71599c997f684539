package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-strategy/internal/portfolio"
	"github.com/rxtech-lab/argo-strategy/internal/validator"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true)

	HelpStyle = lipgloss.NewStyle().Faint(true)

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	InfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	OKStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

func severityStyle(s validator.Severity) lipgloss.Style {
	switch s {
	case validator.SeverityError:
		return ErrorStyle
	case validator.SeverityWarning:
		return WarningStyle
	default:
		return InfoStyle
	}
}

// FormatIssue renders one validation issue on a single line.
func FormatIssue(issue validator.Issue) string {
	line := fmt.Sprintf("%s [%s] %s",
		severityStyle(issue.Severity).Render(fmt.Sprintf("%-7s", issue.Severity)),
		issue.Category,
		issue.Message,
	)

	switch {
	case issue.NodeID != "":
		line += HelpStyle.Render(" (node " + issue.NodeID + ")")
	case issue.EdgeID != "":
		line += HelpStyle.Render(" (edge " + issue.EdgeID + ")")
	}

	return line
}

// FormatCoefficient colours a correlation by its strength.
func FormatCoefficient(c float64) string {
	text := fmt.Sprintf("%6.2f", c)

	switch portfolio.Classify(c) {
	case portfolio.StrongPositive, portfolio.StrongNegative:
		return ErrorStyle.Render(text)
	case portfolio.ModeratePositive, portfolio.ModerateNegative:
		return WarningStyle.Render(text)
	default:
		return text
	}
}
