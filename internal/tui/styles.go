package tui

import (
	"github.com/charmbracelet/lipgloss"

	"schoolmon/internal/model"
)

const (
	colorSubtle    = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("63")
	colorError     = lipgloss.Color("196")
	colorSuccess   = lipgloss.Color("40")
	colorWarning   = lipgloss.Color("214")
	colorWhite     = lipgloss.Color("231")
)

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorHighlight).
			Bold(true).
			Padding(0, 2)

	helpStyle     = lipgloss.NewStyle().Foreground(colorSubtle)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	selectedStyle = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtle).Width(22)

	bannerStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorError).
			Padding(0, 1)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Foreground(colorError).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)
)

var statusStyles = map[model.DeviceStatus]lipgloss.Style{
	model.StatusHealthy:  lipgloss.NewStyle().Foreground(colorSuccess),
	model.StatusWarning:  lipgloss.NewStyle().Foreground(colorWarning),
	model.StatusCritical: lipgloss.NewStyle().Foreground(colorError),
}

func statusStyle(s model.DeviceStatus) lipgloss.Style {
	if style, ok := statusStyles[s]; ok {
		return style
	}
	return helpStyle
}
