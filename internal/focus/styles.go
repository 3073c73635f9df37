package focus

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorAccent  = lipgloss.Color("#bb9af7")
	colorDim     = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary)

	selectedStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarning).
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorWarning)
)
