package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night inspired color palette
var (
	colorPrimary = lipgloss.Color("#7aa2f7") // Blue
	colorSuccess = lipgloss.Color("#9ece6a") // Green
	colorWarning = lipgloss.Color("#e0af68") // Yellow
	colorError   = lipgloss.Color("#f7768e") // Red
	colorMuted   = lipgloss.Color("#565f89") // Gray
	colorBg      = lipgloss.Color("#1a1b26") // Dark background
	colorBgLight = lipgloss.Color("#24283b") // Lighter background
	colorFg      = lipgloss.Color("#c0caf5") // Foreground
	colorFgDim   = lipgloss.Color("#a9b1d6") // Dimmed foreground
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorFgDim)

	cardStyle = lipgloss.NewStyle().
			Background(colorBgLight).
			Foreground(colorFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(colorMuted)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(colorPrimary).
			Bold(true).
			Underline(true)

	selectedRowStyle = lipgloss.NewStyle().
				Background(colorBgLight).
				Foreground(colorFg).
				Bold(true)

	disabledStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)

	toastInfoStyle = lipgloss.NewStyle().
			Foreground(colorBg).
			Background(colorPrimary).
			Padding(0, 1)

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(colorBg).
				Background(colorSuccess).
				Padding(0, 1)

	toastWarningStyle = lipgloss.NewStyle().
				Foreground(colorBg).
				Background(colorWarning).
				Padding(0, 1)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(colorBg).
			Background(colorError).
			Padding(0, 1)
)

func renderHeader(tabs string) string {
	return titleStyle.Render("AREPAS") + "  " + tabs
}

func renderFooter(keys, status string) string {
	if strings.TrimSpace(status) == "" {
		status = "ready"
	}
	return labelStyle.Render("KEYS: " + keys + " | " + status)
}

func renderFrame(header, body, footer string) string {
	return header + "\n" + body + "\n" + footer
}

func padBodyToHeight(body string, height int) string {
	if height <= 0 {
		return body
	}
	lines := []string{""}
	if strings.TrimSpace(body) != "" {
		lines = strings.Split(body, "\n")
	}
	if len(lines) >= height {
		return body
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
