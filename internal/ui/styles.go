package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Terminal palette colors so output follows the user's theme
	ColorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	ColorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "4", Dark: "4"}

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleAccent  = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Underline(true)

	StyleTableHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleTableRow    = lipgloss.NewStyle()
	StyleTableRowAlt = lipgloss.NewStyle().Faint(true)
	StyleTableBorder = lipgloss.NewStyle().Foreground(ColorMuted)

	IconSuccess = "✔"
	IconError   = "✘"
	IconInfo    = "ℹ"
	IconWarning = "⚠"
)

// FormatSuccess returns a success message with icon
func FormatSuccess(msg string) string {
	return StyleSuccess.Render(IconSuccess + " " + msg)
}

// FormatError returns an error message with icon
func FormatError(msg string) string {
	return StyleError.Render(IconError + " " + msg)
}

// FormatInfo returns an info message with icon
func FormatInfo(msg string) string {
	return StyleInfo.Render(IconInfo + " " + msg)
}

// FormatWarning returns a warning message with icon
func FormatWarning(msg string) string {
	return StyleWarning.Render(IconWarning + " " + msg)
}

func FormatTitle(title string) string {
	return StyleTitle.Render(title)
}

func FormatMuted(text string) string {
	return StyleMuted.Render(text)
}

// RenderKeyValue renders "key: value" with a highlighted key.
func RenderKeyValue(key, value string) string {
	return StyleAccent.Render(key) + ": " + value
}
