// Package styles provides Lipgloss styles for terminal output using the Ciapre colour palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - Ciapre (warm, earthy) theme from Gogh
const (
	DeepPurple    = lipgloss.Color("#191C27")
	Purple        = lipgloss.Color("#5C4F4B")
	BrightPurple  = lipgloss.Color("#724D7C")
	Lavender      = lipgloss.Color("#AEA47A")
	LightLavender = lipgloss.Color("#F3DBB2")
	Pink          = lipgloss.Color("#D33061")
	Cyan          = lipgloss.Color("#3097C6")
	Amber         = lipgloss.Color("#CC8B3F")
	Red           = lipgloss.Color("#AC3835")
	Green         = lipgloss.Color("#A6A75D")
)

// Header is used for command titles and table headers.
var Header = lipgloss.NewStyle().
	Foreground(Pink).
	Bold(true)

// SubHeader marks a stage or group name.
var SubHeader = lipgloss.NewStyle().
	Foreground(Amber).
	Bold(true)

// PrimaryText is the style for primary text content
var PrimaryText = lipgloss.NewStyle().
	Foreground(LightLavender)

// SecondaryText is the style for less prominent text
var SecondaryText = lipgloss.NewStyle().
	Foreground(Lavender)

// Path highlights file paths in summaries.
var Path = lipgloss.NewStyle().
	Foreground(Cyan)

// Warning is the style for warning messages
var Warning = lipgloss.NewStyle().
	Foreground(Red).
	Bold(true)

// Success is the style for success messages
var Success = lipgloss.NewStyle().
	Foreground(Green).
	Bold(true)

// Box is a rounded border used for the final run summary.
var Box = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Purple).
	Padding(0, 1)

// Mark returns a green tick or red cross.
func Mark(ok bool) string {
	if ok {
		return Success.Render("✓")
	}
	return Warning.Render("✗")
}
