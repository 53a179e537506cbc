package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/yourusername/kubmonitor/internal/dashboard"
)

// Color scheme
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#00D9FF")
	ColorSecondary = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorDanger    = lipgloss.Color("#EF4444")

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#9CA3AF")
	ColorTextMuted     = lipgloss.Color("#6B7280")

	// Background colors
	ColorBgSecondary = lipgloss.Color("#374151")
	ColorBgHover     = lipgloss.Color("#4B5563")
)

// Common styles
var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Italic(true)

	// Table header row
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorTextPrimary).
			Background(ColorBgSecondary)

	// Panel titles
	StyleSubHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	StyleStatusReady = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true)

	StyleStatusNotReady = lipgloss.NewStyle().
				Foreground(ColorDanger).
				Bold(true)

	StyleStatusPending = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	StyleKey = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	StyleKeyDesc = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	// Panels are bordered but unpadded; the layout math counts on one
	// border line above and below.
	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgSecondary)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StyleTextSecondary = lipgloss.NewStyle().
				Foreground(ColorTextSecondary)

	StyleTextMuted = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// Selection style (for highlighting selected row in lists)
	StyleSelected = lipgloss.NewStyle().
			Background(ColorBgHover).
			Foreground(ColorPrimary).
			Bold(true)
)

// FormatPercentage formats a percentage value
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// RenderKeyBinding renders a key binding help text
func RenderKeyBinding(key, desc string) string {
	return fmt.Sprintf("%s %s", StyleKey.Render(key), StyleKeyDesc.Render(desc))
}

// RenderSeverity colors text by the severity of the status it shows
func RenderSeverity(text string, severity dashboard.Severity) string {
	switch severity {
	case dashboard.SeveritySuccess:
		return StyleStatusReady.Render(text)
	case dashboard.SeverityError:
		return StyleStatusNotReady.Render(text)
	case dashboard.SeverityWarning:
		return StyleStatusPending.Render(text)
	default:
		return StyleTextMuted.Render(text)
	}
}

// percentStyle picks green below 50%, yellow below 80% and red above
func percentStyle(value float64) lipgloss.Style {
	switch {
	case value >= 80:
		return StyleStatusNotReady
	case value >= 50:
		return StyleStatusPending
	default:
		return StyleStatusReady
	}
}

// RenderPercent renders a percentage colored by load
func RenderPercent(value float64) string {
	return percentStyle(value).Render(FormatPercentage(value))
}

// ansiRegex matches ANSI color codes
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripANSI removes ANSI color codes from a string
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// visualLength returns the display width of s, ignoring ANSI codes and
// counting wide characters as two cells.
func visualLength(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}

// padRight pads a string to the specified width (handling ANSI codes correctly)
func padRight(s string, width int) string {
	vlen := visualLength(s)
	if vlen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-vlen)
}

// truncate cuts s to maxLen display cells, adding "..." if truncated.
// Styling is dropped from truncated strings.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	stripped := stripANSI(s)
	if runewidth.StringWidth(stripped) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(stripped, maxLen, "")
	}
	return runewidth.Truncate(stripped, maxLen-3, "") + "..."
}

// fit truncates or pads s to exactly width cells
func fit(s string, width int) string {
	return padRight(truncate(s, width), width)
}
