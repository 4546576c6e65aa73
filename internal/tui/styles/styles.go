package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// Colors
	Primary    = lipgloss.Color("#7C3AED") // Purple
	Secondary  = lipgloss.Color("#10B981") // Green
	Accent     = lipgloss.Color("#F59E0B") // Amber
	Danger     = lipgloss.Color("#EF4444") // Red
	MutedColor = lipgloss.Color("#6B7280") // Gray
	Subtle     = lipgloss.Color("#374151") // Dark gray

	Muted = lipgloss.NewStyle().
		Foreground(MutedColor)

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// List styles
	SelectedItem = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Primary).
			Padding(0, 1)

	NormalItem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)

	InstalledBadge = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Status indicators
	StatusInstalled = lipgloss.NewStyle().
			Foreground(Secondary).
			SetString("●")

	StatusAvailable = lipgloss.NewStyle().
			Foreground(MutedColor).
			SetString("○")

	StatusOutdated = lipgloss.NewStyle().
			Foreground(Accent).
			SetString("◉")

	// Scan badges
	ScanClean = lipgloss.NewStyle().
			Foreground(Secondary)

	ScanSuspicious = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	ScanMalicious = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	// Info panel
	InfoBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Subtle).
		Padding(1, 2).
		MarginTop(1)

	InfoLabel = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(12)

	InfoValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// Version tag
	Tag = lipgloss.NewStyle().
		Foreground(Accent).
		Background(lipgloss.Color("#1F2937")).
		Padding(0, 1).
		MarginRight(1)

	// Messages
	ErrorMsg = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	SuccessMsg = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	WarningMsg = lipgloss.NewStyle().
			Foreground(Accent)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)

	// Search
	SearchPrompt = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// FormatHelp formats help text with highlighted keys
func FormatHelp(pairs ...string) string {
	var result string
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += HelpKey.Render(pairs[i]) + " " + pairs[i+1]
	}
	return HelpBar.Render(result)
}

// ScanBadge renders a registry scan status. Unknown or missing statuses render
// as "unscanned".
func ScanBadge(status string) string {
	switch strings.ToLower(status) {
	case "clean":
		return ScanClean.Render("clean")
	case "suspicious":
		return ScanSuspicious.Render("suspicious")
	case "malicious":
		return ScanMalicious.Render("malicious")
	case "":
		return Muted.Render("unscanned")
	default:
		return Muted.Render(strings.ToLower(status))
	}
}

var counts = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return counts.Sprintf("%d", n)
}
