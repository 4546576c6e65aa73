package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/registry"
	"clawhub/internal/tui/styles"
)

// ConfirmScreen asks before installing a skill
type ConfirmScreen struct {
	slug     string
	version  string
	scan     *registry.ScanStatus
	selected int // 0 = yes, 1 = no
	width    int
	height   int
}

// NewConfirmScreen creates a confirmation for installing slug at version
// (latest when empty).
func NewConfirmScreen(slug, version string, scan *registry.ScanStatus) *ConfirmScreen {
	return &ConfirmScreen{
		slug:    slug,
		version: version,
		scan:    scan,
		width:   80,
		height:  24,
	}
}

// Init initializes the screen
func (s *ConfirmScreen) Init() tea.Cmd {
	return nil
}

// ConfirmedMsg is sent when the install is confirmed
type ConfirmedMsg struct {
	Slug    string
	Version string
}

// CancelledMsg is sent when the install is cancelled
type CancelledMsg struct{}

// Update handles events
func (s *ConfirmScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			s.selected = 0
		case "right", "l":
			s.selected = 1
		case "y", "Y":
			s.selected = 0
			return s, s.confirm()
		case "n", "N", "esc", "q":
			return s, func() tea.Msg { return CancelledMsg{} }
		case "enter":
			return s, s.confirm()
		}
	}

	return s, nil
}

func (s *ConfirmScreen) confirm() tea.Cmd {
	if s.selected == 0 {
		confirmed := ConfirmedMsg{Slug: s.slug, Version: s.version}
		return func() tea.Msg { return confirmed }
	}
	return func() tea.Msg { return CancelledMsg{} }
}

// View renders the screen
func (s *ConfirmScreen) View() string {
	var b strings.Builder

	version := "latest"
	if s.version != "" {
		version = "v" + s.version
	}

	b.WriteString(styles.Title.Render("Install Skill"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Install %s %s?", styles.InfoValue.Render(s.slug), styles.Muted.Render(version)))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render("Scan: "))
	b.WriteString(styles.ScanBadge(scanStatus(s.scan)))
	b.WriteString("\n\n")

	var yesBtn, noBtn string
	if s.selected == 0 {
		yesBtn = styles.SelectedItem.Render(" Yes ")
		noBtn = styles.NormalItem.Render(" No ")
	} else {
		yesBtn = styles.NormalItem.Render(" Yes ")
		noBtn = styles.SelectedItem.Render(" No ")
	}

	b.WriteString(yesBtn + "  " + noBtn)
	b.WriteString("\n\n")

	b.WriteString(styles.FormatHelp(
		"y", "yes",
		"n", "no",
		"←/→", "select",
		"enter", "confirm",
	))

	return b.String()
}
