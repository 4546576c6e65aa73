package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/registry"
	"clawhub/internal/tui/styles"
)

// DetailScreen shows a skill's metadata and lets the user pick a version
type DetailScreen struct {
	meta      *registry.SkillMeta
	installed string
	cursor    int
	width     int
	height    int
}

// NewDetailScreen creates a detail screen. installed is the locked version,
// empty when the skill is not installed.
func NewDetailScreen(meta *registry.SkillMeta, installed string) *DetailScreen {
	s := &DetailScreen{
		meta:      meta,
		installed: installed,
		width:     80,
		height:    24,
	}
	for i, v := range meta.Versions {
		if v.Latest {
			s.cursor = i
		}
	}
	return s
}

// Slug returns the slug of the skill shown.
func (s *DetailScreen) Slug() string {
	return s.meta.Slug
}

// SetInstalled records a new installed version.
func (s *DetailScreen) SetInstalled(version string) {
	s.installed = version
}

// Init initializes the screen
func (s *DetailScreen) Init() tea.Cmd {
	return nil
}

// Update handles events
func (s *DetailScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "backspace":
			return s, func() tea.Msg { return BackMsg{} }

		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}

		case "down", "j":
			if s.cursor < len(s.meta.Versions)-1 {
				s.cursor++
			}

		case "i", "enter":
			install := InstallSkillMsg{
				Slug:    s.meta.Slug,
				Version: s.selectedVersion(),
				Scan:    s.meta.VirusTotal,
			}
			return s, func() tea.Msg { return install }
		}
	}

	return s, nil
}

// selectedVersion is empty when the cursor is on the latest version, so the
// install resolves latest itself.
func (s *DetailScreen) selectedVersion() string {
	if s.cursor >= len(s.meta.Versions) {
		return ""
	}
	v := s.meta.Versions[s.cursor]
	if v.Latest {
		return ""
	}
	return v.Version
}

// View renders the screen
func (s *DetailScreen) View() string {
	var b strings.Builder

	title := s.meta.Slug
	if s.meta.Name != "" && s.meta.Name != s.meta.Slug {
		title = fmt.Sprintf("%s (%s)", s.meta.Name, s.meta.Slug)
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	if s.installed != "" {
		b.WriteString(styles.InstalledBadge.Render("● INSTALLED"))
		b.WriteString(styles.Muted.Render(" v" + s.installed))
	} else {
		b.WriteString(styles.Muted.Render("○ Not installed"))
	}
	b.WriteString("\n")

	var info strings.Builder
	info.WriteString(styles.InfoLabel.Render("Description"))
	info.WriteString(styles.InfoValue.Render(s.meta.Description))
	info.WriteString("\n\n")

	info.WriteString(styles.InfoLabel.Render("Scan"))
	info.WriteString(styles.ScanBadge(scanStatus(s.meta.VirusTotal)))
	if s.meta.VirusTotal != nil && s.meta.VirusTotal.ReportCount > 0 {
		info.WriteString(styles.Muted.Render(fmt.Sprintf(" (%d reports)", s.meta.VirusTotal.ReportCount)))
	}
	info.WriteString("\n\n")

	info.WriteString(styles.InfoLabel.Render("Versions"))
	if len(s.meta.Versions) == 0 {
		info.WriteString(styles.Muted.Render("none published"))
	}
	for i, v := range s.meta.Versions {
		if i > 0 {
			info.WriteString("\n" + styles.InfoLabel.Render(""))
		}
		line := v.Version
		if i == s.cursor {
			line = styles.SelectedItem.Render(line)
		} else {
			line = styles.NormalItem.Render(line)
		}
		info.WriteString(line)
		if v.Latest {
			info.WriteString(styles.Tag.Render("latest"))
		}
		if v.Version == s.installed {
			info.WriteString(styles.InstalledBadge.Render("installed"))
		}
	}

	b.WriteString(styles.InfoBox.Render(info.String()))
	b.WriteString("\n")

	if strings.EqualFold(scanStatus(s.meta.VirusTotal), "malicious") {
		b.WriteString(styles.ErrorMsg.Render("Flagged malicious: install is blocked unless security checks are skipped"))
		b.WriteString("\n")
	}

	b.WriteString(styles.FormatHelp(
		"j/k", "version",
		"i", "install",
		"esc", "back",
	))

	return b.String()
}
