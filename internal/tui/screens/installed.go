package screens

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/lockfile"
	"clawhub/internal/registry"
	"clawhub/internal/tui/components"
	"clawhub/internal/tui/styles"
)

// InstalledScreen lists the skills recorded in the lockfile
type InstalledScreen struct {
	list   components.SkillList
	width  int
	height int
}

// NewInstalledScreen creates a new installed screen
func NewInstalledScreen(lock *lockfile.LockFile) *InstalledScreen {
	s := &InstalledScreen{
		width:  80,
		height: 24,
	}
	s.Refresh(lock)
	return s
}

// Refresh rebuilds the list from lock.
func (s *InstalledScreen) Refresh(lock *lockfile.LockFile) {
	slugs := lock.Slugs()
	skills := make([]registry.SearchResult, 0, len(slugs))
	installed := make(map[string]string, len(slugs))
	for _, slug := range slugs {
		e, _ := lock.Get(slug)
		installed[slug] = e.InstalledVersion
		skills = append(skills, registry.SearchResult{
			Slug:        slug,
			Description: "installed " + e.InstalledAt.Local().Format("2006-01-02 15:04"),
		})
	}
	s.list = components.NewSkillList(skills, installed)
	s.list.SetHeight(s.height - 8)
}

// Init initializes the screen
func (s *InstalledScreen) Init() tea.Cmd {
	return nil
}

// Update handles events
func (s *InstalledScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.list.SetHeight(s.height - 8)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "tab":
			return s, func() tea.Msg { return BackMsg{} }

		case "enter":
			if skill := s.list.Selected(); skill != nil {
				slug := skill.Slug
				return s, func() tea.Msg { return SelectSkillMsg{Slug: slug} }
			}

		case "u":
			if skill := s.list.Selected(); skill != nil {
				update := InstallSkillMsg{Slug: skill.Slug}
				return s, func() tea.Msg { return update }
			}

		default:
			s.list.Update(msg)
		}
	}

	return s, nil
}

// View renders the screen
func (s *InstalledScreen) View() string {
	var b strings.Builder

	b.WriteString(styles.Subtitle.Render("Installed Skills"))
	b.WriteString("\n\n")

	if s.list.Len() == 0 {
		b.WriteString(styles.Muted.Render("No skills installed"))
		b.WriteString("\n\n")
		b.WriteString(styles.Muted.Render("Press tab to browse the registry"))
	} else {
		b.WriteString(s.list.View())
	}

	b.WriteString("\n")

	b.WriteString(styles.FormatHelp(
		"j/k", "navigate",
		"enter", "details",
		"u", "update",
		"tab", "browse",
		"q", "back",
	))

	return b.String()
}
