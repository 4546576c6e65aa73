package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/registry"
	"clawhub/internal/skillmd"
	"clawhub/internal/tui/styles"
)

// SkillList is a scrollable list of search results
type SkillList struct {
	skills []registry.SearchResult
	// installed maps slug to the installed version
	installed map[string]string
	cursor    int
	height    int
	offset    int
}

// NewSkillList creates a new skill list
func NewSkillList(skills []registry.SearchResult, installed map[string]string) SkillList {
	return SkillList{
		skills:    skills,
		installed: installed,
		height:    10,
	}
}

// SetSkills replaces the results and resets the cursor
func (l *SkillList) SetSkills(skills []registry.SearchResult) {
	l.skills = skills
	l.cursor = 0
	l.offset = 0
}

// SetInstalled updates the installed versions
func (l *SkillList) SetInstalled(installed map[string]string) {
	l.installed = installed
}

// SetHeight sets the visible height
func (l *SkillList) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	l.height = h
}

// Selected returns the currently selected skill
func (l *SkillList) Selected() *registry.SearchResult {
	if len(l.skills) == 0 {
		return nil
	}
	return &l.skills[l.cursor]
}

// SelectedIndex returns the current cursor position
func (l *SkillList) SelectedIndex() int {
	return l.cursor
}

// Len returns the number of skills
func (l *SkillList) Len() int {
	return len(l.skills)
}

// KeyMap defines key bindings for the list
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
	}
}

// Update handles key events
func (l *SkillList) Update(msg tea.Msg) tea.Cmd {
	km := DefaultKeyMap()

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, km.Up):
			l.MoveUp()
		case key.Matches(msg, km.Down):
			l.MoveDown()
		case key.Matches(msg, km.Top):
			l.MoveToTop()
		case key.Matches(msg, km.Bottom):
			l.MoveToBottom()
		}
	}
	return nil
}

// MoveUp moves the cursor up
func (l *SkillList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
		if l.cursor < l.offset {
			l.offset = l.cursor
		}
	}
}

// MoveDown moves the cursor down
func (l *SkillList) MoveDown() {
	if l.cursor < len(l.skills)-1 {
		l.cursor++
		if l.cursor >= l.offset+l.height {
			l.offset = l.cursor - l.height + 1
		}
	}
}

// MoveToTop moves to the first item
func (l *SkillList) MoveToTop() {
	l.cursor = 0
	l.offset = 0
}

// MoveToBottom moves to the last item
func (l *SkillList) MoveToBottom() {
	if len(l.skills) == 0 {
		return
	}
	l.cursor = len(l.skills) - 1
	if l.cursor >= l.height {
		l.offset = l.cursor - l.height + 1
	}
}

// View renders the list
func (l *SkillList) View() string {
	if len(l.skills) == 0 {
		return styles.Muted.Render("No skills found")
	}

	var b strings.Builder

	end := min(l.offset+l.height, len(l.skills))
	for i := l.offset; i < end; i++ {
		skill := l.skills[i]

		status := styles.StatusAvailable.String()
		name := skill.Slug
		if v, ok := l.installed[skill.Slug]; ok {
			status = styles.StatusInstalled.String()
			name = fmt.Sprintf("%s@%s", skill.Slug, v)
		}

		line := fmt.Sprintf("%s %-30s %8s", status, skillmd.Truncate(name, 30), styles.FormatCount(skill.InstallCount))
		if desc := skillmd.Truncate(skill.Description, 50); desc != "" {
			line += "  " + styles.Muted.Render(desc)
		}

		if i == l.cursor {
			line = styles.SelectedItem.Render(line)
		} else {
			line = styles.NormalItem.Render(line)
		}

		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if len(l.skills) > l.height {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  [%d/%d]", l.cursor+1, len(l.skills))))
	}

	return b.String()
}
