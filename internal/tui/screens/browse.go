package screens

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/registry"
	"clawhub/internal/tui/components"
	"clawhub/internal/tui/styles"
)

// DefaultDebounce is how long typing must pause before a search is sent.
const DefaultDebounce = 300 * time.Millisecond

// BrowseScreen searches the registry as the user types
type BrowseScreen struct {
	list        components.SkillList
	searchInput textinput.Model
	searching   bool
	query       string
	seq         int
	debounce    time.Duration
	loading     bool
	err         error
	width       int
	height      int
}

// NewBrowseScreen creates a new browse screen
func NewBrowseScreen(installed map[string]string) *BrowseScreen {
	ti := textinput.New()
	ti.Placeholder = "Search skills..."
	ti.CharLimit = 100
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &BrowseScreen{
		list:        components.NewSkillList(nil, installed),
		searchInput: ti,
		debounce:    DefaultDebounce,
		loading:     true,
		width:       80,
		height:      24,
	}
}

// SetDebounce changes the typing pause before a search is sent.
func (s *BrowseScreen) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Query returns the query the results belong to.
func (s *BrowseScreen) Query() string {
	return s.query
}

// Searching reports whether the search box has focus.
func (s *BrowseScreen) Searching() bool {
	return s.searching
}

// SetLoading marks a search for query as in flight.
func (s *BrowseScreen) SetLoading(query string) {
	if query == s.query {
		s.loading = true
	}
}

// SetResults shows results for query. Results for a stale query are dropped.
func (s *BrowseScreen) SetResults(query string, results []registry.SearchResult) {
	if query != s.query {
		return
	}
	s.loading = false
	s.err = nil
	s.list.SetSkills(results)
}

// SetError shows a failed search for query.
func (s *BrowseScreen) SetError(query string, err error) {
	if query != s.query {
		return
	}
	s.loading = false
	s.err = err
}

// SetInstalled updates the installed versions shown next to results.
func (s *BrowseScreen) SetInstalled(installed map[string]string) {
	s.list.SetInstalled(installed)
}

// Selected returns the highlighted result.
func (s *BrowseScreen) Selected() *registry.SearchResult {
	return s.list.Selected()
}

// Init initializes the screen
func (s *BrowseScreen) Init() tea.Cmd {
	return nil
}

// Update handles events
func (s *BrowseScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.list.SetHeight(s.height - 10) // header, search bar and help
		return s, nil

	case searchTickMsg:
		if msg.seq != s.seq || msg.query == s.query {
			return s, nil
		}
		return s, s.search(msg.query)

	case tea.KeyMsg:
		if s.searching {
			return s.handleSearchInput(msg)
		}
		return s.handleNavigation(msg)
	}

	return s, nil
}

func (s *BrowseScreen) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		s.searching = false
		s.searchInput.Blur()
		if q := s.searchInput.Value(); q != s.query {
			return s, s.search(q)
		}
		return s, nil

	case "esc":
		s.searching = false
		s.searchInput.Blur()
		s.searchInput.SetValue(s.query)
		s.seq++ // drop pending ticks
		return s, nil

	case "up", "down":
		s.list.Update(msg)
		return s, nil
	}

	before := s.searchInput.Value()
	var cmd tea.Cmd
	s.searchInput, cmd = s.searchInput.Update(msg)
	after := s.searchInput.Value()
	if after == before {
		return s, cmd
	}

	s.seq++
	seq := s.seq
	tick := tea.Tick(s.debounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq, query: after}
	})
	return s, tea.Batch(cmd, tick)
}

func (s *BrowseScreen) handleNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return s, func() tea.Msg { return BackMsg{} }

	case "/":
		s.searching = true
		return s, s.searchInput.Focus()

	case "enter":
		if skill := s.list.Selected(); skill != nil {
			slug := skill.Slug
			return s, func() tea.Msg { return SelectSkillMsg{Slug: slug} }
		}

	case "i":
		if skill := s.list.Selected(); skill != nil {
			install := InstallSkillMsg{Slug: skill.Slug, Scan: skill.VirusTotal}
			return s, func() tea.Msg { return install }
		}

	case "tab", "L":
		return s, func() tea.Msg { return ShowInstalledMsg{} }

	case "r":
		s.loading = true
		return s, s.emitSearch(s.query)

	case "c":
		s.searchInput.SetValue("")
		if s.query != "" {
			return s, s.search("")
		}

	default:
		s.list.Update(msg)
	}

	return s, nil
}

func (s *BrowseScreen) search(query string) tea.Cmd {
	s.query = query
	s.loading = true
	s.err = nil
	return s.emitSearch(query)
}

func (s *BrowseScreen) emitSearch(query string) tea.Cmd {
	return func() tea.Msg { return SearchMsg{Query: query} }
}

// View renders the screen
func (s *BrowseScreen) View() string {
	var b strings.Builder

	b.WriteString(styles.SearchPrompt.Render("Search: "))
	switch {
	case s.searching:
		b.WriteString(s.searchInput.View())
	case s.query != "":
		b.WriteString(s.query)
	default:
		b.WriteString(styles.Muted.Render("trending (press / to search)"))
	}
	b.WriteString("\n\n")

	switch {
	case s.err != nil:
		b.WriteString(styles.ErrorMsg.Render("Search failed: " + s.err.Error()))
	case s.loading && s.list.Len() == 0:
		b.WriteString(styles.Muted.Render("Searching..."))
	default:
		b.WriteString(s.list.View())
	}
	b.WriteString("\n")

	if s.searching {
		b.WriteString(styles.FormatHelp(
			"enter", "search",
			"esc", "cancel",
		))
	} else {
		b.WriteString(styles.FormatHelp(
			"j/k", "navigate",
			"enter", "details",
			"i", "install",
			"/", "search",
			"tab", "installed",
			"r", "refresh",
			"q", "quit",
		))
	}

	return b.String()
}
