package screens

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/tui/components"
)

// LoadingScreen shows a spinner while a registry call runs
type LoadingScreen struct {
	spinner components.Spinner
	width   int
	height  int
}

// NewLoadingScreen creates a new loading screen
func NewLoadingScreen(message string) *LoadingScreen {
	return &LoadingScreen{
		spinner: components.NewSpinner(message),
		width:   80,
		height:  24,
	}
}

// Init starts the spinner
func (s *LoadingScreen) Init() tea.Cmd {
	return s.spinner.Tick()
}

// Update handles events
func (s *LoadingScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		s.width = msg.Width
		s.height = msg.Height
		return s, nil
	}
	return s, s.spinner.Update(msg)
}

// Message returns the status line.
func (s *LoadingScreen) Message() string {
	return s.spinner.Message()
}

// View renders the screen
func (s *LoadingScreen) View() string {
	var b strings.Builder
	b.WriteString(s.spinner.View())
	b.WriteString("\n")
	return b.String()
}
