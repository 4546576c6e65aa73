package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/tui/styles"
)

// Spinner is a bubbles spinner with a status line next to it.
type Spinner struct {
	spinner spinner.Model
	message string
}

// NewSpinner creates a spinner showing message.
func NewSpinner(message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return Spinner{
		spinner: s,
		message: message,
	}
}

// SetMessage replaces the status line.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// Message returns the status line.
func (s Spinner) Message() string {
	return s.message
}

// Update advances the animation on spinner ticks. Other messages are ignored.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

func (s Spinner) View() string {
	return s.spinner.View() + " " + s.message
}

// Tick starts the animation.
func (s Spinner) Tick() tea.Cmd {
	return s.spinner.Tick
}
