package testing

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// maxDrain bounds Drain so a model that keeps scheduling work cannot hang a test.
const maxDrain = 100

// TestHarness drives a Bubble Tea model without a terminal
type TestHarness struct {
	model tea.Model
}

// NewTestHarness wraps model
func NewTestHarness(model tea.Model) *TestHarness {
	return &TestHarness{model: model}
}

// Init returns the model's init command without running it
func (h *TestHarness) Init() tea.Cmd {
	return h.model.Init()
}

// View renders the current model
func (h *TestHarness) View() string {
	return h.model.View()
}

// SendKey delivers one key press and returns the command the model produced
func (h *TestHarness) SendKey(key string) tea.Cmd {
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(KeyMsg(key))
	return cmd
}

// SendKeys delivers keys in order
func (h *TestHarness) SendKeys(keys ...string) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, h.SendKey(key))
	}
	return cmds
}

// Drain runs cmd and every command produced while handling its messages,
// expanding batches. Spinner ticks are delivered once but not followed, so
// the animation does not loop forever. It returns the delivered messages.
func (h *TestHarness) Drain(cmd tea.Cmd) []tea.Msg {
	var msgs []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 && len(msgs) < maxDrain {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
			msgs = append(msgs, msg)
			h.model, _ = h.model.Update(msg)
		default:
			msgs = append(msgs, msg)
			var follow tea.Cmd
			h.model, follow = h.model.Update(msg)
			queue = append(queue, follow)
		}
	}
	return msgs
}

var namedKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEscape,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"backspace": tea.KeyBackspace,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"home":      tea.KeyHome,
	"end":       tea.KeyEnd,
	"ctrl+c":    tea.KeyCtrlC,
}

// KeyMsg converts a key name such as "enter" or "ctrl+c" to a tea.KeyMsg.
// Anything else is typed as literal runes.
func KeyMsg(key string) tea.KeyMsg {
	if t, ok := namedKeys[key]; ok {
		return tea.KeyMsg{Type: t}
	}
	if key == "space" {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}
