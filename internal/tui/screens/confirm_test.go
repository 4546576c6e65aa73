package screens

import (
	"strings"
	"testing"

	"clawhub/internal/registry"
	tt "clawhub/internal/tui/testing"
)

func TestConfirmScreen_Yes(t *testing.T) {
	harness := tt.NewTestHarness(NewConfirmScreen("weather", "1.0.0", nil))

	cmd := harness.SendKey("y")
	msg, ok := cmd().(ConfirmedMsg)
	if !ok {
		t.Fatalf("Expected ConfirmedMsg, got %T", cmd())
	}
	if msg.Slug != "weather" || msg.Version != "1.0.0" {
		t.Errorf("Unexpected confirmation %+v", msg)
	}
}

func TestConfirmScreen_EnterOnNoCancels(t *testing.T) {
	harness := tt.NewTestHarness(NewConfirmScreen("weather", "", nil))

	harness.SendKey("right")
	cmd := harness.SendKey("enter")
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("Expected CancelledMsg, got %T", cmd())
	}
}

func TestConfirmScreen_Esc(t *testing.T) {
	harness := tt.NewTestHarness(NewConfirmScreen("weather", "", nil))

	cmd := harness.SendKey("esc")
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("Expected CancelledMsg, got %T", cmd())
	}
}

func TestConfirmScreen_View(t *testing.T) {
	screen := NewConfirmScreen("pdf-tools", "", &registry.ScanStatus{Status: "suspicious"})

	view := screen.View()
	for _, want := range []string{"Install pdf-tools latest?", "suspicious"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q, got:\n%s", want, view)
		}
	}
}
