package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/retry"
	"clawhub/internal/skillerr"
	ttesting "clawhub/internal/tui/testing"
)

func newTestApp(t *testing.T) (*App, *ttesting.FakeGateway, *ttesting.TestHarness) {
	t.Helper()
	gw := ttesting.NewFakeGateway(ttesting.TestSkills())
	app := NewApp(ttesting.TestConfig(t.TempDir()), gw,
		WithRetryPolicy(retry.Policy{Attempts: 1}),
		WithDebounce(time.Millisecond),
	)
	h := ttesting.NewTestHarness(app)
	h.Drain(h.Init())
	return app, gw, h
}

func TestApp_CtrlC_Quits(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected a command to be returned")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ctrl+C should return tea.Quit")
	}
}

func TestApp_InitLoadsTrending(t *testing.T) {
	_, gw, h := newTestApp(t)

	if q := gw.Queries(); len(q) != 1 || q[0] != "" {
		t.Errorf("Expected one empty-query search, got %q", q)
	}
	view := h.View()
	for _, want := range []string{"weather", "pdf-tools", "https://clawhub.ai"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}
}

func TestApp_WindowSizeMsg_UpdatesDimensions(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if app.width != 120 || app.height != 40 {
		t.Errorf("Expected 120x40, got %dx%d", app.width, app.height)
	}
}

func TestApp_SearchAsYouType(t *testing.T) {
	_, gw, h := newTestApp(t)

	h.SendKey("/")
	for _, k := range []string{"p", "d", "f"} {
		h.Drain(h.SendKey(k))
	}

	queries := gw.Queries()
	if got := queries[len(queries)-1]; got != "pdf" {
		t.Errorf("Expected last query 'pdf', got %q", got)
	}
	view := h.View()
	if !strings.Contains(view, "pdf-tools") {
		t.Error("Results should contain pdf-tools")
	}
	if strings.Contains(view, "crypto-miner") {
		t.Error("Results should be filtered")
	}
}

func TestApp_DetailAndBack(t *testing.T) {
	app, _, h := newTestApp(t)

	h.Drain(h.SendKey("enter"))
	if app.Mode() != ModeDetail {
		t.Fatalf("Expected detail mode, got %v", app.Mode())
	}
	if !strings.Contains(h.View(), "Weather (weather)") {
		t.Error("Detail view should show the selected skill")
	}

	h.Drain(h.SendKey("esc"))
	if app.Mode() != ModeBrowse {
		t.Errorf("Expected browse mode after esc, got %v", app.Mode())
	}
}

func TestApp_InstallFlow(t *testing.T) {
	app, gw, h := newTestApp(t)

	h.Drain(h.SendKey("i"))
	if app.Mode() != ModeConfirm {
		t.Fatalf("Expected confirm mode, got %v", app.Mode())
	}

	h.Drain(h.SendKey("y"))
	if app.Mode() != ModeBrowse {
		t.Fatalf("Expected browse mode after install, got %v", app.Mode())
	}

	installs := gw.Installs()
	if len(installs) != 1 || installs[0].Slug != "weather" || installs[0].Version != "" {
		t.Fatalf("Unexpected installs %+v", installs)
	}
	view := h.View()
	if !strings.Contains(view, "Installed weather v2.0.1") {
		t.Error("View should report the install")
	}
	if !strings.Contains(view, "Restart or reload skills to activate.") {
		t.Error("View should ask for a restart")
	}
	if !strings.Contains(view, "weather@2.0.1") {
		t.Error("List should show the installed version")
	}
}

func TestApp_InstallPassesSkipSecurityFromConfig(t *testing.T) {
	gw := ttesting.NewFakeGateway(ttesting.TestSkills())
	cfg := ttesting.TestConfig(t.TempDir())
	cfg.SkipSecurityWarnings = true
	h := ttesting.NewTestHarness(NewApp(cfg, gw, WithRetryPolicy(retry.Policy{Attempts: 1})))
	h.Drain(h.Init())

	h.Drain(h.SendKey("i"))
	h.Drain(h.SendKey("y"))

	installs := gw.Installs()
	if len(installs) != 1 || !installs[0].Options.SkipSecurity {
		t.Errorf("Expected SkipSecurity install, got %+v", installs)
	}
}

func TestApp_InstallCancelled(t *testing.T) {
	app, gw, h := newTestApp(t)

	h.Drain(h.SendKey("i"))
	h.Drain(h.SendKey("n"))

	if app.Mode() != ModeBrowse {
		t.Errorf("Expected browse mode after cancel, got %v", app.Mode())
	}
	if len(gw.Installs()) != 0 {
		t.Error("Cancelled install should not reach the gateway")
	}
}

func TestApp_InstallErrorShowsHint(t *testing.T) {
	app, gw, h := newTestApp(t)
	gw.InstallErr = skillerr.New(skillerr.KindGateDenied, "security gate", "crypto-miner is flagged malicious")

	h.SendKeys("j", "j")
	h.Drain(h.SendKey("i"))
	h.Drain(h.SendKey("y"))

	if app.Mode() != ModeError {
		t.Fatalf("Expected error mode, got %v", app.Mode())
	}
	view := h.View()
	for _, want := range []string{"Install failed", "flagged malicious", "security gate"} {
		if !strings.Contains(view, want) {
			t.Errorf("Error view should contain %q, got:\n%s", want, view)
		}
	}

	h.SendKey("enter")
	if app.Mode() != ModeBrowse {
		t.Errorf("Expected browse mode after closing the error, got %v", app.Mode())
	}
}

func TestApp_InstalledView(t *testing.T) {
	app, gw, h := newTestApp(t)
	gw.SetInstalled("notes", "0.3.0")

	h.Drain(h.SendKey("tab"))
	if app.Mode() != ModeInstalled {
		t.Fatalf("Expected installed mode, got %v", app.Mode())
	}
	if !strings.Contains(h.View(), "notes@0.3.0") {
		t.Error("Installed view should list the locked version")
	}

	h.Drain(h.SendKey("q"))
	if app.Mode() != ModeBrowse {
		t.Errorf("Expected browse mode, got %v", app.Mode())
	}
}

func TestApp_SearchErrorShown(t *testing.T) {
	gw := ttesting.NewFakeGateway(nil)
	gw.SearchErr = skillerr.New(skillerr.KindRegistry, "search", "connection refused")
	h := ttesting.NewTestHarness(NewApp(ttesting.TestConfig(t.TempDir()), gw, WithRetryPolicy(retry.Policy{Attempts: 1})))
	h.Drain(h.Init())

	if !strings.Contains(h.View(), "Search failed") {
		t.Error("View should show the search failure")
	}
}

func TestApp_QuitFromBrowse(t *testing.T) {
	_, _, h := newTestApp(t)

	msgs := h.Drain(h.SendKey("q"))
	quit := false
	for _, m := range msgs {
		if _, ok := m.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Error("q on the browse screen should quit")
	}
}
