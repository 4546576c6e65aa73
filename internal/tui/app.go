package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"clawhub/internal/config"
	"clawhub/internal/gateway"
	"clawhub/internal/install"
	"clawhub/internal/lockfile"
	"clawhub/internal/logger"
	"clawhub/internal/registry"
	"clawhub/internal/retry"
	"clawhub/internal/skillerr"
	"clawhub/internal/tui/screens"
	"clawhub/internal/tui/styles"
)

// Mode represents the application mode
type Mode int

const (
	ModeBrowse Mode = iota
	ModeInstalled
	ModeDetail
	ModeConfirm
	ModeLoading
	ModeError
)

// App is the main TUI application model
type App struct {
	cfg    *config.Config
	gw     gateway.Gateway
	policy retry.Policy

	browse    *screens.BrowseScreen
	list      *screens.InstalledScreen
	detail    *screens.DetailScreen
	confirm   *screens.ConfirmScreen
	loading   *screens.LoadingScreen
	installed map[string]string

	mode Mode
	// back is the mode to return to after a confirm, a load or an error.
	back Mode

	errorTitle  string
	errorDetail string
	errorHint   string

	message string
	width   int
	height  int
}

// Option configures an App.
type Option func(*App)

// WithRetryPolicy sets the retry policy for registry calls.
func WithRetryPolicy(p retry.Policy) Option {
	return func(a *App) {
		a.policy = p
	}
}

// WithDebounce sets how long typing must pause before a search is sent.
func WithDebounce(d time.Duration) Option {
	return func(a *App) {
		a.browse.SetDebounce(d)
	}
}

// NewApp creates a new TUI application
func NewApp(cfg *config.Config, gw gateway.Gateway, opts ...Option) *App {
	installed := map[string]string{}
	a := &App{
		cfg:       cfg,
		gw:        gw,
		policy:    retry.DefaultPolicy(),
		browse:    screens.NewBrowseScreen(installed),
		list:      screens.NewInstalledScreen(lockfile.New()),
		installed: installed,
		mode:      ModeBrowse,
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Mode returns the current mode.
func (a *App) Mode() Mode {
	return a.mode
}

// Init loads the lockfile and the trending list
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadInstalled, a.search(""))
}

// Messages
type (
	installedLoadedMsg struct{ lock *lockfile.LockFile }
	lockErrMsg         struct{ err error }
	searchDoneMsg      struct {
		query   string
		results []registry.SearchResult
	}
	searchErrMsg struct {
		query string
		err   error
	}
	detailDoneMsg  struct{ meta *registry.SkillMeta }
	detailErrMsg   struct{ err error }
	installDoneMsg struct{ result *install.Result }
	installErrMsg  struct{ err error }
)

func (a *App) loadInstalled() tea.Msg {
	lock, err := a.gw.ReadLockfile(a.cfg.LockfilePath)
	if err != nil {
		return lockErrMsg{err}
	}
	return installedLoadedMsg{lock}
}

func (a *App) search(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := retry.DoWith(context.Background(), a.policy, func(ctx context.Context) ([]registry.SearchResult, error) {
			return a.gw.Search(ctx, query, a.cfg.SearchLimit, registry.SortTrending)
		})
		if err != nil {
			return searchErrMsg{query: query, err: err}
		}
		return searchDoneMsg{query: query, results: results}
	}
}

func (a *App) fetchDetail(slug string) tea.Cmd {
	return func() tea.Msg {
		meta, err := retry.DoWith(context.Background(), a.policy, func(ctx context.Context) (*registry.SkillMeta, error) {
			return a.gw.GetSkill(ctx, slug)
		})
		if err != nil {
			return detailErrMsg{err}
		}
		return detailDoneMsg{meta}
	}
}

func (a *App) installSkill(slug, version string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.DownloadTimeout)
		defer cancel()

		opts := install.Options{SkipSecurity: a.cfg.SkipSecurityWarnings}
		result, err := retry.DoWith(ctx, a.policy, func(ctx context.Context) (*install.Result, error) {
			return a.gw.Install(ctx, slug, version, a.cfg.SkillsDir, a.cfg.LockfilePath, opts)
		})
		if err != nil {
			return installErrMsg{err}
		}
		return installDoneMsg{result}
	}
}

// Update handles all application events
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browse.Update(msg)
		a.list.Update(msg)
		if a.detail != nil {
			a.detail.Update(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.updateKey(msg)

	case installedLoadedMsg:
		a.setInstalled(msg.lock)
		return a, nil

	case lockErrMsg:
		logger.Warnf("failed to read lockfile: %v", msg.err)
		a.message = styles.WarningMsg.Render("Lockfile unreadable: " + msg.err.Error())
		return a, nil

	case screens.SearchMsg:
		a.browse.SetLoading(msg.Query)
		return a, a.search(msg.Query)

	case searchDoneMsg:
		a.browse.SetResults(msg.query, msg.results)
		return a, nil

	case searchErrMsg:
		logger.Debugw("search failed", "query", msg.query, "error", msg.err)
		a.browse.SetError(msg.query, msg.err)
		return a, nil

	case screens.ShowInstalledMsg:
		a.mode = ModeInstalled
		return a, a.loadInstalled

	case screens.SelectSkillMsg:
		return a, a.startLoading(fmt.Sprintf("Fetching %s...", msg.Slug), a.fetchDetail(msg.Slug))

	case detailDoneMsg:
		a.detail = screens.NewDetailScreen(msg.meta, a.installed[msg.meta.Slug])
		a.detail.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		a.mode = ModeDetail
		return a, nil

	case detailErrMsg:
		a.showError("Inspect failed", msg.err)
		return a, nil

	case screens.InstallSkillMsg:
		a.confirm = screens.NewConfirmScreen(msg.Slug, msg.Version, msg.Scan)
		a.back = a.mode
		a.mode = ModeConfirm
		return a, nil

	case screens.CancelledMsg:
		a.mode = a.back
		return a, nil

	case screens.ConfirmedMsg:
		label := msg.Slug
		if msg.Version != "" {
			label += "@" + msg.Version
		}
		return a, a.startLoading(fmt.Sprintf("Installing %s...", label), a.installSkill(msg.Slug, msg.Version))

	case installDoneMsg:
		a.onInstalled(msg.result)
		return a, a.loadInstalled

	case installErrMsg:
		a.showError("Install failed", msg.err)
		return a, nil

	case screens.BackMsg:
		switch a.mode {
		case ModeBrowse:
			return a, tea.Quit
		case ModeInstalled, ModeDetail:
			a.mode = ModeBrowse
		}
		return a, nil
	}

	// Spinner ticks and debounced searches
	if a.mode == ModeLoading && a.loading != nil {
		_, cmd := a.loading.Update(msg)
		return a, cmd
	}
	_, cmd := a.browse.Update(msg)
	return a, cmd
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.mode {
	case ModeBrowse:
		a.message = ""
		_, cmd = a.browse.Update(msg)
	case ModeInstalled:
		_, cmd = a.list.Update(msg)
	case ModeDetail:
		_, cmd = a.detail.Update(msg)
	case ModeConfirm:
		_, cmd = a.confirm.Update(msg)
	case ModeError:
		switch msg.String() {
		case "enter", "esc", "q":
			a.mode = a.back
		}
	}
	return a, cmd
}

func (a *App) startLoading(message string, work tea.Cmd) tea.Cmd {
	if a.mode != ModeConfirm {
		a.back = a.mode
	}
	a.loading = screens.NewLoadingScreen(message)
	a.mode = ModeLoading
	return tea.Batch(a.loading.Init(), work)
}

func (a *App) setInstalled(lock *lockfile.LockFile) {
	installed := make(map[string]string, len(lock.Skills))
	for slug, e := range lock.Skills {
		installed[slug] = e.InstalledVersion
	}
	a.installed = installed
	a.browse.SetInstalled(installed)
	a.list.Refresh(lock)
}

func (a *App) onInstalled(result *install.Result) {
	a.installed[result.Slug] = result.Version
	a.browse.SetInstalled(a.installed)
	if a.detail != nil && a.detail.Slug() == result.Slug {
		a.detail.SetInstalled(result.Version)
	}

	var b strings.Builder
	b.WriteString(styles.SuccessMsg.Render(result.Message))
	if result.RequiresRestart {
		b.WriteString(styles.Muted.Render("  Restart or reload skills to activate."))
	}
	for _, w := range result.Warnings {
		b.WriteString("\n")
		b.WriteString(styles.WarningMsg.Render("Warning: " + w))
	}
	a.message = b.String()
	a.mode = a.back
}

func (a *App) showError(title string, err error) {
	logger.Debugw("tui operation failed", "title", title, "kind", skillerr.KindOf(err).String(), "error", err)
	a.errorTitle = title
	a.errorDetail = err.Error()
	a.errorHint = skillerr.Hint(err)
	a.mode = ModeError
}

// View renders the application
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("clawhub"))
	b.WriteString("  ")
	b.WriteString(styles.Subtitle.Render(a.cfg.Registry))
	b.WriteString("\n")

	switch a.mode {
	case ModeBrowse:
		b.WriteString(a.browse.View())
	case ModeInstalled:
		b.WriteString(a.list.View())
	case ModeDetail:
		b.WriteString(a.detail.View())
	case ModeConfirm:
		b.WriteString(a.confirm.View())
	case ModeLoading:
		b.WriteString(a.loading.View())
	case ModeError:
		b.WriteString(a.renderError())
	}

	if a.message != "" && a.mode != ModeError {
		b.WriteString("\n")
		b.WriteString(a.message)
	}

	return b.String()
}

func (a *App) renderError() string {
	var b strings.Builder
	b.WriteString(styles.ErrorMsg.Render(a.errorTitle))
	b.WriteString("\n\n")
	b.WriteString(a.errorDetail)
	b.WriteString("\n")
	if a.errorHint != "" {
		b.WriteString(styles.Muted.Render("Hint: " + a.errorHint))
		b.WriteString("\n")
	}
	b.WriteString(styles.FormatHelp("enter/esc", "close"))
	return b.String()
}

// Run starts the TUI application
func Run(cfg *config.Config, gw gateway.Gateway) error {
	app := NewApp(cfg, gw)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
