package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clawhub/internal/archive/archivetest"
	"clawhub/internal/lockfile"
	"clawhub/internal/retry"
)

func TestMain(m *testing.M) {
	retryPolicy = retry.Policy{Attempts: 1}
	os.Exit(m.Run())
}

type testEnv struct {
	dir       string
	skillsDir string
	lockPath  string
	cfgPath   string
	registry  string
	downloads *atomic.Int32
}

// fakeRegistry serves weather (clean), miner (malicious) and a search index.
func fakeRegistry(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var downloads atomic.Int32
	weather := map[string][]byte{
		"1.0.0": archivetest.Skill(t, "weather", "1.0.0", nil),
		"2.0.1": archivetest.Skill(t, "weather", "2.0.1", map[string]string{"forecast.md": "sunny"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.Contains("weather forecasts", strings.ToLower(r.URL.Query().Get("q"))) {
			_, _ = w.Write([]byte(`{"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[
			{"slug":"weather","name":"Weather","description":"Forecasts","install_count":12840,"virustotal":{"status":"clean"}},
			{"slug":"weather-alerts","name":"Alerts","description":"Severe weather alerts","install_count":40}]}`))
	})
	mux.HandleFunc("GET /api/v1/skills/weather", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slug":"weather","name":"Weather","description":"Forecasts",
			"versions":[{"version":"1.0.0","latest":false},{"version":"2.0.1","latest":true}],
			"virustotal":{"status":"clean","report_count":0}}`))
	})
	mux.HandleFunc("GET /api/v1/skills/weather/versions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"version":"1.0.0","latest":false},{"version":"2.0.1","latest":true}]`))
	})
	mux.HandleFunc("GET /api/v1/skills/miner", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slug":"miner","name":"Miner","description":"Mines",
			"versions":[{"version":"0.1.0","latest":true}],
			"virustotal":{"status":"malicious","report_count":7}}`))
	})
	mux.HandleFunc("GET /api/v1/skills/nova", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slug":"nova","name":"Nova","versions":[{"version":"0.2.0","latest":true}]}`))
	})
	mux.HandleFunc("GET /api/v1/download", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		switch r.URL.Query().Get("slug") {
		case "weather":
			data, ok := weather[r.URL.Query().Get("version")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(data)
		case "miner":
			_, _ = w.Write(archivetest.Skill(t, "miner", "0.1.0", nil))
		case "nova":
			_, _ = w.Write(archivetest.Skill(t, "nova", "0.2.0", nil))
		default:
			http.NotFound(w, r)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &downloads
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv, downloads := fakeRegistry(t)
	dir := t.TempDir()
	return &testEnv{
		dir:       dir,
		skillsDir: filepath.Join(dir, "skills"),
		lockPath:  filepath.Join(dir, "lock.json"),
		cfgPath:   filepath.Join(dir, "config", "config.toml"),
		registry:  srv.URL,
		downloads: downloads,
	}
}

// run executes the root command with the environment's paths and returns
// stdout and stderr.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{
		"--config", e.cfgPath,
		"--registry", e.registry,
		"--skills-dir", e.skillsDir,
		"--lockfile", e.lockPath,
	}, args...))

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) lockedVersion(t *testing.T, slug string) string {
	t.Helper()
	lock, err := lockfile.Read(e.lockPath)
	require.NoError(t, err)
	entry, _ := lock.Get(slug)
	return entry.InstalledVersion
}

// resetFlags restores every flag in the tree to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestParseSkillArg(t *testing.T) {
	tests := []struct {
		arg, slug, version string
	}{
		{"weather", "weather", ""},
		{"weather@2.0.1", "weather", "2.0.1"},
		{" weather @ 1.0.0 ", "weather", "1.0.0"},
		{"weather@", "weather", ""},
	}
	for _, tt := range tests {
		slug, version := parseSkillArg(tt.arg)
		assert.Equal(t, tt.slug, slug, tt.arg)
		assert.Equal(t, tt.version, version, tt.arg)
	}
}

func TestParseInstallArg_UsageErrors(t *testing.T) {
	for _, arg := range []string{"", "../etc", ".hidden", "weather@latest", "weather@1.x.y"} {
		_, _, err := parseInstallArg(arg)
		assert.Error(t, err, arg)
	}

	for _, arg := range []string{"weather@1.2", "weather@v1.2.0", "weather@2.0.0-beta.1"} {
		_, version, err := parseInstallArg(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, strings.SplitN(arg, "@", 2)[1], version, "pins are passed through unchanged")
	}

	slug, version, err := parseInstallArg("weather@2.0.1")
	require.NoError(t, err)
	assert.Equal(t, "weather", slug)
	assert.Equal(t, "2.0.1", version)
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, stateCurrent, compareVersions("2.0.1", "2.0.1"))
	assert.Equal(t, stateUpgrade, compareVersions("1.0.0", "2.0.1"))
	assert.Equal(t, stateDowngrade, compareVersions("3.0.0", "2.0.1"))
	assert.Equal(t, stateDiffers, compareVersions("nightly", "2.0.1"))
}

func TestInstall_LatestThenNoOp(t *testing.T) {
	e := newTestEnv(t)

	out, errOut, err := e.run(t, "", "skill", "install", "weather")
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Contains(t, out, "Installed weather v2.0.1")
	assert.Contains(t, out, "Restart or reload skills to activate.")
	assert.FileExists(t, filepath.Join(e.skillsDir, "weather", "forecast.md"))
	assert.Equal(t, "2.0.1", e.lockedVersion(t, "weather"))

	out, _, err = e.run(t, "", "skill", "install", "weather")
	require.NoError(t, err)
	assert.Contains(t, out, "already up to date")
	assert.NotContains(t, out, "Restart")
	assert.Equal(t, int32(1), e.downloads.Load())
}

func TestInstall_PinnedVersionThenUpdate(t *testing.T) {
	e := newTestEnv(t)

	out, _, err := e.run(t, "", "skill", "install", "weather@1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed weather v1.0.0")

	out, _, err = e.run(t, "", "skill", "outdated")
	require.NoError(t, err)
	assert.Contains(t, out, "weather")
	assert.Contains(t, out, "1.0.0 -> 2.0.1")

	out, _, err = e.run(t, "", "skill", "update")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated weather from v1.0.0 to v2.0.1")
	assert.Contains(t, out, "Updated: 1, up to date: 0, failed: 0")
	assert.Equal(t, "2.0.1", e.lockedVersion(t, "weather"))

	out, _, err = e.run(t, "", "skill", "outdated")
	require.NoError(t, err)
	assert.Contains(t, out, "All skills are up to date")
}

func TestInstall_MaliciousIsReportedNotFatal(t *testing.T) {
	e := newTestEnv(t)

	_, errOut, err := e.run(t, "", "skill", "install", "miner")
	require.NoError(t, err, "operation failures keep exit status zero")
	assert.Contains(t, errOut, "Install failed:")
	assert.Contains(t, errOut, "security gate")
	assert.NoDirExists(t, filepath.Join(e.skillsDir, "miner"))
	assert.Empty(t, e.lockedVersion(t, "miner"))

	out, _, err := e.run(t, "", "skill", "install", "--skip-security", "miner")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed miner v0.1.0")
}

func TestInstall_UnscannedWarnsOnce(t *testing.T) {
	e := newTestEnv(t)

	out, errOut, err := e.run(t, "", "skill", "install", "nova")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed nova v0.2.0")
	assert.Equal(t, 1, strings.Count(errOut, "has not been scanned yet"))
}

func TestInstall_SkipSecurityFromConfig(t *testing.T) {
	e := newTestEnv(t)

	_, _, err := e.run(t, "", "config", "set", "skip_security_warnings", "true")
	require.NoError(t, err)

	out, errOut, err := e.run(t, "", "skill", "install", "miner")
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Contains(t, out, "Installed miner v0.1.0")
}

func TestInstall_NotFound(t *testing.T) {
	e := newTestEnv(t)

	_, errOut, err := e.run(t, "", "skill", "install", "ghost")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Install failed:")
	assert.Contains(t, errOut, "Hint: check the skill slug")
}

func TestInstall_UsageErrorIsFatal(t *testing.T) {
	e := newTestEnv(t)

	_, _, err := e.run(t, "", "skill", "install", "weather@newest")
	assert.Error(t, err)

	_, _, err = e.run(t, "", "skill", "install")
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	e := newTestEnv(t)

	out, _, err := e.run(t, "", "skill", "search", "weather", "--sort", "name")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 skill(s) matching 'weather'")
	assert.Contains(t, out, "12,840 installs")
	assert.Contains(t, out, "clean")
	assert.Less(t, strings.Index(out, "weather-alerts"), strings.Index(out, "weather  "),
		"sorted by name: Alerts before Weather")

	out, _, err = e.run(t, "", "skill", "search", "zebra")
	require.NoError(t, err)
	assert.Contains(t, out, "No skills matching 'zebra'")

	_, _, err = e.run(t, "", "skill", "search", "weather", "--sort", "stars")
	assert.Error(t, err)
}

func TestSearch_RegistryDown(t *testing.T) {
	e := newTestEnv(t)
	e.registry = "http://127.0.0.1:1"

	_, errOut, err := e.run(t, "", "skill", "search", "weather")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Search failed:")
	assert.Contains(t, errOut, "Hint: the registry could not be reached")
}

func TestInspect(t *testing.T) {
	e := newTestEnv(t)

	_, _, err := e.run(t, "", "skill", "install", "weather@1.0.0")
	require.NoError(t, err)

	out, _, err := e.run(t, "", "skill", "inspect", "weather")
	require.NoError(t, err)
	for _, want := range []string{"Weather (weather)", "Forecasts", "clean", "2.0.1", "latest", "installed"} {
		assert.Contains(t, out, want)
	}
}

func TestListAndRemove(t *testing.T) {
	e := newTestEnv(t)

	out, _, err := e.run(t, "", "skill", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No skills installed")

	_, _, err = e.run(t, "", "skill", "install", "weather")
	require.NoError(t, err)

	out, _, err = e.run(t, "", "skill", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "weather@2.0.1")

	out, _, err = e.run(t, "n\n", "skill", "remove", "weather")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.DirExists(t, filepath.Join(e.skillsDir, "weather"))

	out, _, err = e.run(t, "y\n", "skill", "remove", "weather")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed weather")
	assert.NoDirExists(t, filepath.Join(e.skillsDir, "weather"))
	assert.Empty(t, e.lockedVersion(t, "weather"))

	_, errOut, err := e.run(t, "", "skill", "remove", "-f", "weather")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Remove failed:")
}

func TestUpdate_NotInstalled(t *testing.T) {
	e := newTestEnv(t)

	_, errOut, err := e.run(t, "", "skill", "update", "weather")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Update failed: ")
	assert.Contains(t, errOut, "not installed")
}

func TestList_CorruptLockfile(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, os.WriteFile(e.lockPath, []byte("{not json"), 0o644))

	_, errOut, err := e.run(t, "", "skill", "list")
	require.NoError(t, err)
	assert.Contains(t, errOut, "List failed:")
	assert.Contains(t, errOut, "malformed")
}

func TestAvailable(t *testing.T) {
	e := newTestEnv(t)
	broken := filepath.Join(e.skillsDir, "broken")
	require.NoError(t, os.MkdirAll(broken, 0o755))

	out, _, err := e.run(t, "", "skill", "available")
	require.NoError(t, err)
	assert.Contains(t, out, "find-skills")
	assert.Contains(t, out, "skill-creator")
	assert.NotContains(t, out, "broken")
	assert.Contains(t, out, "2 valid, 1 invalid (use --all to see why)")

	out, _, err = e.run(t, "", "skill", "available", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "missing SKILL.md")
}

func TestConfigShowSetPath(t *testing.T) {
	e := newTestEnv(t)

	out, _, err := e.run(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, e.cfgPath, strings.TrimSpace(out))

	_, _, err = e.run(t, "", "config", "set", "token", "abcd1234efgh5678")
	require.NoError(t, err)
	_, _, err = e.run(t, "", "config", "set", "search_limit", "25")
	require.NoError(t, err)

	out, _, err = e.run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "search_limit")
	assert.Contains(t, out, "25 (file)")
	assert.Contains(t, out, "abcd…5678")
	assert.NotContains(t, out, "abcd1234efgh5678")
	assert.Contains(t, out, e.registry)

	_, _, err = e.run(t, "", "config", "set", "colour", "blue")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("") })

	out, _, err := e.run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "clawhub 1.2.3\n", out)
	assert.Equal(t, "clawhub-cli/1.2.3", userAgent())
}

func TestUserAgentSentToRegistry(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(srv.Close)

	e := newTestEnv(t)
	e.registry = srv.URL

	_, _, err := e.run(t, "", "skill", "search", "anything")
	require.NoError(t, err)
	assert.Equal(t, "clawhub-cli/dev", got.Load())
}
