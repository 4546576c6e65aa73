package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", ConfigFileName)
	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultRegistry, cfg.Registry)
	assert.Empty(t, cfg.Token)
	assert.Equal(t, DefaultDownloadTimeout, cfg.DownloadTimeout)
	assert.Equal(t, DefaultSearchLimit, cfg.SearchLimit)
	assert.False(t, cfg.SkipSecurityWarnings)
	assert.Equal(t, path, cfg.ConfigPath)
	assert.True(t, strings.HasSuffix(cfg.SkillsDir, filepath.Join(AppName, SkillsDirName)), cfg.SkillsDir)
	assert.True(t, strings.HasSuffix(cfg.LockfilePath, filepath.Join(AppName, LockfileName)), cfg.LockfilePath)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
registry = "https://registry.example.com/"
token = "file-token"
skills_dir = "/opt/skills"
lockfile = "/opt/clawhub.lock"
skip_security_warnings = true
download_timeout = "45s"
search_limit = 25
`)
	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "https://registry.example.com", cfg.Registry)
	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, "/opt/skills", cfg.SkillsDir)
	assert.Equal(t, "/opt/clawhub.lock", cfg.LockfilePath)
	assert.True(t, cfg.SkipSecurityWarnings)
	assert.Equal(t, 45*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, 25, cfg.SearchLimit)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid toml", "registry = ", "failed to parse"},
		{"unknown key", `repos = ["a"]`, "unknown config key"},
		{"bad timeout", `download_timeout = "soon"`, "invalid download_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLoader(writeConfig(t, tt.content)).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// Not parallel: sets process environment.
func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
registry = "https://file.example.com"
token = "file-token"
`)
	t.Setenv("CLAWHUB_REGISTRY", "https://env.example.com")
	t.Setenv("CLAWHUB_TOKEN", "env-token")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("registry", "", "")
	flags.String("token", "", "")
	flags.Bool("debug", false, "")
	require.NoError(t, flags.Parse([]string{"--registry", "https://flag.example.com"}))

	loader := NewLoader(path)
	require.NoError(t, loader.BindFlags(flags))
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", cfg.Registry, "flags beat env")
	assert.Equal(t, "env-token", cfg.Token, "env beats file")
	assert.False(t, cfg.Debug)
}

// Not parallel: sets process environment.
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("CLAWHUB_TOKEN=dotenv-token\n"), 0o600))

	t.Setenv("CLAWHUB_TOKEN", "")
	require.NoError(t, os.Unsetenv("CLAWHUB_TOKEN"))
	require.NoError(t, LoadDotEnv(envPath))

	cfg, err := NewLoader(filepath.Join(dir, ConfigFileName)).Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.Token)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestSet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	require.NoError(t, Set(path, KeyRegistry, "https://mirror.example.com"))
	require.NoError(t, Set(path, KeySearchLimit, "5"))
	require.NoError(t, Set(path, KeySkipSecurityWarnings, "true"))
	require.NoError(t, Set(path, KeyDownloadTimeout, "90s"))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com", cfg.Registry)
	assert.Equal(t, 5, cfg.SearchLimit)
	assert.True(t, cfg.SkipSecurityWarnings)
	assert.Equal(t, 90*time.Second, cfg.DownloadTimeout)

	keys, err := SortedFileKeys(path)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyDownloadTimeout, KeyRegistry, KeySearchLimit, KeySkipSecurityWarnings}, keys)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSet_RejectsBadValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ConfigFileName)
	assert.Error(t, Set(path, "repos", "x"))
	assert.Error(t, Set(path, KeySearchLimit, "-1"))
	assert.Error(t, Set(path, KeyDebug, "maybe"))
	assert.Error(t, Set(path, KeyDownloadTimeout, "0s"))
	assert.NoFileExists(t, path)
}

func TestConfig_Get(t *testing.T) {
	t.Parallel()

	cfg := &Config{Registry: DefaultRegistry, Token: "clh_abcdefghijkl", SearchLimit: 10, DownloadTimeout: time.Minute}

	v, err := cfg.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "clh_…ijkl", v)

	v, err = cfg.Get(KeyDownloadTimeout)
	require.NoError(t, err)
	assert.Equal(t, "1m0s", v)

	_, err = cfg.Get("nope")
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/skills")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "skills"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}
