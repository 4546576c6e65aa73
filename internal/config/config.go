package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName         = "clawhub"
	ConfigFileName  = "config.toml"
	LockfileName    = "lock.json"
	SkillsDirName   = "skills"
	EnvPrefix       = "CLAWHUB"
	DefaultRegistry = "https://clawhub.ai"

	DefaultDownloadTimeout = 2 * time.Minute
	DefaultSearchLimit     = 10
)

// Config keys, as written in config.toml. The environment variable for a key
// is EnvPrefix + "_" + upper-cased key, e.g. CLAWHUB_SKILLS_DIR.
const (
	KeyRegistry             = "registry"
	KeyToken                = "token"
	KeySkillsDir            = "skills_dir"
	KeyLockfile             = "lockfile"
	KeySkipSecurityWarnings = "skip_security_warnings"
	KeyDownloadTimeout      = "download_timeout"
	KeySearchLimit          = "search_limit"
	KeyDebug                = "debug"
)

// Keys lists every supported config key in display order.
var Keys = []string{
	KeyRegistry,
	KeyToken,
	KeySkillsDir,
	KeyLockfile,
	KeySkipSecurityWarnings,
	KeyDownloadTimeout,
	KeySearchLimit,
	KeyDebug,
}

// flagKeys maps persistent CLI flag names onto config keys.
var flagKeys = map[string]string{
	"registry":   KeyRegistry,
	"token":      KeyToken,
	"skills-dir": KeySkillsDir,
	"lockfile":   KeyLockfile,
	"debug":      KeyDebug,
}

// Config holds the runtime configuration
type Config struct {
	ConfigDir  string
	ConfigPath string

	Registry     string
	Token        string
	SkillsDir    string
	LockfilePath string
	// SkipSecurityWarnings makes installs behave as if --skip-security were passed.
	SkipSecurityWarnings bool
	DownloadTimeout      time.Duration
	SearchLimit          int
	Debug                bool
}

// ExpandPath expands ~ to home directory in a path
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/clawhub/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// DefaultDataDir returns $XDG_DATA_HOME/clawhub.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Loader resolves configuration from defaults, the TOML file, CLAWHUB_*
// environment variables and bound command-line flags, in increasing order of
// precedence.
type Loader struct {
	v          *viper.Viper
	configPath string
}

// NewLoader creates a loader for the config file at configPath, or the XDG
// default when configPath is empty.
func NewLoader(configPath string) *Loader {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	v := viper.New()
	dataDir := DefaultDataDir()
	v.SetDefault(KeyRegistry, DefaultRegistry)
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeySkillsDir, filepath.Join(dataDir, SkillsDirName))
	v.SetDefault(KeyLockfile, filepath.Join(dataDir, LockfileName))
	v.SetDefault(KeySkipSecurityWarnings, false)
	v.SetDefault(KeyDownloadTimeout, DefaultDownloadTimeout.String())
	v.SetDefault(KeySearchLimit, DefaultSearchLimit)
	v.SetDefault(KeyDebug, false)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return &Loader{v: v, configPath: configPath}
}

// BindFlags binds the known persistent flags in fs so that an explicitly set
// flag overrides the file and the environment.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load resolves the configuration.
func (l *Loader) Load() (*Config, error) {
	file, err := readFile(l.configPath)
	if err != nil {
		return nil, err
	}
	if err := l.v.MergeConfigMap(file); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	cfg := &Config{
		ConfigDir:            filepath.Dir(l.configPath),
		ConfigPath:           l.configPath,
		Registry:             strings.TrimRight(strings.TrimSpace(l.v.GetString(KeyRegistry)), "/"),
		Token:                strings.TrimSpace(l.v.GetString(KeyToken)),
		SkipSecurityWarnings: l.v.GetBool(KeySkipSecurityWarnings),
		SearchLimit:          l.v.GetInt(KeySearchLimit),
		Debug:                l.v.GetBool(KeyDebug),
	}
	if cfg.Registry == "" {
		cfg.Registry = DefaultRegistry
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultSearchLimit
	}

	timeout, err := time.ParseDuration(l.v.GetString(KeyDownloadTimeout))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid %s %q: expected a positive duration such as 2m", KeyDownloadTimeout, l.v.GetString(KeyDownloadTimeout))
	}
	cfg.DownloadTimeout = timeout

	if cfg.SkillsDir, err = ExpandPath(l.v.GetString(KeySkillsDir)); err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", KeySkillsDir, err)
	}
	if cfg.LockfilePath, err = ExpandPath(l.v.GetString(KeyLockfile)); err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", KeyLockfile, err)
	}
	return cfg, nil
}

// Load resolves the configuration from the default config file and the
// environment, without flags.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// readFile decodes the TOML config file into a map. A missing file is empty.
func readFile(path string) (map[string]any, error) {
	m := map[string]any{}
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, key := range md.Keys() {
		if !isKnownKey(key.String()) {
			return nil, fmt.Errorf("unknown config key %q in %s", key.String(), path)
		}
	}
	return m, nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the display value of key. The token is masked.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case KeyRegistry:
		return c.Registry, nil
	case KeyToken:
		return maskToken(c.Token), nil
	case KeySkillsDir:
		return c.SkillsDir, nil
	case KeyLockfile:
		return c.LockfilePath, nil
	case KeySkipSecurityWarnings:
		return strconv.FormatBool(c.SkipSecurityWarnings), nil
	case KeyDownloadTimeout:
		return c.DownloadTimeout.String(), nil
	case KeySearchLimit:
		return strconv.Itoa(c.SearchLimit), nil
	case KeyDebug:
		return strconv.FormatBool(c.Debug), nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
}

func maskToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) <= 8:
		return "********"
	default:
		return token[:4] + "…" + token[len(token)-4:]
	}
}

// parseValue converts a command-line value to the type stored for key.
func parseValue(key, value string) (any, error) {
	switch key {
	case KeyRegistry, KeyToken, KeySkillsDir, KeyLockfile:
		return value, nil
	case KeySkipSecurityWarnings, KeyDebug:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return b, nil
	case KeyDownloadTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration such as 2m", key)
		}
		return d.String(), nil
	case KeySearchLimit:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
}

// Set writes key = value to the config file at path, keeping every other key.
// The file is replaced in a single rename.
func Set(path, key, value string) error {
	parsed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	file, err := readFile(path)
	if err != nil {
		return err
	}
	file[key] = parsed

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(file); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	// The file may hold a registry token.
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SortedFileKeys returns the keys present in the config file at path.
func SortedFileKeys(path string) ([]string, error) {
	file, err := readFile(path)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(file))
	for k := range file {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
