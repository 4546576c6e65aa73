package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"clawhub/internal/config"
	"clawhub/internal/gateway"
	"clawhub/internal/logger"
)

var (
	configPath string

	// version is set from ldflags through SetVersion.
	version string

	// cfg is resolved once per invocation before any subcommand runs.
	cfg *config.Config
)

// skillService is the gateway plus the operations only the CLI exposes.
type skillService interface {
	gateway.Gateway
	Remove(slug, skillsDir, lockfilePath string) (bool, error)
}

// newService builds the gateway for the resolved configuration.
var newService = func(cfg *config.Config) skillService {
	return gateway.FromConfig(cfg, userAgent())
}

var rootCmd = &cobra.Command{
	Use:   "clawhub",
	Short: "ClawHub skill package manager",
	Long: `clawhub installs agent skills from a ClawHub registry.

Skills are downloaded as zip archives, checked by a security gate,
extracted into the skills directory and recorded in a lockfile.
Running clawhub without a subcommand opens the interactive browser.

Configuration is read from config.toml, CLAWHUB_* environment
variables (a .env file in the working directory is honoured) and
the flags below, in increasing order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runBrowse,
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	loader := config.NewLoader(configPath)
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	loaded, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	logger.Initialize(cfg.Debug)
	logger.Debugw("configuration loaded",
		"config", cfg.ConfigPath, "registry", cfg.Registry,
		"skills_dir", cfg.SkillsDir, "lockfile", cfg.LockfilePath)
	return nil
}

func displayVersion() string {
	if version == "" {
		return "dev"
	}
	return version
}

func userAgent() string {
	return "clawhub-cli/" + displayVersion()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/clawhub/config.toml)")
	pf.String("registry", "", "Registry base URL")
	pf.String("token", "", "Registry API token")
	pf.String("skills-dir", "", "Directory skills are installed into")
	pf.String("lockfile", "", "Path of the lockfile")
	pf.Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
