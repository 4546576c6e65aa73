package cli

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"clawhub/internal/archive"
	"clawhub/internal/install"
)

var (
	installForce        bool
	installSkipSecurity bool
	installSkipGates    bool
)

var installCmd = &cobra.Command{
	Use:   "install <slug>[@version]",
	Short: "Install a skill from the registry",
	Long: `Install a skill from the registry.

Without a version the registry's latest release is installed. Installing
the version already recorded in the lockfile is a no-op unless --force
is given. The security gate blocks skills the registry flags as
malicious; --skip-security bypasses scan checks and --skip-gates
bypasses every gate. skip_security_warnings in the config file has the
same effect as --skip-security.

Examples:
  clawhub skill install weather
  clawhub skill install weather@2.0.1
  clawhub skill install --force weather`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "Reinstall even if the version is already installed")
	installCmd.Flags().BoolVar(&installSkipSecurity, "skip-security", false, "Skip malware scan checks")
	installCmd.Flags().BoolVar(&installSkipGates, "skip-gates", false, "Skip every security gate check")
}

func runInstall(cmd *cobra.Command, args []string) error {
	slug, version, err := parseInstallArg(args[0])
	if err != nil {
		return err
	}

	opts := install.Options{
		Force:        installForce,
		SkipGates:    installSkipGates,
		SkipSecurity: installSkipSecurity || cfg.SkipSecurityWarnings,
	}

	label := slug
	if version != "" {
		label += "@" + version
	}
	printMuted(cmd.OutOrStdout(), "Installing %s...", label)

	result, err := installOne(cmd.Context(), newService(cfg), slug, version, opts)
	if err != nil {
		return reportFailure(cmd, "Install", err)
	}
	printResult(cmd, result)
	return nil
}

// parseInstallArg validates "slug[@version]". Problems here are usage
// errors, not operation failures.
func parseInstallArg(arg string) (slug, version string, err error) {
	slug, version = parseSkillArg(arg)
	if err := archive.ValidateSlug(slug); err != nil {
		return "", "", fmt.Errorf("invalid skill %q: %w", arg, err)
	}
	if version != "" {
		// The registry decides which versions exist; this only rejects
		// strings that cannot be a version at all.
		if _, err := semver.NewVersion(version); err != nil {
			return "", "", fmt.Errorf("invalid version %q: %w", version, err)
		}
	}
	return slug, version, nil
}

// installOne runs one install under the configured download timeout.
func installOne(ctx context.Context, svc skillService, slug, version string, opts install.Options) (*install.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DownloadTimeout)
	defer cancel()

	return withRetry(ctx, func(ctx context.Context) (*install.Result, error) {
		return svc.Install(ctx, slug, version, cfg.SkillsDir, cfg.LockfilePath, opts)
	})
}

func printResult(cmd *cobra.Command, result *install.Result) {
	out := cmd.OutOrStdout()
	printWarnings(cmd.ErrOrStderr(), result.Warnings)
	printSuccess(out, "%s", result.Message)
	if result.RequiresRestart {
		printMuted(out, "Restart or reload skills to activate.")
	}
}
