package cli

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"clawhub/internal/install"
	"clawhub/internal/registry"
	"clawhub/internal/skillerr"
	"clawhub/internal/tui/styles"
)

// outdatedConcurrency bounds parallel registry lookups in outdated.
const outdatedConcurrency = 4

var updateCmd = &cobra.Command{
	Use:   "update [slug]",
	Short: "Reinstall installed skill(s) at the latest version",
	Long: `Update one or all installed skills to the version the registry
flags as latest. Skills already at that version are left alone.

Examples:
  clawhub skill update            # Update all skills
  clawhub skill update weather    # Update one skill`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "List installed skills with a newer release",
	Long: `Compare each installed version with the registry's latest release.

Examples:
  clawhub skill outdated`,
	Args: cobra.NoArgs,
	RunE: runOutdated,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	svc := newService(cfg)
	lock, err := svc.ReadLockfile(cfg.LockfilePath)
	if err != nil {
		return reportFailure(cmd, "Update", err)
	}

	out := cmd.OutOrStdout()
	toUpdate := lock.Slugs()
	if len(args) > 0 {
		slug := args[0]
		if _, ok := lock.Get(slug); !ok {
			return reportFailure(cmd, "Update",
				skillerr.Newf(skillerr.KindNotFound, "update", "skill %s is not installed", slug))
		}
		toUpdate = []string{slug}
	}
	if len(toUpdate) == 0 {
		fmt.Fprintln(out, "No skills installed")
		return nil
	}

	opts := install.Options{SkipSecurity: cfg.SkipSecurityWarnings}
	var updated, current, failed int
	restart := false
	for _, slug := range toUpdate {
		before, _ := lock.Get(slug)
		result, err := installOne(cmd.Context(), svc, slug, "", opts)
		if err != nil {
			reportFailure(cmd, "Update "+slug, err)
			failed++
			continue
		}
		printWarnings(cmd.ErrOrStderr(), result.Warnings)
		if result.Version == before.InstalledVersion {
			printMuted(out, "%s", result.Message)
			current++
			continue
		}
		printSuccess(out, "%s", result.Message)
		restart = restart || result.RequiresRestart
		updated++
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Updated: %d, up to date: %d, failed: %d\n", updated, current, failed)
	if restart {
		printMuted(out, "Restart or reload skills to activate.")
	}
	return nil
}

type outdatedRow struct {
	slug      string
	installed string
	latest    string
	state     string
	err       error
}

func runOutdated(cmd *cobra.Command, args []string) error {
	svc := newService(cfg)
	lock, err := svc.ReadLockfile(cfg.LockfilePath)
	if err != nil {
		return reportFailure(cmd, "Outdated", err)
	}

	out := cmd.OutOrStdout()
	slugs := lock.Slugs()
	if len(slugs) == 0 {
		fmt.Fprintln(out, "No skills installed")
		return nil
	}

	rows := make([]outdatedRow, len(slugs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(outdatedConcurrency)
	for i, slug := range slugs {
		e, _ := lock.Get(slug)
		rows[i] = outdatedRow{slug: slug, installed: e.InstalledVersion}
		g.Go(func() error {
			meta, err := withRetry(ctx, func(ctx context.Context) (*registry.SkillMeta, error) {
				return svc.GetSkill(ctx, slug)
			})
			if err != nil {
				// One unreachable skill should not hide the others.
				rows[i].err = err
				return nil
			}
			latest, ok := meta.LatestVersion()
			if !ok {
				rows[i].err = skillerr.Newf(skillerr.KindNotFound, "outdated", "no version of %s is flagged latest", slug)
				return nil
			}
			rows[i].latest = latest
			rows[i].state = compareVersions(rows[i].installed, latest)
			return nil
		})
	}
	_ = g.Wait()

	stale := 0
	for _, r := range rows {
		switch {
		case r.err != nil:
			reportFailure(cmd, "Check "+r.slug, r.err)
		case r.state != stateCurrent:
			stale++
			fmt.Fprintf(out, "  %s %-24s %s -> %s  %s\n", styles.StatusOutdated.String(), r.slug, r.installed, r.latest, styles.Muted.Render(r.state))
		}
	}
	if stale == 0 {
		printSuccess(out, "All skills are up to date")
	}
	return nil
}

const (
	stateCurrent   = "current"
	stateUpgrade   = "upgrade"
	stateDowngrade = "installed is newer"
	stateDiffers   = "differs"
)

// compareVersions classifies installed against latest. Versions that are not
// semver are only compared for equality.
func compareVersions(installed, latest string) string {
	if installed == latest {
		return stateCurrent
	}
	iv, err1 := semver.NewVersion(installed)
	lv, err2 := semver.NewVersion(latest)
	if err1 != nil || err2 != nil {
		return stateDiffers
	}
	switch iv.Compare(lv) {
	case -1:
		return stateUpgrade
	case 1:
		return stateDowngrade
	default:
		return stateCurrent
	}
}
