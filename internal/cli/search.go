package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clawhub/internal/registry"
	"clawhub/internal/skillmd"
	"clawhub/internal/tui/styles"
)

var (
	searchLimit int
	searchSort  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the registry for skills",
	Long: `Search the registry for skills. Ranking happens server side;
--sort re-orders the returned page by install count or name.

Examples:
  clawhub skill search weather
  clawhub skill search "pdf tools" --limit 5
  clawhub skill search calendar --sort installs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (default search_limit from config)")
	searchCmd.Flags().StringVar(&searchSort, "sort", registry.SortTrending, "Result order: trending, installs or name")
}

func runSearch(cmd *cobra.Command, args []string) error {
	switch searchSort {
	case registry.SortTrending, registry.SortInstalls, registry.SortName:
	default:
		return fmt.Errorf("invalid --sort %q: expected trending, installs or name", searchSort)
	}

	query := strings.Join(args, " ")
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.SearchLimit
	}

	svc := newService(cfg)
	results, err := withRetry(cmd.Context(), func(ctx context.Context) ([]registry.SearchResult, error) {
		return svc.Search(ctx, query, limit, searchSort)
	})
	if err != nil {
		return reportFailure(cmd, "Search", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No skills matching '%s'\n", query)
		return nil
	}

	installed := installedVersions(svc)

	fmt.Fprintf(out, "Found %d skill(s) matching '%s':\n\n", len(results), query)
	for _, r := range results {
		status := styles.StatusAvailable.String()
		name := r.Slug
		if v, ok := installed[r.Slug]; ok {
			status = styles.StatusInstalled.String()
			name += "@" + v
		}
		fmt.Fprintf(out, "%s %s  %s  %s\n", status, name,
			styles.Muted.Render(styles.FormatCount(r.InstallCount)+" installs"),
			styles.ScanBadge(scanStatus(r.VirusTotal)))
		if r.Description != "" {
			fmt.Fprintf(out, "    %s\n", skillmd.Truncate(r.Description, 80))
		}
	}
	return nil
}

// installedVersions maps slug to locked version. An unreadable lockfile
// yields no entries; search output does not depend on it.
func installedVersions(svc skillService) map[string]string {
	lock, err := svc.ReadLockfile(cfg.LockfilePath)
	if err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(lock.Skills))
	for slug, e := range lock.Skills {
		out[slug] = e.InstalledVersion
	}
	return out
}

func scanStatus(s *registry.ScanStatus) string {
	if s == nil {
		return ""
	}
	return s.Status
}
