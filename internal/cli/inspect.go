package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clawhub/internal/archive"
	"clawhub/internal/registry"
	"clawhub/internal/tui/styles"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <slug>",
	Aliases: []string{"info"},
	Short:   "Show registry details for a skill",
	Long: `Show a skill's registry metadata: description, scan status and
published versions, with the installed version marked.

Examples:
  clawhub skill inspect weather`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	slug := args[0]
	if err := archive.ValidateSlug(slug); err != nil {
		return fmt.Errorf("invalid skill %q: %w", slug, err)
	}

	svc := newService(cfg)
	meta, err := withRetry(cmd.Context(), func(ctx context.Context) (*registry.SkillMeta, error) {
		return svc.GetSkill(ctx, slug)
	})
	if err != nil {
		return reportFailure(cmd, "Inspect", err)
	}

	installed := installedVersions(svc)[meta.Slug]

	out := cmd.OutOrStdout()
	title := meta.Slug
	if meta.Name != "" && meta.Name != meta.Slug {
		title = fmt.Sprintf("%s (%s)", meta.Name, meta.Slug)
	}
	fmt.Fprintln(out, styles.Title.Render(title))

	if meta.Description != "" {
		fmt.Fprintf(out, "%s%s\n", styles.InfoLabel.Render("Description"), meta.Description)
	}

	scan := styles.ScanBadge(scanStatus(meta.VirusTotal))
	if meta.VirusTotal != nil && meta.VirusTotal.ReportCount > 0 {
		scan += styles.Muted.Render(fmt.Sprintf(" (%d reports)", meta.VirusTotal.ReportCount))
	}
	fmt.Fprintf(out, "%s%s\n", styles.InfoLabel.Render("Scan"), scan)

	if installed != "" {
		fmt.Fprintf(out, "%s%s\n", styles.InfoLabel.Render("Installed"), installed)
	} else {
		fmt.Fprintf(out, "%s%s\n", styles.InfoLabel.Render("Installed"), styles.Muted.Render("no"))
	}

	fmt.Fprintln(out, styles.InfoLabel.Render("Versions"))
	if len(meta.Versions) == 0 {
		printMuted(out, "  none published")
	}
	for _, v := range meta.Versions {
		line := "  " + v.Version
		if v.Latest {
			line += " " + styles.Tag.Render("latest")
		}
		if v.Version == installed {
			line += " " + styles.InstalledBadge.Render("installed")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
