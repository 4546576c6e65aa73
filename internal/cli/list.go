package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"clawhub/internal/builtin"
	"clawhub/internal/logger"
	"clawhub/internal/skills"
	"clawhub/internal/tui/styles"
)

var availableAll bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List skills recorded in the lockfile",
	Long: `List the skills installed from the registry, as recorded in the
lockfile.

Examples:
  clawhub skill list
  clawhub skill ls`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var availableCmd = &cobra.Command{
	Use:   "available",
	Short: "List skills the host can load from the skills directory",
	Long: `Scan the skills directory for skill folders with a valid SKILL.md.
Built-in skills are copied in first when missing.

Use --all to include folders that cannot be loaded, with the reason.

Examples:
  clawhub skill available
  clawhub skill available --all`,
	Args: cobra.NoArgs,
	RunE: runAvailable,
}

func init() {
	availableCmd.Flags().BoolVar(&availableAll, "all", false, "Include invalid skill folders with diagnostics")
}

func runList(cmd *cobra.Command, args []string) error {
	lock, err := newService(cfg).ReadLockfile(cfg.LockfilePath)
	if err != nil {
		return reportFailure(cmd, "List", err)
	}

	out := cmd.OutOrStdout()
	slugs := lock.Slugs()
	if len(slugs) == 0 {
		fmt.Fprintln(out, "No skills installed")
		fmt.Fprintln(out, "\nUse 'clawhub skill search' or 'clawhub browse' to find skills")
		return nil
	}

	fmt.Fprintln(out, "Installed skills:")
	fmt.Fprintln(out)
	for _, slug := range slugs {
		e, _ := lock.Get(slug)
		fmt.Fprintf(out, "  %s %s@%s  %s\n", styles.StatusInstalled.String(), slug, e.InstalledVersion,
			styles.Muted.Render("installed "+e.InstalledAt.Local().Format("2006-01-02 15:04")))
	}
	return nil
}

func runAvailable(cmd *cobra.Command, args []string) error {
	n, err := builtin.Ensure(cfg.SkillsDir)
	if err != nil {
		return reportFailure(cmd, "Available", err)
	}
	if n > 0 {
		logger.Debugf("installed %d built-in skill file(s) into %s", n, cfg.SkillsDir)
	}

	all, err := skills.Scan(cfg.SkillsDir)
	if err != nil {
		return reportFailure(cmd, "Available", err)
	}

	out := cmd.OutOrStdout()
	valid := skills.Valid(all)
	shown := valid
	if availableAll {
		shown = all
	}
	if len(shown) == 0 {
		fmt.Fprintf(out, "No skills in %s\n", cfg.SkillsDir)
		return nil
	}

	for _, s := range shown {
		if s.Valid() {
			fmt.Fprintf(out, "  %s %s\n", styles.StatusInstalled.String(), s.Name)
			if s.Description != "" {
				fmt.Fprintf(out, "    %s\n", styles.Muted.Render(s.Description))
			}
			continue
		}
		fmt.Fprintf(out, "  %s %s\n", styles.ErrorMsg.Render("✗"), s.Name)
		for _, p := range s.Problems {
			fmt.Fprintf(out, "    %s\n", styles.WarningMsg.Render(p))
		}
	}

	fmt.Fprintln(out)
	if invalid := len(all) - len(valid); invalid > 0 && !availableAll {
		printMuted(out, "%d valid, %d invalid (use --all to see why)", len(valid), invalid)
	} else {
		printMuted(out, "%d valid, %d invalid", len(valid), len(all)-len(valid))
	}
	return nil
}
