package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clawhub/internal/archive"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:     "remove <slug>",
	Aliases: []string{"rm", "uninstall"},
	Short:   "Remove an installed skill",
	Long: `Remove an installed skill's directory and its lockfile entry.

Examples:
  clawhub skill remove weather
  clawhub skill rm -f weather`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Remove without confirmation")
}

func runRemove(cmd *cobra.Command, args []string) error {
	slug := args[0]
	if err := archive.ValidateSlug(slug); err != nil {
		return fmt.Errorf("invalid skill %q: %w", slug, err)
	}

	out := cmd.OutOrStdout()
	if !removeForce {
		fmt.Fprintf(out, "Remove skill %s? [y/N]: ", slug)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
	}

	if _, err := newService(cfg).Remove(slug, cfg.SkillsDir, cfg.LockfilePath); err != nil {
		return reportFailure(cmd, "Remove", err)
	}
	printSuccess(out, "Removed %s", slug)
	printMuted(out, "Restart or reload skills to apply.")
	return nil
}
