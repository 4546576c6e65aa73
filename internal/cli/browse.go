package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"clawhub/internal/builtin"
	"clawhub/internal/logger"
	"clawhub/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch the interactive TUI browser",
	Long:  `Search the registry, inspect skills and install them from an interactive terminal UI.`,
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if n, err := builtin.Ensure(cfg.SkillsDir); err != nil {
		logger.Warnf("failed to install built-in skills: %v", err)
	} else if n > 0 {
		logger.Debugf("installed %d built-in skill file(s)", n)
	}

	if err := tui.Run(cfg, newService(cfg)); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
