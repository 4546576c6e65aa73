package cli

import "github.com/spf13/cobra"

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Search, install and manage skills",
	Long: `Search the registry, install skills and manage installed skills.

Operation failures are reported on stderr with a short hint and do
not change the exit status; invalid arguments do.`,
}

func init() {
	skillCmd.AddCommand(searchCmd)
	skillCmd.AddCommand(installCmd)
	skillCmd.AddCommand(listCmd)
	skillCmd.AddCommand(availableCmd)
	skillCmd.AddCommand(inspectCmd)
	skillCmd.AddCommand(updateCmd)
	skillCmd.AddCommand(outdatedCmd)
	skillCmd.AddCommand(removeCmd)
}
