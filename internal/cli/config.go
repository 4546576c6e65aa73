package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clawhub/internal/config"
	"clawhub/internal/tui/styles"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage clawhub configuration",
	Long: `View and modify clawhub configuration settings.

Valid keys: registry, token, skills_dir, lockfile, skip_security_warnings,
download_timeout, search_limit, debug.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show every setting after the config file, CLAWHUB_* environment
variables and flags are applied. Keys set in the config file are marked.
The token is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Long: `Set a value in the config file. Other keys are preserved.

Examples:
  clawhub config set registry https://registry.example.com
  clawhub config set download_timeout 5m
  clawhub config set skip_security_warnings true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in editor",
	Args:  cobra.NoArgs,
	RunE:  runConfigEdit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configEditCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fromFile := map[string]bool{}
	keys, err := config.SortedFileKeys(cfg.ConfigPath)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fromFile[k] = true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  %-24s %s\n", "config_file", cfg.ConfigPath)
	for _, key := range config.Keys {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		if value == "" {
			value = styles.Muted.Render("(unset)")
		}
		line := fmt.Sprintf("  %-24s %s", key, value)
		if fromFile[key] {
			line += " " + styles.Muted.Render("(file)")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), cfg.ConfigPath)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if err := config.Set(cfg.ConfigPath, key, value); err != nil {
		return err
	}
	shown := value
	if key == config.KeyToken {
		shown = "(hidden)"
	}
	printSuccess(cmd.OutOrStdout(), "Set %s = %s", key, shown)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(cfg.ConfigPath); os.IsNotExist(err) {
		if err := os.WriteFile(cfg.ConfigPath, nil, 0o600); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}

	process, err := os.StartProcess("/usr/bin/env", []string{"env", editor, cfg.ConfigPath}, &proc)
	if err != nil {
		return fmt.Errorf("failed to start editor: %w", err)
	}

	_, err = process.Wait()
	return err
}
