package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newEnvCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage the Gemini API key in the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, g)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	cmd.AddCommand(
		newEnvSubCmd("setup", "Save API key to keychain (prompt only)", runEnvSetup),
		newEnvDeleteCmd(),
		newEnvSubCmd("status", "Show key status (default if no action given)", func(cmd *cobra.Command) error {
			return runEnvStatus(cmd, g)
		}),
	)
	return cmd
}

func newEnvSubCmd(use, short string, run func(*cobra.Command) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runEnvSetup(cmd *cobra.Command) error {
	key, err := promptForKey("Gemini API Key: ")
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is required for setup")
	}
	if err := saveKey(key); err != nil {
		return fmt.Errorf("error saving key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved Gemini API key to keychain.")
	return nil
}

func newEnvDeleteCmd() *cobra.Command {
	var yes bool
	cmd := newEnvSubCmd("delete", "Delete key from keychain", func(cmd *cobra.Command) error {
		return runEnvDelete(cmd, yes)
	})
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func runEnvDelete(cmd *cobra.Command, yes bool) error {
	c := newConfirmer()
	c.In = cmd.InOrStdin()
	c.Out = cmd.OutOrStdout()
	ok, err := c.Confirm("Delete the Gemini API key from the keychain?", yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	if err := deleteKey(); err != nil {
		return fmt.Errorf("error deleting key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted Gemini API key from keychain.")
	return nil
}

// runEnvStatus reports where the key would be resolved from, using the same
// lookup as every other command.
func runEnvStatus(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(g.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.KeySource == "" {
		fmt.Fprintln(out, "Gemini API Key: Not Found (env not set, config empty, keychain empty)")
		return nil
	}
	fmt.Fprintf(out, "Gemini API Key: Found (source=%s)\n", cfg.KeySource)
	return nil
}
