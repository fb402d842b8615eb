package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oukeidos/tamilfix/internal/apperrors"
)

func newCheckCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Send a test prompt to Gemini",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, g)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addGeminiFlags(cmd)
	return cmd
}

func runCheck(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := prepare(cmd, g)
	if err != nil {
		return err
	}

	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	svc, err := buildService(ctx, cfg, nil)
	if err != nil {
		return err
	}

	result, err := svc.SmokeTest(ctx)
	if err != nil {
		return fmt.Errorf("gemini API test failed: %s", apperrors.PublicMessage(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Gemini API is working (model=%s, backend=%s)\n%s\n",
		cfg.Gemini.Model, cfg.Gemini.Backend, result)
	return nil
}
