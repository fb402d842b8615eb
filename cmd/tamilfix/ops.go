package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oukeidos/tamilfix/internal/correction"
)

func newOpsCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List correction operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(cmd, g)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().String("prompts", "", "YAML file overriding operation prompts")
	return cmd
}

func runOps(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := prepare(cmd, g)
	if err != nil {
		return err
	}

	reg, err := correction.LoadRegistry(cfg.Correction.PromptsFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s %s\n", "OPERATION", "ERROR TYPE")
	for _, op := range reg.Operations() {
		t, _ := reg.Lookup(op)
		fmt.Fprintf(out, "%-20s %s\n", op, t.ErrorType)
	}
	return nil
}
