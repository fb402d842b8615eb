package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oukeidos/tamilfix/internal/cleanup"
	"github.com/oukeidos/tamilfix/internal/version"
)

type globalOptions struct {
	configFile string
	logLevel   string
	logFile    string
}

func execute() {
	err := newRootCmd().Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "tamilfix",
		Short: "Tamil grammar and spelling correction service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "Config file (default ./tamilfix.yaml or $HOME/.tamilfix/tamilfix.yaml)")
	pf.StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.logFile, "log-file", "", "Also write JSON logs to this file")

	cmd.AddCommand(
		newServeCmd(g),
		newCorrectCmd(g),
		newCheckCmd(g),
		newOpsCmd(g),
		newEnvCmd(g),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}
	return cmd
}
