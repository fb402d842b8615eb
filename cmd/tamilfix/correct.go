package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/correction"
	"github.com/oukeidos/tamilfix/internal/logger"
)

type correctOptions struct {
	operation  string
	retries    uint
	retryDelay time.Duration
}

func newCorrectCmd(g *globalOptions) *cobra.Command {
	opts := &correctOptions{}
	cmd := &cobra.Command{
		Use:   "correct [text]",
		Short: "Correct one piece of text and print the JSON response",
		Long: "Correct one piece of text and print the JSON response.\n" +
			"The text is read from stdin when no argument is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrect(cmd, g, opts, args)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	f := cmd.Flags()
	f.StringVar(&opts.operation, "op", string(correction.OpSpellCheck), "Operation (see `tamilfix ops`)")
	f.UintVar(&opts.retries, "retries", 0, "Retry timeouts, rate limits and transport failures this many times")
	f.DurationVar(&opts.retryDelay, "retry-delay", time.Second, "Initial delay between retries")
	addGeminiFlags(cmd)
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if isTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("text is required (pass it as an argument or pipe it on stdin)")
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func runCorrect(cmd *cobra.Command, g *globalOptions, opts *correctOptions, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := prepare(cmd, g)
	if err != nil {
		return err
	}

	req := correction.Request{Text: text, Operation: correction.Operation(opts.operation)}
	// spell_check answers from the dictionary or degrades without a key, so
	// only the other operations demand one or prompt for it.
	if req.Operation != correction.OpSpellCheck {
		if err := resolveAPIKey(cfg); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	svc, err := buildService(ctx, cfg, nil)
	if err != nil {
		return err
	}

	resp, err := retry.DoWithData(
		func() (*correction.Response, error) {
			return svc.Process(ctx, req)
		},
		retry.Attempts(opts.retries+1),
		retry.Delay(opts.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(apperrors.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Retrying correction", "attempt", n+1, "error", apperrors.PublicMessage(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("correction failed: %s", apperrors.PublicMessage(err))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
