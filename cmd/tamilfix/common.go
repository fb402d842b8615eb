package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/auth"
	"github.com/oukeidos/tamilfix/internal/cleanup"
	"github.com/oukeidos/tamilfix/internal/config"
	"github.com/oukeidos/tamilfix/internal/correction"
	"github.com/oukeidos/tamilfix/internal/files"
	"github.com/oukeidos/tamilfix/internal/gemini"
	"github.com/oukeidos/tamilfix/internal/logger"
	"github.com/oukeidos/tamilfix/internal/prompt"
)

// Swapped out in tests.
var (
	isTerminal   = term.IsTerminal
	promptForKey = auth.PromptForAPIKey
	saveKey      = auth.SaveKey
	deleteKey    = auth.DeleteKey
	loadConfig   = config.Load
	newGenerator = gemini.New
	newConfirmer = prompt.DefaultConfirmer
)

// prepare loads and validates configuration and initialises logging. An
// opened log file is closed by the cleanup hooks.
func prepare(cmd *cobra.Command, g *globalOptions) (*config.Config, error) {
	cfg, err := loadConfig(g.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var logOut io.Writer
	if cfg.Log.File != "" {
		f, err := files.OpenAppend(cfg.Log.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("log file", f.Close)
		logOut = f
	}
	logger.Init(logger.ParseLevel(cfg.Log.Level), logOut)
	return cfg, nil
}

// resolveAPIKey fills in the Gemini key, prompting on a terminal as a last
// resort.
func resolveAPIKey(cfg *config.Config) error {
	if cfg.Gemini.APIKey != "" {
		logger.Debug("Using Gemini API key", "source", cfg.KeySource)
		return nil
	}
	if !isTerminal(int(os.Stdin.Fd())) {
		return apperrors.Config("GEMINI_API_KEY not found in environment variables")
	}
	key, err := promptForKey("Gemini API Key: ")
	if err != nil {
		return fmt.Errorf("error reading API key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return apperrors.Config("API key is required; set GEMINI_API_KEY or run `tamilfix env setup`")
	}
	cfg.Gemini.APIKey = key
	cfg.KeySource = "Terminal Prompt"
	return nil
}

// buildService wires the registry, dictionary and model client described by cfg.
// The model client is closed by the cleanup hooks.
func buildService(ctx context.Context, cfg *config.Config, obs correction.Observer) (*correction.Service, error) {
	reg, err := correction.LoadRegistry(cfg.Correction.PromptsFile)
	if err != nil {
		return nil, err
	}
	dict, err := correction.LoadDictionary(cfg.Correction.FallbackFile)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(ctx, cfg.GeminiOptions())
	if err != nil {
		return nil, err
	}
	cleanup.Register("gemini client", gen.Close)

	logger.Info("Correction service ready",
		"backend", cfg.Gemini.Backend,
		"model", cfg.Gemini.Model,
		"operations", len(reg.Operations()),
		"fallback_entries", dict.Len(),
	)
	svc := correction.NewService(gen, correction.Options{
		Registry:           reg,
		Dictionary:         dict,
		FallbackConfidence: cfg.Correction.FallbackConfidence,
		ModelConfidence:    cfg.Correction.ModelConfidence,
		Observer:           obs,
	})
	return svc, nil
}

// addGeminiFlags registers the model selection flags shared by commands that
// reach the API.
func addGeminiFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("model", gemini.DefaultModel, "Gemini model name")
	f.String("backend", string(gemini.BackendREST), "Client backend (rest or sdk)")
	f.String("auth", string(gemini.AuthHeader), "How the REST backend sends the key (header or query)")
	f.Duration("timeout", gemini.DefaultTimeout, "Per-request timeout for the model call")
	f.String("prompts", "", "YAML file overriding operation prompts")
	f.String("fallback", "", "YAML file extending the fallback dictionary")
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
