package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/oukeidos/tamilfix/internal/correction"
	"github.com/oukeidos/tamilfix/internal/logger"
	"github.com/oukeidos/tamilfix/internal/metrics"
	"github.com/oukeidos/tamilfix/internal/server"
)

var runServer = func(ctx context.Context, s *server.Server) error {
	return s.Start(ctx)
}

func newServeCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	f := cmd.Flags()
	f.String("host", "0.0.0.0", "Listen host")
	f.Int("port", 8000, "Listen port")
	f.Bool("pprof", false, "Expose /debug/pprof")
	addGeminiFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := prepare(cmd, g)
	if err != nil {
		return err
	}

	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	var obs correction.Observer
	if cfg.Server.Metrics {
		obs = metrics.NewRecorder(prometheus.DefaultRegisterer)
	}
	svc, err := buildService(ctx, cfg, obs)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv, err := server.New(svc, server.Options{
		Addr:            cfg.Server.Addr(),
		CORSOrigins:     cfg.Server.CORSOrigins,
		Pprof:           cfg.Server.Pprof,
		Metrics:         cfg.Server.Metrics,
		UpstreamTimeout: cfg.Gemini.Timeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger.L(),
	})
	if err != nil {
		return err
	}
	return runServer(ctx, srv)
}
