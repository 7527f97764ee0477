package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/api"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/config"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/normalize"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/pipeline"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/secrets"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/sink"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/stream"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "github-activity-metrics",
		Short: "Ingest GitHub webhooks into flat, typed activity records",
	}

	var (
		addr    string
		cfgPath string
	)
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook ingestion server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(addr, cfgPath)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&cfgPath, "config", "configs/config.yaml", "Path to YAML config")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(addr, cfgPath string) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := loader.Config()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	// ── Resolve the verification secret (once per process) ──────────────────
	provider := secrets.NewCached(newProvider(cfg))
	secretCtx, cancelSecret := context.WithTimeout(context.Background(), 10*time.Second)
	secret, err := provider.GetSecret(secretCtx, cfg.Webhook.SecretName)
	cancelSecret()
	if err != nil {
		return fmt.Errorf("resolve webhook secret: %w", err)
	}

	// ── Sink ─────────────────────────────────────────────────────────────────
	recordSink, closeSink, err := newSink(cfg)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	if closeSink != nil {
		defer closeSink()
	}
	slog.Info("sink ready", "type", cfg.Sink.Type)

	// ── Stream hub ───────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub(logger)
		go hub.Run(ctx)
		slog.Info("live tail enabled", "route", "/ws")
	}

	// ── Pipeline + hot reload ────────────────────────────────────────────────
	pipe := pipeline.New(normalize.New(secret), recordSink, hub, logger)
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	handler := api.New(pipe, loader, hub)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutMs) * time.Millisecond,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	slog.Info("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel()
	slog.Info("goodbye")
	return nil
}

func newProvider(cfg *config.Config) secrets.Provider {
	switch cfg.Webhook.SecretSource {
	case "file":
		return secrets.File{Dir: cfg.Webhook.SecretDir}
	case "static":
		return secrets.Static{cfg.Webhook.SecretName: cfg.Webhook.StaticSecret}
	default:
		return secrets.Env{}
	}
}

func newSink(cfg *config.Config) (sink.Sink, func() error, error) {
	switch cfg.Sink.Type {
	case "http":
		return sink.NewHTTP(cfg.Sink.Endpoint, time.Duration(cfg.Sink.TimeoutMs)*time.Millisecond), nil, nil
	case "memory":
		return sink.NewMemory(0), nil, nil
	default:
		s, err := sink.OpenJSONL(cfg.Sink.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}
