// Command illiterate is the main entry point for the grammar correction
// service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/1ordo/illiterate-go/internal/config"
	"github.com/1ordo/illiterate-go/internal/grammar/modelclient"
	"github.com/1ordo/illiterate-go/internal/grammar/pipeline"
	"github.com/1ordo/illiterate-go/internal/grammar/ruleclient"
	"github.com/1ordo/illiterate-go/internal/httpapi"
	"github.com/1ordo/illiterate-go/internal/observe"
	"github.com/1ordo/illiterate-go/pkg/llmprovider"
	"github.com/1ordo/illiterate-go/pkg/llmprovider/anyllm"
	"github.com/1ordo/illiterate-go/pkg/llmprovider/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "illiterate: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "illiterate: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("illiterate starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	shutdownObserve, err := observe.InitProvider(context.Background(), observe.ProviderConfig{
		ServiceName: "illiterate",
	})
	if err != nil {
		slog.Error("failed to initialise observability providers", "err", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObserve(ctx); err != nil {
			slog.Error("observability shutdown error", "err", err)
		}
	}()

	rules, err := ruleclient.New(cfg.RuleBackend.URL, ruleclient.WithTimeout(cfg.RuleBackend.Timeout))
	if err != nil {
		slog.Error("failed to build rule backend client", "err", err)
		return 1
	}

	model, err := buildModelProvider(cfg.ModelBackend)
	if err != nil {
		slog.Error("failed to build model backend provider", "err", err)
		return 1
	}
	modelClient := modelclient.New(model,
		modelclient.WithTemperature(cfg.ModelBackend.Temperature),
		modelclient.WithMaxTokens(cfg.ModelBackend.MaxTokens),
	)

	orchestrator := pipeline.New(rules, modelClient)

	server := httpapi.New(orchestrator, cfg, observe.DefaultMetrics())
	mux := http.NewServeMux()
	server.Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: observe.Middleware(observe.DefaultMetrics())(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server ready", "listen_addr", cfg.Server.ListenAddr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("serve error", "err", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping…")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// buildModelProvider constructs the llmprovider.Provider named by
// cfg.Provider. "openai" uses the direct OpenAI client; every other
// recognised provider name routes through any-llm-go.
func buildModelProvider(cfg config.ModelBackendConfig) (llmprovider.Provider, error) {
	if cfg.Provider == "openai" {
		opts := []openai.Option{openai.WithTimeout(cfg.Timeout)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, cfg.Model, opts...)
	}

	var opts []anyllmlib.Option
	if cfg.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
	}
	return anyllm.New(cfg.Provider, cfg.Model, opts...)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
