package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bodul/wordhunt/internal/solver"
)

const dictionaryTimeout = 2 * time.Minute

func main() {
	env := EnvFromList(os.Environ())

	cfg, err := LoadConfig(env["WORDHUNT_CONFIG"], env)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	ctx := context.Background()

	// The dictionary is loaded once and shared read-only by every solve.
	dctx, cancel := context.WithTimeout(ctx, dictionaryTimeout)
	dict, err := DictionarySource{Path: cfg.DictionaryPath, URL: cfg.DictionaryURL}.Load(dctx)
	cancel()
	if err != nil {
		if !errors.Is(err, solver.ErrDictionaryUnavailable) {
			slog.Error("Dictionary load failed", "err", err)
			os.Exit(1)
		}
		slog.Warn("No dictionary, solving disabled", "err", err)
	}

	var recognizer Recognizer
	if cfg.GCPProjectID != "" || cfg.GeminiAPIKey != "" {
		gemini, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			slog.Error("Could not initialize Gemini", "err", err)
			os.Exit(1)
		}
		defer gemini.Close()
		recognizer = gemini
		slog.Info("Gemini client initialized", "project", cfg.GCPProjectID, "model", gemini.modelName)
	} else {
		slog.Info("GCP_PROJECT_ID and GEMINI_API_KEY not set, screenshot recognition disabled")
	}

	slv := solver.New(dict, solver.WithMinLength(cfg.MinWordLength), solver.WithWorkers(cfg.Workers))
	srv := NewServer(NewStore(), recognizer, slv, cfg.GridSize)

	slog.Info("Server started", "addr", "http://localhost:"+cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, otelhttp.NewHandler(srv, "wordhunt")); err != nil {
		slog.Error("Server stopped", "err", err)
		srv.Close()
		os.Exit(1)
	}
}
