package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CTAG07/trigram/pkg/corpus"
	"github.com/CTAG07/trigram/pkg/trigram"
	"github.com/dustin/go-humanize"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, "./config.json", os.Stdin, os.Stdout); err != nil {
		baseLogger.Error("An error occurred during run, shutting down.", "error", err)
		stop()
		os.Exit(1)
	}
}

// run trains the model from the configured corpus, then serves the API and/or
// the interactive prompt until both are finished or ctx is cancelled.
func run(ctx context.Context, configPath string, in io.Reader, out io.Writer) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(config.Server.LogLevel)}))
	logger.Info("Starting trigram", "version", Version, "commit", Commit, "build_date", BuildDate)

	if err = os.MkdirAll(config.Server.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		logger.Info("Closing database connection.")
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if err = corpus.SetupSchema(db); err != nil {
		return fmt.Errorf("failed to setup corpus schema: %w", err)
	}
	store, err := corpus.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create corpus store: %w", err)
	}
	defer store.Close()
	store.SetLogger(logger)

	svc := NewModelService(store, config.Model, logger)
	if _, err = svc.EnsureCorpus(ctx); err != nil {
		return err
	}
	model, err := svc.Retrain(ctx)
	if err != nil {
		return err
	}
	logModelSummary(ctx, logger, model, svc.TrainingCorpus())

	var apiServer *http.Server
	if config.Server.EnableAPI {
		mux := http.NewServeMux()
		NewTrigramAPI(svc, store, logger).RegisterRoutes(mux)
		apiServer = &http.Server{Addr: config.Server.ApiAddr, Handler: mux}
		go func() {
			logger.Info("Starting api server", "address", apiServer.Addr)
			if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Api server failed", "error", err)
			}
		}()
	}

	var promptErr error
	if config.Prompt.Enabled {
		seed := config.Model.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		logger.Debug("Prompt random source seeded", "seed", seed)
		promptErr = runPrompt(ctx, in, out, svc, config.Prompt, rand.NewPCG(seed, seed), logger)
	}

	if apiServer == nil {
		if promptErr != nil {
			return fmt.Errorf("prompt failed: %w", promptErr)
		}
		return nil
	}
	if promptErr != nil {
		logger.Error("Prompt failed", "error", promptErr)
	}

	<-ctx.Done()
	logger.Info("Stopping api server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Api server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped.")
	return nil
}

// logModelSummary reports the trained model's shape and its mean NLL on the
// training corpus.
func logModelSummary(ctx context.Context, logger *slog.Logger, model *trigram.Model, entries []string) {
	stats := model.Stats()
	attrs := []any{
		slog.Int("alphabet_size", stats.AlphabetSize),
		slog.String("alphabet", stats.Alphabet),
		slog.String("contexts", humanize.Comma(int64(stats.Contexts))),
		slog.String("trigrams_observed", humanize.Comma(int64(stats.ObservedTrigrams))),
		slog.String("entries", humanize.Comma(int64(len(entries)))),
	}

	nll, err := model.MeanNLL(entries)
	switch {
	case errors.Is(err, trigram.ErrEmptyCorpus):
		logger.WarnContext(ctx, "Model trained on an empty corpus", attrs...)
		return
	case err != nil:
		logger.ErrorContext(ctx, "Failed to score training corpus", append(attrs, slog.Any("error", err))...)
		return
	}
	logger.InfoContext(ctx, "Model ready", append(attrs, slog.Float64("mean_nll", nll))...)
}
