package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/CTAG07/trigram/pkg/corpus"
	"github.com/CTAG07/trigram/pkg/trigram"
)

// trainedModel pairs a model with the exact entries it was trained on, so
// both are always swapped together.
type trainedModel struct {
	model   *trigram.Model
	entries []string
}

// ModelService owns the live trigram model and retrains it from the corpus
// store. The model itself is immutable, so readers only need the pointer.
type ModelService struct {
	store   *corpus.Store
	config  *ModelConfig
	logger  *slog.Logger
	current atomic.Pointer[trainedModel]
}

// NewModelService creates a service with no model loaded; call Retrain first.
func NewModelService(store *corpus.Store, config *ModelConfig, logger *slog.Logger) *ModelService {
	return &ModelService{
		store:  store,
		config: config,
		logger: logger,
	}
}

// EnsureCorpus makes sure the configured corpus exists, importing the names
// file into it when it is empty.
func (s *ModelService) EnsureCorpus(ctx context.Context) (corpus.Info, error) {
	info, err := s.store.GetCorpusInfo(ctx, s.config.CorpusName)
	if errors.Is(err, sql.ErrNoRows) {
		info, err = s.store.InsertCorpus(ctx, s.config.CorpusName)
	}
	if err != nil {
		return corpus.Info{}, fmt.Errorf("failed to load corpus '%s': %w", s.config.CorpusName, err)
	}

	entries, err := s.store.Entries(ctx, info)
	if err != nil {
		return corpus.Info{}, err
	}
	if len(entries) > 0 || s.config.NamesFile == "" {
		return info, nil
	}

	f, err := os.Open(s.config.NamesFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "Corpus is empty and names file does not exist",
				slog.String("corpus_name", info.Name),
				slog.String("names_file", s.config.NamesFile),
			)
			return info, nil
		}
		return corpus.Info{}, fmt.Errorf("failed to open names file: %w", err)
	}
	defer func() { _ = f.Close() }()

	result, err := s.ImportEntries(ctx, info, f)
	if err != nil {
		return corpus.Info{}, fmt.Errorf("failed to import names file: %w", err)
	}
	s.logger.InfoContext(ctx, "Corpus seeded from names file",
		slog.String("corpus_name", info.Name),
		slog.String("names_file", s.config.NamesFile),
		slog.Int("entries", result.Added),
	)
	return info, nil
}

// ImportEntries adds a newline-separated name list to a corpus as one batch.
// A batch with any entry holding the configured boundary symbol is rejected
// whole with corpus.ErrReservedSymbol, since training on it could never succeed.
func (s *ModelService) ImportEntries(ctx context.Context, info corpus.Info, r io.Reader) (corpus.ImportResult, error) {
	return s.store.Import(ctx, info, r, corpus.WithReservedSymbol(s.config.BoundaryRune()))
}

// ExportCorpus writes every entry of the corpus to <ExportDir>/<name>.txt,
// one per line, and returns the written path.
func (s *ModelService) ExportCorpus(ctx context.Context, info corpus.Info) (string, error) {
	entries, err := s.store.Entries(ctx, info)
	if err != nil {
		return "", fmt.Errorf("failed to read corpus '%s': %w", info.Name, err)
	}
	if err = os.MkdirAll(s.config.ExportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(s.config.ExportDir, filepath.Base(info.Name)+".txt")
	if err = corpus.WriteLines(path, entries); err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "Corpus exported",
		slog.String("corpus_name", info.Name),
		slog.String("path", path),
		slog.Int("entries", len(entries)),
	)
	return path, nil
}

// Retrain rebuilds the model from a fresh scan of the configured corpus and
// swaps it in. On error the previous model stays live.
func (s *ModelService) Retrain(ctx context.Context) (*trigram.Model, error) {
	info, err := s.store.GetCorpusInfo(ctx, s.config.CorpusName)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus '%s': %w", s.config.CorpusName, err)
	}
	entries, err := s.store.Entries(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus '%s': %w", info.Name, err)
	}

	model, err := trigram.Train(ctx, entries,
		trigram.WithBoundary(s.config.BoundaryRune()),
		trigram.WithSmoothing(s.config.PseudoCount),
		trigram.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to train on corpus '%s': %w", info.Name, err)
	}

	s.current.Store(&trainedModel{model: model, entries: entries})
	return model, nil
}

// Model returns the live model, or nil before the first successful Retrain.
func (s *ModelService) Model() *trigram.Model {
	model, _ := s.Snapshot()
	return model
}

// TrainingCorpus returns the entries the live model was trained on.
func (s *ModelService) TrainingCorpus() []string {
	_, entries := s.Snapshot()
	return entries
}

// Snapshot returns the live model together with its training entries, read
// in one load so the pair always matches.
func (s *ModelService) Snapshot() (*trigram.Model, []string) {
	current := s.current.Load()
	if current == nil {
		return nil, nil
	}
	return current.model, current.entries
}

// GenerateOptions returns the generation options implied by the config.
func (s *ModelService) GenerateOptions() []trigram.GenerateOption {
	return []trigram.GenerateOption{trigram.WithMaxLength(s.config.MaxLength)}
}
