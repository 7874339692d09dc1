package trigram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// trainOptions Is used by Train to configure default options.
type trainOptions struct {
	boundary    rune
	pseudoCount int
	logger      *slog.Logger
}

// TrainOption configures a call to Train.
type TrainOption func(*trainOptions)

// WithBoundary sets the reserved boundary symbol. It must not occur in the
// corpus.
// Default: '.'
func WithBoundary(r rune) TrainOption {
	return func(o *trainOptions) { o.boundary = r }
}

// WithSmoothing sets the Laplace pseudo-count, see WithPseudoCount.
// Default: 1
func WithSmoothing(k int) TrainOption {
	return func(o *trainOptions) { o.pseudoCount = k }
}

// WithLogger sets the logger the trained Model will use.
func WithLogger(logger *slog.Logger) TrainOption {
	return func(o *trainOptions) { o.logger = logger }
}

// Train runs the full pipeline over corpus: it derives the Alphabet, counts
// smoothed trigrams, assigns IDs and normalises the counts into a Model.
func Train(ctx context.Context, corpus []string, opts ...TrainOption) (*Model, error) {
	options := &trainOptions{
		boundary:    DefaultBoundary,
		pseudoCount: DefaultPseudoCount,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(options)
	}

	alphabet, err := NewAlphabet(corpus, options.boundary)
	if err != nil {
		return nil, err
	}

	counts, err := NewCountTable(alphabet, corpus, WithPseudoCount(options.pseudoCount))
	if err != nil {
		return nil, err
	}

	model, err := NewModel(counts, NewEncoder(counts))
	if err != nil {
		return nil, fmt.Errorf("failed to build probability matrix: %w", err)
	}
	model.SetLogger(options.logger)

	options.logger.InfoContext(ctx, "Training completed",
		slog.Int("entries_processed", len(corpus)),
		slog.Int("alphabet_size", alphabet.Len()),
		slog.Int("contexts", counts.Len()),
		slog.Int("trigrams_observed", counts.Observed()),
	)

	return model, nil
}
