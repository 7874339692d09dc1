package trigram

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
)

// generateOptions Is used by the generate functions to configure default options.
type generateOptions struct {
	maxLength int
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument in Generate and GenerateStream.
type GenerateOption func(*generateOptions)

// WithMaxLength caps the number of symbols in a generated string, start symbol
// included. Generation normally stops only when the boundary symbol is drawn;
// a cap of 0 or less keeps that behaviour.
// Default: 0 (no cap)
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) { o.maxLength = n }
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	options := &generateOptions{
		maxLength: 0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// validateStart checks that start can begin a generated string.
func (m *Model) validateStart(start rune) error {
	if start == m.alphabet.Boundary() {
		return fmt.Errorf("%w: start symbol %q is the boundary symbol", ErrInvalidInput, start)
	}
	if !m.alphabet.Contains(start) {
		return fmt.Errorf("%w: start symbol %q is not in the alphabet %q", ErrInvalidInput, start, m.alphabet.String())
	}
	return nil
}

// Generate builds a string beginning with start by repeatedly sampling the
// next symbol from the current two-symbol context until the boundary symbol
// is drawn. The returned string never contains the boundary symbol and always
// begins with start. Identical sources produce identical strings.
//
// The loop is unbounded unless WithMaxLength is given; it does stop early with
// ctx.Err() if ctx is cancelled.
func (m *Model) Generate(ctx context.Context, start rune, src rand.Source, opts ...GenerateOption) (string, error) {
	if err := m.validateStart(start); err != nil {
		return "", err
	}
	options := newGenerateOptions(opts)

	var builder strings.Builder
	builder.WriteRune(start)
	generatedCount := 1
	state := Context{First: m.alphabet.Boundary(), Second: start}

	for options.maxLength <= 0 || generatedCount < options.maxLength {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		next, err := m.SampleNext(state, src)
		if err != nil {
			return "", fmt.Errorf("failed to sample after context %q: %w", state.String(), err)
		}
		if next == m.alphabet.Boundary() {
			m.logger.DebugContext(ctx, "Generation terminated by boundary symbol",
				slog.String("start", string(start)),
				slog.Int("generated_length", generatedCount),
			)
			return builder.String(), nil
		}

		builder.WriteRune(next)
		generatedCount++
		state = Context{First: state.Second, Second: next}
	}

	m.logger.DebugContext(ctx, "Generation terminated by reaching maxLength",
		slog.String("start", string(start)),
		slog.Int("max_length", options.maxLength),
	)
	return builder.String(), nil
}
