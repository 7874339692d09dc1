package trigram

import (
	"context"
	"log/slog"
	"math/rand/v2"
)

// GenerateStream works like Generate but delivers symbols one at a time on
// the returned channel, start symbol first. The channel is closed once the
// boundary symbol is drawn, the length cap is reached, or ctx is cancelled.
// An invalid start symbol is reported before any goroutine is started.
//
// src is used from the generating goroutine only; the caller must not share
// it with other goroutines until the channel is closed.
func (m *Model) GenerateStream(ctx context.Context, start rune, src rand.Source, opts ...GenerateOption) (<-chan rune, error) {
	if err := m.validateStart(start); err != nil {
		return nil, err
	}
	options := newGenerateOptions(opts)

	symbolChan := make(chan rune)

	go func() {
		defer close(symbolChan)

		select {
		case <-ctx.Done():
			return
		case symbolChan <- start:
		}

		generatedCount := 1
		state := Context{First: m.alphabet.Boundary(), Second: start}

		for options.maxLength <= 0 || generatedCount < options.maxLength {
			next, err := m.SampleNext(state, src)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to sample next symbol for stream", slog.String("context", state.String()), slog.Any("error", err))
				return
			}
			if next == m.alphabet.Boundary() {
				return
			}

			select {
			case <-ctx.Done():
				m.logger.DebugContext(ctx, "Generation stream cancelled by context")
				return
			case symbolChan <- next:
			}
			generatedCount++
			state = Context{First: state.Second, Second: next}
		}
	}()

	return symbolChan, nil
}
