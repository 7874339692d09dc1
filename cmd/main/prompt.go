package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/CTAG07/trigram/pkg/trigram"
)

// runPrompt reads one start letter per line from in and writes one generated
// name per line to out. It returns nil on end of input, on cancellation, or
// when a start letter is outside the model's alphabet; that last case is the
// prompt's way of saying goodbye rather than a failure.
func runPrompt(ctx context.Context, in io.Reader, out io.Writer, svc *ModelService, config *PromptConfig, src rand.Source, logger *slog.Logger) error {
	scanner := bufio.NewScanner(in)

	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := fmt.Fprint(out, config.Prompt); err != nil {
			return err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read prompt input: %w", err)
			}
			_, _ = fmt.Fprintln(out)
			return nil
		}

		model := svc.Model()
		if model == nil {
			return errors.New("prompt started before the model was trained")
		}

		start, err := parseStart(strings.TrimSpace(scanner.Text()))
		if err == nil {
			var name string
			name, err = model.Generate(ctx, start, src, svc.GenerateOptions()...)
			if err == nil {
				if _, err = fmt.Fprintln(out, name); err != nil {
					return err
				}
				continue
			}
		}

		if errors.Is(err, trigram.ErrInvalidInput) {
			logger.DebugContext(ctx, "Prompt stopped on input outside the alphabet", slog.Any("error", err))
			_, _ = fmt.Fprintf(out, "%q is not a starting letter I know, goodbye.\n", strings.TrimSpace(scanner.Text()))
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
}
