package trigram

import "errors"

var (
	// ErrConfiguration is returned when the boundary symbol collides with a
	// symbol of the corpus, or when a build option is out of range.
	ErrConfiguration = errors.New("trigram: configuration error")
	// ErrEncoding is returned when a symbol, context or ID is not part of the
	// model's encoding.
	ErrEncoding = errors.New("trigram: encoding error")
	// ErrUnknownContext is returned when sampling or scoring from a context
	// the model has no row for.
	ErrUnknownContext = errors.New("trigram: unknown context")
	// ErrInvalidInput is returned when generation is requested with a start
	// symbol outside the alphabet, or with the boundary symbol itself.
	ErrInvalidInput = errors.New("trigram: invalid input")
	// ErrEmptyCorpus is returned when evaluation sees zero trigram windows.
	ErrEmptyCorpus = errors.New("trigram: empty corpus")
)
