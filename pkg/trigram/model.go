package trigram

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model is the trained trigram probability model. Its matrix holds, for every
// encoded context row and encoded symbol column, the probability of that
// symbol following that context. Every row sums to one and every entry is
// strictly positive.
type Model struct {
	alphabet *Alphabet
	counts   *CountTable
	encoder  *Encoder
	matrix   []float64
	logger   *slog.Logger
}

// NewModel normalises the counts of t into a dense probability matrix laid out
// by the IDs of e. Because every count is at least the pseudo-count, every row
// sum is at least the Alphabet size and no division can be by zero.
// The Encoder must have been built from the same table.
func NewModel(t *CountTable, e *Encoder) (*Model, error) {
	size := t.alphabet.Len()
	if e.NumSymbols() != size || e.NumContexts() != t.Len() {
		return nil, fmt.Errorf("%w: encoder covers %d symbols and %d contexts, table has %d and %d",
			ErrEncoding, e.NumSymbols(), e.NumContexts(), size, t.Len())
	}

	matrix := make([]float64, e.NumContexts()*size)
	row := make([]float64, size)

	for _, c := range t.Contexts() {
		ctxID, err := e.ContextID(c)
		if err != nil {
			return nil, err
		}
		counts, err := t.Row(c)
		if err != nil {
			return nil, err
		}
		for k, n := range counts {
			symID, err := e.SymbolID(t.alphabet.symbols[k])
			if err != nil {
				return nil, err
			}
			row[symID] = float64(n)
		}
		floats.Scale(1/floats.Sum(row), row)
		copy(matrix[ctxID*size:(ctxID+1)*size], row)
	}

	return &Model{
		alphabet: t.alphabet,
		counts:   t,
		encoder:  e,
		matrix:   matrix,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Alphabet returns the Alphabet the model was trained over.
func (m *Model) Alphabet() *Alphabet {
	return m.alphabet
}

// Counts returns the smoothed count table the model was normalised from.
func (m *Model) Counts() *CountTable {
	return m.counts
}

// Encoder returns the symbol and context encoding used by the matrix.
func (m *Model) Encoder() *Encoder {
	return m.encoder
}

// row returns the live matrix row for c. Callers must not modify it.
func (m *Model) row(c Context) ([]float64, error) {
	ctxID, err := m.encoder.ContextID(c)
	if err != nil {
		if errors.Is(err, ErrEncoding) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownContext, c.String())
		}
		return nil, err
	}
	size := m.alphabet.Len()
	return m.matrix[ctxID*size : (ctxID+1)*size], nil
}

// Row returns a copy of the next-symbol distribution for c, indexed by
// symbol ID.
func (m *Model) Row(c Context) ([]float64, error) {
	row, err := m.row(c)
	if err != nil {
		return nil, err
	}
	return slices.Clone(row), nil
}

// Prob returns P(next | c).
func (m *Model) Prob(c Context, next rune) (float64, error) {
	row, err := m.row(c)
	if err != nil {
		return 0, err
	}
	symID, err := m.encoder.SymbolID(next)
	if err != nil {
		return 0, err
	}
	return row[symID], nil
}

// LogProb returns the natural logarithm of P(next | c). Smoothing keeps every
// probability above zero, so the result is always finite.
func (m *Model) LogProb(c Context, next rune) (float64, error) {
	p, err := m.Prob(c, next)
	if err != nil {
		return 0, err
	}
	return math.Log(p), nil
}

// SampleNext draws one symbol from the distribution following c using src.
// Every symbol is selected with exactly its probability in the row; the draw
// is never a deterministic argmax.
func (m *Model) SampleNext(c Context, src rand.Source) (rune, error) {
	row, err := m.row(c)
	if err != nil {
		return 0, err
	}
	choice := distuv.NewCategorical(row, src)
	return m.encoder.Symbol(int(choice.Rand()))
}
