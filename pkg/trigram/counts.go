package trigram

import (
	"fmt"
	"slices"
)

// DefaultPseudoCount is the Laplace smoothing count every triple starts with.
const DefaultPseudoCount = 1

// Context is the ordered pair of symbols that conditions the next symbol.
type Context struct {
	First  rune
	Second rune
}

// String renders the context as its two symbols, e.g. ".a".
func (c Context) String() string {
	return string([]rune{c.First, c.Second})
}

// countOptions Is used by NewCountTable to configure smoothing.
type countOptions struct {
	pseudoCount int
}

// CountOption configures how a CountTable is built.
type CountOption func(*countOptions)

// WithPseudoCount sets the Laplace smoothing count added to every
// (context, next-symbol) triple. It must be at least 1 so that no probability
// is ever zero.
// Default: 1
func WithPseudoCount(k int) CountOption {
	return func(o *countOptions) { o.pseudoCount = k }
}

// CountTable holds the smoothed trigram counts for every context over an
// Alphabet. The table is dense: cell ((i*A)+j)*A+k holds the count of symbol k
// following the context (symbol i, symbol j), where A is the Alphabet size and
// i, j, k are canonical Alphabet positions.
type CountTable struct {
	alphabet    *Alphabet
	cells       []int
	pseudoCount int
	observed    int
}

// NewCountTable initialises every triple over the Alphabet to the pseudo-count
// and then adds one for every trigram window of every boundary-wrapped corpus
// entry. A corpus symbol outside the Alphabet fails with ErrEncoding.
func NewCountTable(alphabet *Alphabet, corpus []string, opts ...CountOption) (*CountTable, error) {
	options := &countOptions{
		pseudoCount: DefaultPseudoCount,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.pseudoCount < 1 {
		return nil, fmt.Errorf("%w: pseudo-count must be at least 1, got %d", ErrConfiguration, options.pseudoCount)
	}

	size := alphabet.Len()
	cells := make([]int, size*size*size)
	for i := range cells {
		cells[i] = options.pseudoCount
	}

	t := &CountTable{
		alphabet:    alphabet,
		cells:       cells,
		pseudoCount: options.pseudoCount,
	}

	for _, entry := range corpus {
		err := forEachWindow(entry, alphabet.Boundary(), func(c Context, next rune) error {
			idx, err := t.cellIndex(c, next)
			if err != nil {
				return err
			}
			t.cells[idx]++
			t.observed++
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("counting entry %q: %w", entry, err)
		}
	}

	return t, nil
}

// forEachWindow wraps entry with one boundary symbol on each side and calls fn
// for every window of three consecutive symbols.
func forEachWindow(entry string, boundary rune, fn func(c Context, next rune) error) error {
	wrapped := make([]rune, 0, len(entry)+2)
	wrapped = append(wrapped, boundary)
	wrapped = append(wrapped, []rune(entry)...)
	wrapped = append(wrapped, boundary)

	for i := 0; i+2 < len(wrapped); i++ {
		if err := fn(Context{First: wrapped[i], Second: wrapped[i+1]}, wrapped[i+2]); err != nil {
			return err
		}
	}
	return nil
}

// cellIndex maps a (context, next) triple onto the flat cell slice.
func (t *CountTable) cellIndex(c Context, next rune) (int, error) {
	row, err := t.rowIndex(c)
	if err != nil {
		return 0, err
	}
	k, ok := t.alphabet.Index(next)
	if !ok {
		return 0, fmt.Errorf("%w: symbol %q is not in the alphabet", ErrEncoding, next)
	}
	return row*t.alphabet.Len() + k, nil
}

// rowIndex returns the canonical row of a context.
func (t *CountTable) rowIndex(c Context) (int, error) {
	i, ok := t.alphabet.Index(c.First)
	if !ok {
		return 0, fmt.Errorf("%w: symbol %q is not in the alphabet", ErrEncoding, c.First)
	}
	j, ok := t.alphabet.Index(c.Second)
	if !ok {
		return 0, fmt.Errorf("%w: symbol %q is not in the alphabet", ErrEncoding, c.Second)
	}
	return i*t.alphabet.Len() + j, nil
}

// Alphabet returns the Alphabet the table was built over.
func (t *CountTable) Alphabet() *Alphabet {
	return t.alphabet
}

// Contexts returns every context over the Alphabet in row-major canonical
// order: all contexts starting with the first symbol, then the second, etc.
func (t *CountTable) Contexts() []Context {
	symbols := t.alphabet.symbols
	contexts := make([]Context, 0, len(symbols)*len(symbols))
	for _, first := range symbols {
		for _, second := range symbols {
			contexts = append(contexts, Context{First: first, Second: second})
		}
	}
	return contexts
}

// Len returns the number of contexts in the table, always A².
func (t *CountTable) Len() int {
	size := t.alphabet.Len()
	return size * size
}

// Count returns the smoothed count of next following c.
func (t *CountTable) Count(c Context, next rune) (int, error) {
	idx, err := t.cellIndex(c, next)
	if err != nil {
		return 0, err
	}
	return t.cells[idx], nil
}

// Row returns a copy of the smoothed counts following c, one per Alphabet
// symbol in canonical order.
func (t *CountTable) Row(c Context) ([]int, error) {
	row, err := t.rowIndex(c)
	if err != nil {
		return nil, err
	}
	size := t.alphabet.Len()
	return slices.Clone(t.cells[row*size : (row+1)*size]), nil
}

// PseudoCount returns the smoothing count the table was built with.
func (t *CountTable) PseudoCount() int {
	return t.pseudoCount
}

// Observed returns the number of corpus trigram windows that were counted.
func (t *CountTable) Observed() int {
	return t.observed
}
