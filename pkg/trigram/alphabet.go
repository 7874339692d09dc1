package trigram

import (
	"fmt"
	"slices"
)

// DefaultBoundary is the reserved symbol marking the start and end of every
// corpus entry.
const DefaultBoundary = '.'

// Alphabet is the sorted set of symbols seen in a corpus, together with the
// boundary symbol. Symbols are ordered by code point, so the same corpus always
// yields the same Alphabet.
type Alphabet struct {
	symbols  []rune
	index    map[rune]int
	boundary rune
}

// NewAlphabet collects every distinct symbol of corpus, adds boundary and
// sorts the result. It fails with ErrConfiguration if any corpus entry already
// contains the boundary symbol.
func NewAlphabet(corpus []string, boundary rune) (*Alphabet, error) {
	seen := map[rune]struct{}{boundary: {}}
	for i, entry := range corpus {
		for _, r := range entry {
			if r == boundary {
				return nil, fmt.Errorf("%w: boundary %q appears in corpus entry %d (%q)", ErrConfiguration, boundary, i, entry)
			}
			seen[r] = struct{}{}
		}
	}

	symbols := make([]rune, 0, len(seen))
	for r := range seen {
		symbols = append(symbols, r)
	}
	slices.Sort(symbols)

	index := make(map[rune]int, len(symbols))
	for i, r := range symbols {
		index[r] = i
	}

	return &Alphabet{
		symbols:  symbols,
		index:    index,
		boundary: boundary,
	}, nil
}

// Symbols returns a copy of the symbols in canonical order.
func (a *Alphabet) Symbols() []rune {
	return slices.Clone(a.symbols)
}

// Len returns the number of symbols, boundary included.
func (a *Alphabet) Len() int {
	return len(a.symbols)
}

// Boundary returns the reserved boundary symbol.
func (a *Alphabet) Boundary() rune {
	return a.boundary
}

// Contains reports whether r is a member of the Alphabet. The boundary symbol
// is a member.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// Index returns the canonical position of r.
func (a *Alphabet) Index(r rune) (int, bool) {
	i, ok := a.index[r]
	return i, ok
}

// String renders the Alphabet in canonical order, e.g. ".abc".
func (a *Alphabet) String() string {
	return string(a.symbols)
}
