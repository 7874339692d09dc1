package trigram

import "fmt"

// validateEntry checks that every symbol of entry can be scored. The boundary
// symbol only ever appears as padding, so it is rejected like a foreign one.
func (m *Model) validateEntry(entry string) error {
	for _, r := range entry {
		if r == m.alphabet.Boundary() {
			return fmt.Errorf("%w: entry %q contains the boundary symbol %q", ErrEncoding, entry, r)
		}
		if !m.alphabet.Contains(r) {
			return fmt.Errorf("%w: symbol %q in entry %q is not in the alphabet", ErrEncoding, r, entry)
		}
	}
	return nil
}

// NLL returns the summed negative log-likelihood of a single entry and the
// number of trigram windows it was summed over. The entry is wrapped with the
// boundary symbol exactly as during counting. Any symbol outside the Alphabet,
// and the boundary symbol itself, fails with ErrEncoding.
func (m *Model) NLL(entry string) (float64, int, error) {
	if err := m.validateEntry(entry); err != nil {
		return 0, 0, err
	}

	var sum float64
	var windows int
	err := forEachWindow(entry, m.alphabet.Boundary(), func(c Context, next rune) error {
		lp, err := m.LogProb(c, next)
		if err != nil {
			return err
		}
		sum -= lp
		windows++
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("scoring entry %q: %w", entry, err)
	}
	return sum, windows, nil
}

// MeanNLL returns the negative log-likelihood of corpus averaged over every
// trigram window of every entry. This is one global mean, not a mean of
// per-entry means. It fails with ErrEmptyCorpus if there are no windows.
func (m *Model) MeanNLL(corpus []string) (float64, error) {
	var total float64
	var windows int
	for _, entry := range corpus {
		sum, n, err := m.NLL(entry)
		if err != nil {
			return 0, err
		}
		total += sum
		windows += n
	}
	if windows == 0 {
		return 0, fmt.Errorf("%w: %d entries produced no trigram windows", ErrEmptyCorpus, len(corpus))
	}
	return total / float64(windows), nil
}
