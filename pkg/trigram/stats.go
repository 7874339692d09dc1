package trigram

// ModelStats holds summary figures for a trained Model.
type ModelStats struct {
	AlphabetSize     int    // The number of symbols, boundary included
	Alphabet         string // The symbols in canonical order
	Contexts         int    // The number of context rows, always AlphabetSize²
	Cells            int    // The number of matrix entries
	PseudoCount      int    // The Laplace smoothing count
	ObservedTrigrams int    // The number of corpus windows counted during training
}

// Stats returns a snapshot of the model's shape and training totals.
func (m *Model) Stats() ModelStats {
	return ModelStats{
		AlphabetSize:     m.alphabet.Len(),
		Alphabet:         m.alphabet.String(),
		Contexts:         m.encoder.NumContexts(),
		Cells:            len(m.matrix),
		PseudoCount:      m.counts.PseudoCount(),
		ObservedTrigrams: m.counts.Observed(),
	}
}
