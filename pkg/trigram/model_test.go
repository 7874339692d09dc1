package trigram

import (
	"errors"
	"math"
	"testing"
)

func TestModelRowsAreDistributions(t *testing.T) {
	m := setupTestModel(t)

	for _, c := range m.Counts().Contexts() {
		row, err := m.Row(c)
		if err != nil {
			t.Fatalf("Row(%q) failed: %v", c.String(), err)
		}
		var sum float64
		for _, p := range row {
			if p <= 0 {
				t.Fatalf("row %q has non-positive entry %v", c.String(), p)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("row %q sums to %v, want 1", c.String(), sum)
		}
	}
}

func TestModelProbabilities(t *testing.T) {
	corpus := []string{"ab"}
	a, _ := NewAlphabet(corpus, '.')
	table, _ := NewCountTable(a, corpus)
	m, err := NewModel(table, NewEncoder(table))
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}

	testCases := []struct {
		ctx      Context
		next     rune
		expected float64
	}{
		{Context{'.', 'a'}, 'b', 2.0 / 4.0},
		{Context{'.', 'a'}, 'a', 1.0 / 4.0},
		{Context{'a', 'b'}, '.', 2.0 / 4.0},
		{Context{'b', 'b'}, 'a', 1.0 / 3.0},
	}
	for _, tc := range testCases {
		p, err := m.Prob(tc.ctx, tc.next)
		if err != nil {
			t.Fatalf("Prob(%q, %q) failed: %v", tc.ctx.String(), tc.next, err)
		}
		if math.Abs(p-tc.expected) > 1e-12 {
			t.Errorf("Prob(%q, %q) = %v, want %v", tc.ctx.String(), tc.next, p, tc.expected)
		}
		lp, err := m.LogProb(tc.ctx, tc.next)
		if err != nil {
			t.Fatalf("LogProb(%q, %q) failed: %v", tc.ctx.String(), tc.next, err)
		}
		if math.IsInf(lp, 0) || math.Abs(lp-math.Log(tc.expected)) > 1e-12 {
			t.Errorf("LogProb(%q, %q) = %v, want %v", tc.ctx.String(), tc.next, lp, math.Log(tc.expected))
		}
	}
}

func TestModelUnknownLookups(t *testing.T) {
	m := setupTestModel(t)

	if _, err := m.SampleNext(Context{'$', 'a'}, newSource(1)); !errors.Is(err, ErrUnknownContext) {
		t.Errorf("SampleNext: expected ErrUnknownContext, got %v", err)
	}
	if _, err := m.LogProb(Context{'a', '$'}, 'a'); !errors.Is(err, ErrUnknownContext) {
		t.Errorf("LogProb unknown context: expected ErrUnknownContext, got %v", err)
	}
	if _, err := m.LogProb(Context{'a', 'b'}, '$'); !errors.Is(err, ErrEncoding) {
		t.Errorf("LogProb unknown symbol: expected ErrEncoding, got %v", err)
	}
}

func TestNewModelRejectsForeignEncoder(t *testing.T) {
	small, _ := NewAlphabet([]string{"ab"}, '.')
	smallTable, _ := NewCountTable(small, []string{"ab"})
	large, _ := NewAlphabet([]string{"abc"}, '.')
	largeTable, _ := NewCountTable(large, []string{"abc"})

	if _, err := NewModel(largeTable, NewEncoder(smallTable)); !errors.Is(err, ErrEncoding) {
		t.Errorf("expected ErrEncoding for mismatched encoder, got %v", err)
	}
}

func TestSampleNextFollowsDistribution(t *testing.T) {
	corpus := []string{"ab"}
	m, err := Train(t.Context(), corpus)
	if err != nil {
		t.Fatalf("Train() failed: %v", err)
	}

	const draws = 20000
	src := newSource(42)
	counts := make(map[rune]int)
	for i := 0; i < draws; i++ {
		r, err := m.SampleNext(Context{'.', 'a'}, src)
		if err != nil {
			t.Fatalf("SampleNext failed: %v", err)
		}
		counts[r]++
	}

	// Row (.a) is . 1/4, a 1/4, b 1/2.
	expected := map[rune]float64{'.': 0.25, 'a': 0.25, 'b': 0.5}
	for r, p := range expected {
		got := float64(counts[r]) / draws
		if math.Abs(got-p) > 0.02 {
			t.Errorf("symbol %q drawn with frequency %.3f, want about %.2f", r, got, p)
		}
	}
}

func TestModelStats(t *testing.T) {
	m, _ := Train(t.Context(), []string{"ab", "abb"}, WithSmoothing(2))
	stats := m.Stats()

	if stats.AlphabetSize != 3 || stats.Alphabet != ".ab" {
		t.Errorf("unexpected alphabet stats: %+v", stats)
	}
	if stats.Contexts != 9 || stats.Cells != 27 {
		t.Errorf("unexpected shape stats: %+v", stats)
	}
	if stats.PseudoCount != 2 || stats.ObservedTrigrams != 5 {
		t.Errorf("unexpected count stats: %+v", stats)
	}
}
