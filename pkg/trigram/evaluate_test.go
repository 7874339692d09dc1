package trigram

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestMeanNLLSingleEntry(t *testing.T) {
	corpus := []string{"ab"}
	m, err := Train(context.Background(), corpus)
	if err != nil {
		t.Fatalf("Train() failed: %v", err)
	}

	got, err := m.MeanNLL(corpus)
	if err != nil {
		t.Fatalf("MeanNLL failed: %v", err)
	}

	lp1, _ := m.LogProb(Context{'.', 'a'}, 'b')
	lp2, _ := m.LogProb(Context{'a', 'b'}, '.')
	expected := -(lp1 + lp2) / 2
	if math.Abs(got-expected) > 1e-12 {
		t.Errorf("MeanNLL = %v, want %v", got, expected)
	}
	// Both windows have smoothed probability 2/4.
	if math.Abs(got-math.Ln2) > 1e-12 {
		t.Errorf("MeanNLL = %v, want ln 2 = %v", got, math.Ln2)
	}
	if got <= 0 {
		t.Errorf("expected a strictly positive NLL, got %v", got)
	}
}

func TestMeanNLLGrowsWithSmoothing(t *testing.T) {
	corpus := []string{"ab"}

	previous := 0.0
	for _, k := range []int{1, 2, 5, 20} {
		m, err := Train(context.Background(), corpus, WithSmoothing(k))
		if err != nil {
			t.Fatalf("Train(k=%d) failed: %v", k, err)
		}
		nll, err := m.MeanNLL(corpus)
		if err != nil {
			t.Fatalf("MeanNLL(k=%d) failed: %v", k, err)
		}
		if nll <= previous {
			t.Errorf("k=%d: NLL %v did not grow past %v", k, nll, previous)
		}
		previous = nll
	}
}

func TestMeanNLLIsGlobalMean(t *testing.T) {
	m := setupTestModel(t)
	corpus := []string{"al", "isabella"}

	var total float64
	var windows int
	for _, entry := range corpus {
		sum, n, err := m.NLL(entry)
		if err != nil {
			t.Fatalf("NLL(%q) failed: %v", entry, err)
		}
		total += sum
		windows += n
	}
	if windows != 2+8 {
		t.Fatalf("expected 10 windows, got %d", windows)
	}

	got, err := m.MeanNLL(corpus)
	if err != nil {
		t.Fatalf("MeanNLL failed: %v", err)
	}
	if math.Abs(got-total/float64(windows)) > 1e-12 {
		t.Errorf("MeanNLL = %v, want %v", got, total/float64(windows))
	}
}

func TestMeanNLLErrors(t *testing.T) {
	m := setupTestModel(t)

	if _, err := m.MeanNLL(nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("nil corpus: expected ErrEmptyCorpus, got %v", err)
	}
	if _, err := m.MeanNLL([]string{"", ""}); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("blank entries: expected ErrEmptyCorpus, got %v", err)
	}

	testCases := []struct {
		name  string
		entry string
	}{
		{name: "Foreign symbol as next symbol", entry: "a$b"},
		{name: "Foreign symbol in first context", entry: "$ab"},
		{name: "Foreign symbol at end", entry: "ab$"},
		{name: "Embedded boundary symbol", entry: "a.b"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.MeanNLL([]string{"emma", tc.entry})
			if !errors.Is(err, ErrEncoding) {
				t.Errorf("MeanNLL(%q): expected ErrEncoding, got %v", tc.entry, err)
			}
			if errors.Is(err, ErrUnknownContext) {
				t.Errorf("MeanNLL(%q): did not expect ErrUnknownContext", tc.entry)
			}
		})
	}
}

func TestTrainedCorpusScoresBetterThanUniform(t *testing.T) {
	m := setupTestModel(t)

	nll, err := m.MeanNLL(testCorpus)
	if err != nil {
		t.Fatalf("MeanNLL failed: %v", err)
	}
	uniform := math.Log(float64(m.Alphabet().Len()))
	if nll >= uniform {
		t.Errorf("training NLL %v is not below the uniform baseline %v", nll, uniform)
	}
}

func BenchmarkTrain(b *testing.B) {
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Train(ctx, testCorpus); err != nil {
			b.Fatalf("Train() failed: %v", err)
		}
	}
}
