package trigram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

func TestGenerate(t *testing.T) {
	m := setupTestModel(t)
	ctx := context.Background()
	src := newSource(7)

	for i := 0; i < 200; i++ {
		name, err := m.Generate(ctx, 'a', src)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if name == "" {
			t.Fatal("Generate returned an empty string")
		}
		if !strings.HasPrefix(name, "a") {
			t.Errorf("expected %q to begin with the start symbol", name)
		}
		if strings.ContainsRune(name, m.Alphabet().Boundary()) {
			t.Errorf("generated %q contains the boundary symbol", name)
		}
		for _, r := range name {
			if !m.Alphabet().Contains(r) {
				t.Errorf("generated %q contains %q, which is outside the alphabet", name, r)
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	m := setupTestModel(t)
	ctx := context.Background()

	run := func(seed uint64) []string {
		src := newSource(seed)
		out := make([]string, 0, 25)
		for _, start := range "abcdefghijklmnopqrstuvwxyz" {
			if !m.Alphabet().Contains(start) {
				continue
			}
			name, err := m.Generate(ctx, start, src)
			if err != nil {
				t.Fatalf("Generate(%q) failed: %v", start, err)
			}
			out = append(out, name)
		}
		return out
	}

	first := run(1234)
	second := run(1234)
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Errorf("same seed produced different output:\n%v\n%v", first, second)
	}

	other := run(4321)
	if strings.Join(first, ",") == strings.Join(other, ",") {
		t.Errorf("different seeds produced identical output %v", first)
	}
}

func TestGenerateTerminates(t *testing.T) {
	m := setupTestModel(t)
	ctx := context.Background()
	src := newSource(99)

	const stepCap = 10000
	for i := 0; i < 500; i++ {
		name, err := m.Generate(ctx, 'e', src, WithMaxLength(stepCap))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if utf8.RuneCountInString(name) >= stepCap {
			t.Fatalf("generation hit the %d step cap", stepCap)
		}
	}
}

func TestGenerateInvalidStart(t *testing.T) {
	m := setupTestModel(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		start rune
	}{
		{name: "Symbol outside alphabet", start: '$'},
		{name: "Uppercase is not normalised", start: 'A'},
		{name: "Boundary symbol", start: DefaultBoundary},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Generate(ctx, tc.start, newSource(1))
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			_, err = m.GenerateStream(ctx, tc.start, newSource(1))
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("stream: expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGenerateMaxLength(t *testing.T) {
	m := setupTestModel(t)
	ctx := context.Background()
	src := newSource(5)

	for _, maxLength := range []int{1, 2, 3, 5} {
		for i := 0; i < 50; i++ {
			name, err := m.Generate(ctx, 'l', src, WithMaxLength(maxLength))
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if n := utf8.RuneCountInString(name); n < 1 || n > maxLength {
				t.Fatalf("WithMaxLength(%d) produced %q of length %d", maxLength, name, n)
			}
		}
	}
}

func TestGenerateCancelled(t *testing.T) {
	m := setupTestModel(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, 'a', newSource(1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	m := setupTestModel(t)
	ctx := context.Background()

	const workers = 8
	serial := make([]string, workers)
	for i := range serial {
		name, err := m.Generate(ctx, 's', newSource(uint64(i)))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		serial[i] = name
	}

	parallel := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, err := m.Generate(ctx, 's', newSource(uint64(i)))
			if err != nil {
				t.Errorf("Generate failed: %v", err)
				return
			}
			parallel[i] = name
		}(i)
	}
	wg.Wait()

	for i := range serial {
		if serial[i] != parallel[i] {
			t.Errorf("worker %d: serial %q, parallel %q", i, serial[i], parallel[i])
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	m, err := Train(context.Background(), testCorpus)
	if err != nil {
		b.Fatalf("Train() setup for benchmark failed: %v", err)
	}
	ctx := context.Background()
	src := newSource(1)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, err := m.Generate(ctx, 'a', src)
		if err != nil {
			b.Fatalf("Generate() failed: %v", err)
		}
		b.SetBytes(int64(len(s)))
	}
}
