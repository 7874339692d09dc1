package trigram

import (
	"context"
	"math/rand/v2"
	"testing"
)

// testCorpus is a small slice of the reference names list.
var testCorpus = []string{
	"emma", "olivia", "ava", "isabella", "sophia", "charlotte", "mia",
	"amelia", "harper", "evelyn", "abigail", "emily", "elizabeth", "mila",
	"ella", "avery", "sofia", "camila", "aria", "scarlett", "victoria",
	"madison", "luna", "grace", "chloe", "penelope", "layla", "riley",
	"zoey", "nora", "lily", "eleanor", "hannah", "lillian", "addison",
	"aubrey", "ellie", "stella", "natalie", "zoe", "leah", "hazel",
	"violet", "aurora", "savannah", "audrey", "brooklyn", "bella", "claire",
	"skylar", "jack", "quinn", "xavier", "kai", "yusuf", "wade", "fox",
}

// setupTestModel trains a model over testCorpus with default settings.
func setupTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := Train(context.Background(), testCorpus)
	if err != nil {
		t.Fatalf("setup: Train() failed: %v", err)
	}
	return m
}

// newSource returns a deterministic random source for seed.
func newSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
