package tracking

import (
	"math/rand/v2"
	"strings"
	"sync"
)

const (
	// Prefix starts every tracking code
	Prefix = "EVT-"
	// Alphabet excludes I, O, 0 and 1
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// Length is the number of random symbols after the prefix
	Length = 6
)

// Generator produces tracking codes
type Generator interface {
	Generate() string
}

// RandomGenerator draws symbols uniformly from Alphabet
type RandomGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator backed by a randomly seeded PCG source
func NewGenerator() *RandomGenerator {
	return NewGeneratorWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewGeneratorWithSource creates a generator using src
func NewGeneratorWithSource(src rand.Source) *RandomGenerator {
	return &RandomGenerator{rng: rand.New(src)}
}

// Generate returns a new code of the form EVT-XXXXXX
func (g *RandomGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(len(Prefix) + Length)
	b.WriteString(Prefix)
	for i := 0; i < Length; i++ {
		b.WriteByte(Alphabet[g.rng.IntN(len(Alphabet))])
	}
	return b.String()
}

// Normalize trims and uppercases a user supplied code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code has the tracking code shape
func Valid(code string) bool {
	if len(code) != len(Prefix)+Length || !strings.HasPrefix(code, Prefix) {
		return false
	}
	for _, c := range code[len(Prefix):] {
		if !strings.ContainsRune(Alphabet, c) {
			return false
		}
	}
	return true
}
