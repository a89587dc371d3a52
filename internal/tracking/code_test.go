package tracking

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^EVT-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`)

func TestGenerateShape(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 5000; i++ {
		code := g.Generate()
		require.Regexp(t, codePattern, code)
		require.True(t, Valid(code))
		require.False(t, strings.ContainsAny(code[len(Prefix):], "IO01"), code)
	}
}

func TestGenerateCoversAlphabet(t *testing.T) {
	g := NewGeneratorWithSource(rand.NewPCG(1, 2))
	seen := make(map[rune]bool)
	for i := 0; i < 2000; i++ {
		for _, c := range g.Generate()[len(Prefix):] {
			seen[c] = true
		}
	}
	assert.Len(t, seen, len(Alphabet))
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	a := NewGeneratorWithSource(rand.NewPCG(7, 7))
	b := NewGeneratorWithSource(rand.NewPCG(7, 7))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

func TestNormalizeAndValid(t *testing.T) {
	assert.Equal(t, "EVT-ABC234", Normalize("  evt-abc234 "))
	assert.True(t, Valid("EVT-ABC234"))
	assert.False(t, Valid("EVT-ABC23"))
	assert.False(t, Valid("EVT-ABC2O4"))
	assert.False(t, Valid("EVX-ABC234"))
	assert.False(t, Valid("evt-abc234"))
}
