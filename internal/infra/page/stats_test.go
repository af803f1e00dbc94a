package page

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

type fixedCounter struct {
	n   int
	err error
}

func (f fixedCounter) Count(string) (int, error) { return f.n, f.err }

func TestComputeStats(t *testing.T) {
	c := &Content{Text: "one two three four five six seven eight nine", Links: 2, LinkChars: 9}

	s := ComputeStats(c, nil, 4.5)
	assert.Equal(t, 44, s.Chars)
	assert.Equal(t, 9, s.Words)
	assert.Equal(t, 10, s.EstimatedTokens) // ceil(44/4.5)
	assert.Equal(t, 0, s.Tokens)
	assert.Equal(t, 2, s.Links)
	assert.InDelta(t, 9.0/44.0, s.LinkDensity, 1e-9)

	s = ComputeStats(c, fixedCounter{n: 11}, 0)
	assert.Equal(t, 11, s.Tokens)
	assert.Equal(t, 10, s.EstimatedTokens, "zero ratio falls back to 4.5")

	s = ComputeStats(c, fixedCounter{err: errors.New("no encoding")}, 4.5)
	assert.Equal(t, 0, s.Tokens)
}

func TestComputeStats_EmptyAndDenseText(t *testing.T) {
	s := ComputeStats(&Content{}, nil, 4.5)
	assert.Zero(t, s.Chars)
	assert.Zero(t, s.LinkDensity)

	s = ComputeStats(&Content{Text: "ab", LinkChars: 10}, nil, 4.5)
	assert.Equal(t, 1.0, s.LinkDensity)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 0))

	multi := strings.Repeat("é", 5000)
	out := Truncate(multi, 4000)
	assert.Equal(t, 4000, utf8.RuneCountInString(out))
	assert.True(t, utf8.ValidString(out))
}
