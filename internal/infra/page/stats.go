package page

import (
	"math"
	"strings"
	"unicode/utf8"
)

// TokenCounter gives an exact token count for text. Implementations must be safe for concurrent use.
type TokenCounter interface {
	Count(text string) (int, error)
}

// Stats are display-only numbers about the extracted content.
type Stats struct {
	Chars           int
	Words           int
	EstimatedTokens int
	// Tokens is the exact count from a TokenCounter; 0 when unavailable.
	Tokens      int
	Links       int
	LinkChars   int
	LinkDensity float64 // LinkChars / Chars, 0..1
}

// ComputeStats measures the content's plain text. counter may be nil.
func ComputeStats(c *Content, counter TokenCounter, charsPerToken float64) Stats {
	if charsPerToken <= 0 {
		charsPerToken = 4.5
	}
	chars := utf8.RuneCountInString(c.Text)
	s := Stats{
		Chars:           chars,
		Words:           len(strings.Fields(c.Text)),
		EstimatedTokens: int(math.Ceil(float64(chars) / charsPerToken)),
		Links:           c.Links,
		LinkChars:       c.LinkChars,
	}
	if chars > 0 {
		s.LinkDensity = math.Min(1, float64(c.LinkChars)/float64(chars))
	}
	if counter != nil {
		if n, err := counter.Count(c.Text); err == nil {
			s.Tokens = n
		}
	}
	return s
}

// Truncate returns at most max runes of s. max <= 0 means no limit.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
