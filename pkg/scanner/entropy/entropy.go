// Package entropy implements Shannon entropy scoring for candidate strings.
// High entropy correlates with random material such as keys and tokens.
package entropy

import "math"

// DefaultThreshold is the entropy in bits per character above which a token
// is considered high entropy.
const DefaultThreshold = 4.5

// DefaultMinTokenLength is the minimum length a token must exceed before it
// can be entropy-flagged. Short strings produce meaningless entropy values.
const DefaultMinTokenLength = 20

// Shannon returns the Shannon entropy of the string's character distribution
// in bits per character. The empty string has zero entropy.
func Shannon(text string) float64 {
	if text == "" {
		return 0
	}

	frequencies := make(map[rune]int)
	total := 0
	for _, r := range text {
		frequencies[r]++
		total++
	}

	entropy := 0.0
	length := float64(total)
	for _, count := range frequencies {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}

	return entropy
}

// Flagger decides whether a whole token should be reported as high entropy.
type Flagger struct {
	Threshold      float64
	MinTokenLength int
}

// NewFlagger returns a flagger with the default threshold and length bounds.
func NewFlagger() Flagger {
	return Flagger{Threshold: DefaultThreshold, MinTokenLength: DefaultMinTokenLength}
}

// Flagged reports whether the token is long enough and random enough to be
// reported without a signature match, and returns its entropy.
func (f Flagger) Flagged(text string) (float64, bool) {
	if len(text) <= f.MinTokenLength {
		return 0, false
	}
	h := Shannon(text)
	return h, h > f.Threshold
}
