// Package confidence combines signature strength, entropy and contextual
// cues into a 0-100 confidence score per finding.
package confidence

import (
	"strings"

	"github.com/mobsec-labs/secrethunter/pkg/scanner/entropy"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

// HighConfidenceFloor is the minimum score a match from a high-confidence
// rule can receive, regardless of context penalties.
const HighConfidenceFloor = 70

// shortValueLength marks values too short to be a plausible secret.
const shortValueLength = 8

// placeholderMarkers are substrings of common placeholder values that are
// almost never real secrets.
var placeholderMarkers = []string{
	"example",
	"sample",
	"dummy",
	"test",
	"placeholder",
	"changeme",
	"your_",
	"yourkey",
	"lorem",
	"xxxx",
	"1234567890",
}

// Scorer computes confidence scores. The zero value is not usable; construct
// with NewScorer.
type Scorer struct {
	entropyThreshold float64
}

// NewScorer returns a scorer using the given entropy threshold for bonuses.
func NewScorer(entropyThreshold float64) Scorer {
	if entropyThreshold <= 0 {
		entropyThreshold = entropy.DefaultThreshold
	}
	return Scorer{entropyThreshold: entropyThreshold}
}

// Score combines the rule's base confidence, an entropy bonus and a context
// penalty into a value in [0,100].
//
// The score is monotonic in the value's entropy: the bonus never decreases
// as entropy grows, and the penalty is independent of entropy. Matches from
// high-confidence rules never score below HighConfidenceFloor.
func (s Scorer) Score(rule types.Rule, value string, valueEntropy float64) int {
	score := rule.BaseConfidence
	score += s.entropyBonus(valueEntropy)
	score -= contextPenalty(value)

	if rule.HighConfidence && score < HighConfidenceFloor {
		score = HighConfidenceFloor
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// entropyBonus grows stepwise with entropy above the threshold, capped at 20.
func (s Scorer) entropyBonus(h float64) int {
	if h <= s.entropyThreshold {
		return 0
	}
	bonus := 10 + int((h-s.entropyThreshold)*10)
	if bonus > 20 {
		bonus = 20
	}
	return bonus
}

// contextPenalty flags known false-positive shapes: placeholder strings,
// single-repeated-character tokens and values too short to be secrets.
func contextPenalty(value string) int {
	penalty := 0
	lower := strings.ToLower(value)

	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			penalty += 30
			break
		}
	}

	if isRepeatedCharacter(value) {
		penalty += 40
	}

	if len(value) < shortValueLength {
		penalty += 20
	}

	return penalty
}

func isRepeatedCharacter(value string) bool {
	if value == "" {
		return false
	}
	first := rune(0)
	for i, r := range value {
		if i == 0 {
			first = r
			continue
		}
		if r != first {
			return false
		}
	}
	return true
}
