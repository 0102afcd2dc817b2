// Package config provides shared configuration types and validation helpers
// for the scanner pipeline and its HTTP surface.
package config

import (
	"fmt"
	"time"
)

// ScanOptions contains the tunables of one scan pipeline instance.
type ScanOptions struct {
	// MaxScanGoRoutines controls the number of concurrent candidate workers.
	MaxScanGoRoutines int
	// RuleTimeout is the time budget for one rule evaluated against one
	// candidate string. On timeout the rule is skipped for that candidate.
	RuleTimeout time.Duration
	// MinCandidateLength filters out noise strings before matching.
	MinCandidateLength int
	// MinTokenLength is the minimum length a whole candidate must exceed to
	// be eligible for entropy flagging.
	MinTokenLength int
	// EntropyThreshold is the bits-per-character bound above which a token
	// counts as high entropy.
	EntropyThreshold float64
	// TruffleHog enables the TruffleHog detector pass over the extracted corpus.
	TruffleHog bool
	// TruffleHogVerification enables live credential verification for
	// TruffleHog hits.
	TruffleHogVerification bool
	// RemoteRulesURL optionally augments the builtin catalog with a
	// secrets-patterns-db style YAML file. Empty means builtin rules only.
	RemoteRulesURL string
	// MaxUploadSize is the maximum accepted APK upload size in bytes.
	MaxUploadSize int64
}

// DefaultScanOptions returns sensible default values.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MaxScanGoRoutines:      4,
		RuleTimeout:            500 * time.Millisecond,
		MinCandidateLength:     5,
		MinTokenLength:         20,
		EntropyThreshold:       4.5,
		TruffleHog:             false,
		TruffleHogVerification: false,
		RemoteRulesURL:         "",
		MaxUploadSize:          100 * 1024 * 1024, // 100MB
	}
}

// Validate checks option invariants.
func (o ScanOptions) Validate() error {
	if o.MaxScanGoRoutines < 1 {
		return fmt.Errorf("MaxScanGoRoutines must be at least 1, got %d", o.MaxScanGoRoutines)
	}
	if o.RuleTimeout <= 0 {
		return fmt.Errorf("RuleTimeout must be positive, got %s", o.RuleTimeout)
	}
	if o.MinCandidateLength < 1 {
		return fmt.Errorf("MinCandidateLength must be at least 1, got %d", o.MinCandidateLength)
	}
	if o.EntropyThreshold <= 0 {
		return fmt.Errorf("EntropyThreshold must be positive, got %f", o.EntropyThreshold)
	}
	if o.MaxUploadSize < 1 {
		return fmt.Errorf("MaxUploadSize must be positive, got %d", o.MaxUploadSize)
	}
	return nil
}
