// Package engine runs candidate strings through the signature catalog and
// entropy detector, scores and deduplicates the hits, and drives the job
// lifecycle of one scan.
package engine

import (
	"context"
	"errors"
	"io"
	"slices"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rxwycdh/rxhash"
	"github.com/wandb/parallel"

	"github.com/mobsec-labs/secrethunter/pkg/config"
	"github.com/mobsec-labs/secrethunter/pkg/format"
	"github.com/mobsec-labs/secrethunter/pkg/jobs"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/confidence"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/entropy"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/rules"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

// ErrPatternTimeout marks a single rule exceeding its evaluation budget on
// one candidate. It is absorbed by the pipeline and never fails a scan.
var ErrPatternTimeout = errors.New("pattern evaluation timed out")

// StringExtractor is the extraction collaborator: it turns an opaque
// application container into a stream of candidate strings.
type StringExtractor interface {
	ExtractStrings(r io.ReaderAt, size int64) ([]types.CandidateString, error)
}

// Pipeline is one scan pipeline instance. The catalog and options are
// read-only after construction, so a single pipeline is safely shared by
// concurrent scans.
type Pipeline struct {
	catalog   *rules.Catalog
	extractor StringExtractor
	store     jobs.Store
	opts      config.ScanOptions
	flagger   entropy.Flagger
	scorer    confidence.Scorer
}

// New builds a pipeline from an immutable catalog, an extraction
// collaborator and a job store.
func New(catalog *rules.Catalog, extractor StringExtractor, store jobs.Store, opts config.ScanOptions) *Pipeline {
	return &Pipeline{
		catalog:   catalog,
		extractor: extractor,
		store:     store,
		opts:      opts,
		flagger:   entropy.Flagger{Threshold: opts.EntropyThreshold, MinTokenLength: opts.MinTokenLength},
		scorer:    confidence.NewScorer(opts.EntropyThreshold),
	}
}

// Run executes one scan job end to end: running → extraction → detection →
// exactly one terminal store write. Only an extraction failure fails the
// job; per-rule timeouts are absorbed.
func (p *Pipeline) Run(ctx context.Context, jobID string, r io.ReaderAt, size int64) (jobs.Record, error) {
	if err := p.store.MarkRunning(jobID); err != nil {
		return jobs.Record{}, err
	}

	candidates, err := p.extractor.ExtractStrings(r, size)
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Extraction failed")
		if failErr := p.store.Fail(jobID, err.Error()); failErr != nil {
			return jobs.Record{}, failErr
		}
		return p.store.Get(jobID)
	}

	findings := p.Detect(ctx, candidates)
	if err := p.store.Complete(jobID, findings); err != nil {
		return jobs.Record{}, err
	}

	log.Info().Str("jobId", jobID).Int("candidates", len(candidates)).Int("findings", len(findings)).Msg("Scan completed")
	return p.store.Get(jobID)
}

// Detect runs the full detection stage over a deterministically ordered
// candidate stream and returns the deduplicated, severity-sorted findings.
// The output is byte-identical across runs for identical input order.
func (p *Pipeline) Detect(ctx context.Context, candidates []types.CandidateString) []types.Finding {
	group := parallel.Limited(ctx, p.opts.MaxScanGoRoutines)

	// Workers write disjoint indices so candidate order survives the
	// parallel fan-out regardless of completion order.
	perCandidate := make([][]types.Finding, len(candidates))
	for i, candidate := range candidates {
		group.Go(func(ctx context.Context) {
			perCandidate[i] = p.scanCandidate(ctx, candidate)
		})
	}
	group.Wait()

	findings := slices.Concat(perCandidate...)

	if p.opts.TruffleHog {
		findings = slices.Concat(findings, p.truffleHogPass(ctx, candidates))
	}

	findings = deduplicateFindings(findings)
	sortFindings(findings)
	return findings
}

// scanCandidate evaluates every catalog rule against one candidate and adds
// the entropy-only finding when no signature hit the candidate.
func (p *Pipeline) scanCandidate(ctx context.Context, candidate types.CandidateString) []types.Finding {
	text := format.SanitizeCandidate(candidate.Text)
	if len(text) < p.opts.MinCandidateLength {
		return nil
	}

	var findings []types.Finding
	for _, rule := range p.catalog.Rules() {
		matches, err := matchWithTimeout(ctx, rule, text, p.opts.RuleTimeout)
		if err != nil {
			log.Warn().Str("rule", rule.Name).Str("location", candidate.Location).Msg("Rule evaluation timed out, skipping rule for this candidate")
			continue
		}

		for _, match := range matches {
			if len(match.Value) < p.opts.MinCandidateLength {
				continue
			}
			findings = append(findings, p.buildFinding(rule.Rule, match.Value, candidate.Location))
		}
	}

	// Entropy catches random-looking tokens no signature knows about, but
	// only when the candidate was not already captured above.
	if len(findings) == 0 {
		if h, flagged := p.flagger.Flagged(text); flagged {
			findings = append(findings, types.Finding{
				Type:       rules.HighEntropyType,
				Value:      format.TruncateValue(text),
				Confidence: p.scorer.Score(rules.HighEntropyRule, text, h),
				Severity:   rules.HighEntropyRule.Severity,
				Location:   candidate.Location,
				CWE:        rules.HighEntropyRule.CWE,
			})
		}
	}

	return findings
}

func (p *Pipeline) buildFinding(rule types.Rule, value, location string) types.Finding {
	h := entropy.Shannon(value)
	return types.Finding{
		Type:       rule.Name,
		Value:      format.TruncateValue(value),
		Confidence: p.scorer.Score(rule, value, h),
		Severity:   rule.Severity,
		Location:   location,
		CWE:        rule.CWE,
	}
}

// matchWithTimeout evaluates one rule under a time budget. Go's regexp
// cannot be cancelled mid-match, so on timeout the match goroutine is left
// to finish on its own and its result is discarded.
func matchWithTimeout(ctx context.Context, rule rules.Compiled, text string, budget time.Duration) ([]types.RawMatch, error) {
	result := make(chan []types.RawMatch, 1)
	go func() {
		result <- rule.Match(text)
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case matches := <-result:
		return matches, nil
	case <-timer.C:
		return nil, ErrPatternTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dedupKey is the identity of a finding for deduplication purposes.
type dedupKey struct {
	Type  string
	Value string
}

// deduplicateFindings collapses findings by (type, value), keeping the
// highest confidence instance (first encountered wins ties), the first-seen
// position and every distinct location in first-seen order.
func deduplicateFindings(findings []types.Finding) []types.Finding {
	deduped := []types.Finding{}
	index := make(map[string]int)

	for _, finding := range findings {
		hash, err := rxhash.HashStruct(dedupKey{Type: finding.Type, Value: finding.Value})
		if err != nil {
			// Hashing a two-string struct cannot fail; fall back to the
			// concatenated key to stay total.
			hash = finding.Type + "\x00" + finding.Value
		}

		at, seen := index[hash]
		if !seen {
			finding.Locations = []string{finding.Location}
			index[hash] = len(deduped)
			deduped = append(deduped, finding)
			continue
		}

		kept := &deduped[at]
		if finding.Confidence > kept.Confidence {
			kept.Confidence = finding.Confidence
		}
		if !slices.Contains(kept.Locations, finding.Location) {
			kept.Locations = append(kept.Locations, finding.Location)
		}
	}

	return deduped
}

// sortFindings orders findings CRITICAL > HIGH > MEDIUM > LOW, preserving
// first-seen order within a tier.
func sortFindings(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() < findings[j].Severity.Rank()
	})
}
