package engine

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trufflesecurity/trufflehog/v3/pkg/engine/defaults"
	"github.com/wandb/parallel"

	"github.com/mobsec-labs/secrethunter/pkg/format"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

// truffleHogLocation tags findings produced by the TruffleHog pass, which
// runs over the whole extracted corpus rather than single candidates.
const truffleHogLocation = "trufflehog"

// truffleHogPass runs the TruffleHog default detectors over the extracted
// corpus. Verified credentials classify as CRITICAL; unverified hits are
// reported as HIGH only when live verification is disabled.
func (p *Pipeline) truffleHogPass(ctx context.Context, candidates []types.CandidateString) []types.Finding {
	var corpus strings.Builder
	for _, candidate := range candidates {
		corpus.WriteString(candidate.Text)
		corpus.WriteByte('\n')
	}
	data := []byte(corpus.String())

	group := parallel.Limited(ctx, p.opts.MaxScanGoRoutines)
	detectors := defaults.DefaultDetectors()

	// Indexed writes keep the output in detector declaration order, so the
	// pass stays deterministic for identical input.
	perDetector := make([][]types.Finding, len(detectors))
	for i, detector := range detectors {
		group.Go(func(ctx context.Context) {
			results, err := detector.FromData(ctx, p.opts.TruffleHogVerification, data)
			if err != nil {
				log.Warn().Err(err).Msg("TruffleHog detector failed, skipping")
				return
			}

			var findings []types.Finding
			for _, result := range results {
				secret := result.Raw
				if len(result.RawV2) > 0 {
					secret = result.RawV2
				}

				finding := types.Finding{
					Type:     "TruffleHog: " + result.DetectorType.String(),
					Value:    format.TruncateValue(string(secret)),
					Location: truffleHogLocation,
				}

				if result.Verified {
					finding.Severity = types.SeverityCritical
					finding.Confidence = 95
					findings = append(findings, finding)
					continue
				}

				if !p.opts.TruffleHogVerification {
					finding.Severity = types.SeverityHigh
					finding.Confidence = 60
					findings = append(findings, finding)
				}
			}
			perDetector[i] = findings
		})
	}
	group.Wait()

	return slices.Concat(perDetector...)
}
