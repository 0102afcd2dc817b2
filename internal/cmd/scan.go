package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mobsec-labs/secrethunter/pkg/apk"
	"github.com/mobsec-labs/secrethunter/pkg/config"
	"github.com/mobsec-labs/secrethunter/pkg/jobs"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/engine"
)

var scanOpts = config.DefaultScanOptions()

// NewScanCmd builds the one-shot CLI scan command.
func NewScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan <apk-file>",
		Short: "Scan a local APK file and report findings",
		Args:  cobra.ExactArgs(1),
		Example: `
# Scan an APK and log every finding
secrethunter scan ./app-release.apk

# Raise the entropy bar and use more workers
secrethunter scan ./app-release.apk --threads 8 --entropy-threshold 5.0
		`,
		Run: Scan,
	}
	addScanOptionFlags(scanCmd, &scanOpts)
	return scanCmd
}

// Scan runs the pipeline against a local file and logs the findings.
func Scan(cmd *cobra.Command, args []string) {
	if err := scanOpts.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid scan options")
	}

	path := args[0]
	// #nosec G304 - user-provided path to the APK under analysis
	file, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed opening APK")
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed reading APK size")
	}

	catalog := buildCatalog(scanOpts)
	store := jobs.NewMemoryStore()
	pipeline := engine.New(catalog, apk.NewExtractor(), store, scanOpts)

	jobID := "secret-cli"
	if err := store.Create(jobID, info.Name()); err != nil {
		log.Fatal().Err(err).Msg("Failed creating scan job")
	}

	record, err := pipeline.Run(cmd.Context(), jobID, file, info.Size())
	if err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}

	if record.Status == jobs.StatusFailed {
		log.Fatal().Str("error", record.Error).Msg("Scan failed")
	}

	for _, finding := range record.Findings {
		log.Info().
			Str("type", finding.Type).
			Str("severity", string(finding.Severity)).
			Int("confidence", finding.Confidence).
			Str("location", finding.Location).
			Str("cwe", finding.CWE).
			Str("value", finding.Value).
			Msg("SECRET")
	}

	log.Info().Int("findings", len(record.Findings)).Str("file", info.Name()).Msg("Scan done")
}
