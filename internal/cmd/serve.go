package cmd

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mobsec-labs/secrethunter/internal/cmd/common"
	"github.com/mobsec-labs/secrethunter/internal/server"
	"github.com/mobsec-labs/secrethunter/pkg/apk"
	"github.com/mobsec-labs/secrethunter/pkg/config"
	"github.com/mobsec-labs/secrethunter/pkg/format"
	"github.com/mobsec-labs/secrethunter/pkg/jobs"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/engine"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/rules"
)

type serveOptions struct {
	config.ScanOptions
	Host string
	Port int
}

var serveOpts = serveOptions{ScanOptions: config.DefaultScanOptions()}
var serveMaxUploadSize string

// NewServeCmd builds the HTTP service command.
func NewServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SecretHunter HTTP service",
		Long:  "Serves POST /scan, GET /scan/{id}, GET /scans and GET /health. Uploaded APKs are scanned synchronously and results are kept in an in-memory job store.",
		Example: `
# Serve on the default port (8002, or the PORT environment variable)
secrethunter serve

# Enable the TruffleHog detector pass with live credential verification
secrethunter serve --trufflehog --trufflehog-verification
		`,
		Run: Serve,
	}

	serveCmd.Flags().StringVarP(&serveOpts.Host, "host", "", "0.0.0.0", "Listen address")
	serveCmd.Flags().IntVarP(&serveOpts.Port, "port", "p", defaultPort(), "Listen port (defaults to the PORT environment variable when set)")
	serveCmd.Flags().StringVarP(&serveMaxUploadSize, "max-upload-size", "", "100MB", "Maximum accepted APK upload size, human readable, e.g. 100MB or 1GB")
	addScanOptionFlags(serveCmd, &serveOpts.ScanOptions)

	return serveCmd
}

// Serve runs the HTTP service until terminated.
func Serve(cmd *cobra.Command, args []string) {
	maxUpload, err := format.ParseHumanSize(serveMaxUploadSize)
	if err != nil {
		log.Fatal().Err(err).Str("size", serveMaxUploadSize).Msg("Invalid max upload size")
	}
	serveOpts.MaxUploadSize = maxUpload

	if err := serveOpts.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid scan options")
	}

	catalog := buildCatalog(serveOpts.ScanOptions)
	store := jobs.NewMemoryStore()
	pipeline := engine.New(catalog, apk.NewExtractor(), store, serveOpts.ScanOptions)

	serverConfig := server.DefaultConfig()
	serverConfig.Host = serveOpts.Host
	serverConfig.Port = serveOpts.Port
	serverConfig.MaxUploadBytes = serveOpts.MaxUploadSize

	srv := server.New(serverConfig, pipeline, store)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed starting server")
	}

	done := make(chan struct{})
	common.RegisterGracefulShutdownHandler(func() {
		if err := srv.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed stopping server")
		}
		close(done)
	})
	<-done
}

// buildCatalog loads the signature catalog, optionally augmented with a
// remote patterns file.
func buildCatalog(opts config.ScanOptions) *rules.Catalog {
	if opts.RemoteRulesURL != "" {
		catalog, err := rules.NewCatalogWithRemote(opts.RemoteRulesURL)
		if err != nil {
			log.Fatal().Err(err).Str("url", opts.RemoteRulesURL).Msg("Failed loading remote rules")
		}
		return catalog
	}

	catalog, err := rules.NewCatalog()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed loading signature catalog")
	}
	return catalog
}

// addScanOptionFlags registers the pipeline tunables shared by serve and scan.
func addScanOptionFlags(cmd *cobra.Command, opts *config.ScanOptions) {
	cmd.Flags().IntVarP(&opts.MaxScanGoRoutines, "threads", "t", opts.MaxScanGoRoutines, "Number of concurrent scanning threads")
	cmd.Flags().DurationVar(&opts.RuleTimeout, "rule-timeout", opts.RuleTimeout, "Time budget for one rule evaluated against one candidate string")
	cmd.Flags().Float64Var(&opts.EntropyThreshold, "entropy-threshold", opts.EntropyThreshold, "Entropy (bits/char) above which a token counts as high entropy")
	cmd.Flags().IntVar(&opts.MinTokenLength, "min-token-length", opts.MinTokenLength, "Minimum token length for entropy flagging")
	cmd.Flags().BoolVar(&opts.TruffleHog, "trufflehog", opts.TruffleHog, "Enable the TruffleHog detector pass")
	cmd.Flags().BoolVar(&opts.TruffleHogVerification, "trufflehog-verification", opts.TruffleHogVerification, "Enable TruffleHog live credential verification")
	cmd.Flags().StringVar(&opts.RemoteRulesURL, "remote-rules", opts.RemoteRulesURL, "URL of a secrets-patterns-db style YAML file to augment the builtin catalog")
}

func defaultPort() int {
	if raw, ok := os.LookupEnv("PORT"); ok {
		if port, err := strconv.Atoi(raw); err == nil {
			return port
		}
		log.Warn().Str("PORT", raw).Msg("Ignoring invalid PORT environment variable")
	}
	return 8002
}
