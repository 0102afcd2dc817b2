package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRulesCmd builds the catalog listing command.
func NewRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List the signature catalog",
		Run:   Rules,
	}
	rulesCmd.Flags().StringVar(&scanOpts.RemoteRulesURL, "remote-rules", "", "URL of a secrets-patterns-db style YAML file to augment the builtin catalog")
	return rulesCmd
}

// Rules logs every rule of the catalog with its classification metadata.
func Rules(cmd *cobra.Command, args []string) {
	catalog := buildCatalog(scanOpts)
	for _, rule := range catalog.Rules() {
		log.Info().
			Str("name", rule.Name).
			Str("severity", string(rule.Severity)).
			Str("cwe", rule.CWE).
			Int("baseConfidence", rule.BaseConfidence).
			Bool("highConfidence", rule.HighConfidence).
			Msg(rule.Description)
	}
}
