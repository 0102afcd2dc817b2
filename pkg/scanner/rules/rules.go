// Package rules holds the immutable signature catalog of the secret scanner.
// The catalog is built once at startup and never mutated afterwards, so it is
// safe to share across concurrent scans without locking.
package rules

import (
	"fmt"
	"io"
	"regexp"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mobsec-labs/secrethunter/pkg/httpclient"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

// HighEntropyType is the detector type assigned to tokens flagged purely by
// their entropy, with no matching signature.
const HighEntropyType = "High Entropy String"

// HighEntropyRule carries the fixed classification metadata for entropy-only
// findings. It has no regex and is not part of the matching catalog.
var HighEntropyRule = types.Rule{
	Name:           HighEntropyType,
	Severity:       types.SeverityMedium,
	CWE:            "CWE-798",
	Description:    "High entropy string with no known signature, possibly a credential or key",
	Remediation:    "Verify whether the value is a secret and move it out of the application package",
	BaseConfidence: 40,
}

// builtin is the fixed signature catalog of the scanner. Rule names are
// unique; severity, CWE and confidence metadata are fixed per rule.
var builtin = []types.Rule{
	{
		Name:           "Google API Key",
		Regex:          `AIza[0-9A-Za-z\-_]{35}`,
		Severity:       types.SeverityHigh,
		CWE:            "CWE-798",
		Description:    "Google API key embedded in the application",
		Remediation:    "Restrict the key by package name and API, or move it behind a backend service",
		BaseConfidence: 80,
		HighConfidence: true,
	},
	{
		Name:           "AWS Access Key ID",
		Regex:          `AKIA[0-9A-Z]{16}`,
		Severity:       types.SeverityCritical,
		CWE:            "CWE-798",
		Description:    "AWS access key id embedded in the application",
		Remediation:    "Revoke the key and issue credentials via STS or a backend service",
		BaseConfidence: 85,
		HighConfidence: true,
	},
	{
		Name:            "AWS Secret Access Key",
		Regex:           `aws.+[a-z0-9/+]{40}`,
		Severity:        types.SeverityCritical,
		CWE:             "CWE-798",
		Description:     "Possible AWS secret access key near an aws identifier",
		Remediation:     "Revoke the key and issue credentials via STS or a backend service",
		BaseConfidence:  55,
		CaseInsensitive: true,
	},
	{
		Name:            "Generic API Key",
		Regex:           `(api_key|apikey|access_token|auth_token)[\s]*[:=]+[\s]*['"]?[0-9a-zA-Z\-_]{16,64}['"]?`,
		Severity:        types.SeverityMedium,
		CWE:             "CWE-798",
		Description:     "Generic API key or token assignment",
		Remediation:     "Move the credential to a secure backend and fetch it at runtime",
		BaseConfidence:  50,
		CaseInsensitive: true,
	},
	{
		Name:           "Firebase URL",
		Regex:          `[0-9a-zA-Z\-\.]*firebaseio\.com`,
		Severity:       types.SeverityLow,
		CWE:            "CWE-200",
		Description:    "Firebase realtime database URL",
		Remediation:    "Verify the database rules do not allow unauthenticated access",
		BaseConfidence: 40,
	},
	{
		Name:           "Slack Token",
		Regex:          `(xox[pboa]-[0-9]{12}-[0-9]{12}-[0-9]{12}-[a-z0-9]{32})`,
		Severity:       types.SeverityHigh,
		CWE:            "CWE-798",
		Description:    "Slack token embedded in the application",
		Remediation:    "Revoke the token in the Slack admin console",
		BaseConfidence: 85,
		HighConfidence: true,
	},
	{
		Name:           "Facebook Access Token",
		Regex:          `EAACEdEose0cBA[0-9A-Za-z]+`,
		Severity:       types.SeverityHigh,
		CWE:            "CWE-798",
		Description:    "Facebook access token embedded in the application",
		Remediation:    "Revoke the token in the Facebook developer console",
		BaseConfidence: 80,
		HighConfidence: true,
	},
	{
		Name:           "Private Key (RSA/DSA)",
		Regex:          `-----BEGIN (RSA|DSA|EC|PGP) PRIVATE KEY-----`,
		Severity:       types.SeverityCritical,
		CWE:            "CWE-321",
		Description:    "Private key material embedded in the application",
		Remediation:    "Remove the key from the package and rotate it immediately",
		BaseConfidence: 95,
		HighConfidence: true,
	},
	{
		Name:            "Hardcoded Password",
		Regex:           `(password|passwd|pwd)[\s]*[:=]+[\s]*['"]?[a-zA-Z0-9@#$%^&*]{4,32}['"]?`,
		Severity:        types.SeverityMedium,
		CWE:             "CWE-259",
		Description:     "Hardcoded password assignment",
		Remediation:     "Remove the password from the source and rotate the account",
		BaseConfidence:  45,
		CaseInsensitive: true,
	},
	{
		Name:           "Email Address",
		Regex:          `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		Severity:       types.SeverityLow,
		CWE:            "CWE-200",
		Description:    "Email address embedded in the application",
		Remediation:    "Confirm the address is intended to be public",
		BaseConfidence: 30,
	},
}

// Compiled is a catalog rule with its compiled pattern.
type Compiled struct {
	types.Rule
	Pattern *regexp.Regexp
}

// Catalog is an immutable, compiled signature catalog.
type Catalog struct {
	rules  []Compiled
	byName map[string]types.Rule
}

// NewCatalog compiles the builtin signature catalog.
func NewCatalog() (*Catalog, error) {
	return newCatalog(builtin)
}

func newCatalog(ruleSet []types.Rule) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]types.Rule, len(ruleSet)+1)}
	for _, rule := range ruleSet {
		if _, exists := c.byName[rule.Name]; exists {
			return nil, fmt.Errorf("duplicate rule name %q", rule.Name)
		}

		expr := rule.Regex
		if rule.CaseInsensitive {
			expr = "(?i)" + expr
		}
		pattern, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %q: %w", rule.Name, err)
		}

		c.rules = append(c.rules, Compiled{Rule: rule, Pattern: pattern})
		c.byName[rule.Name] = rule
	}

	c.byName[HighEntropyType] = HighEntropyRule
	log.Debug().Int("count", len(c.rules)).Msg("Loaded signature catalog")
	return c, nil
}

// Match evaluates the compiled pattern against text and returns every hit
// tagged with the rule's name, in match order.
func (c Compiled) Match(text string) []types.RawMatch {
	values := c.Pattern.FindAllString(text, -1)
	if len(values) == 0 {
		return nil
	}

	matches := make([]types.RawMatch, 0, len(values))
	for _, value := range values {
		matches = append(matches, types.RawMatch{RuleName: c.Name, Value: value})
	}
	return matches
}

// Rules returns the compiled catalog entries in declaration order.
func (c *Catalog) Rules() []Compiled {
	return c.rules
}

// Lookup returns the catalog rule with the given name.
func (c *Catalog) Lookup(name string) (types.Rule, bool) {
	rule, ok := c.byName[name]
	return rule, ok
}

// SeverityOf maps a detector type to its fixed severity tier. Detector types
// outside the catalog classify as LOW.
func (c *Catalog) SeverityOf(detectorType string) types.Severity {
	if rule, ok := c.byName[detectorType]; ok {
		return rule.Severity
	}
	return types.SeverityLow
}

// remotePatterns mirrors the secrets-patterns-db YAML layout.
type remotePatterns struct {
	Patterns []struct {
		Pattern struct {
			Name       string `yaml:"name"`
			Regex      string `yaml:"regex"`
			Confidence string `yaml:"confidence"`
		} `yaml:"pattern"`
	} `yaml:"patterns"`
}

// NewCatalogWithRemote compiles the builtin catalog extended with patterns
// downloaded from a secrets-patterns-db style YAML file. Remote rules are
// heuristic: MEDIUM severity, no CWE, base confidence derived from the
// pattern's declared confidence level. Remote rules whose name collides with
// a builtin rule are skipped.
func NewCatalogWithRemote(url string) (*Catalog, error) {
	client := httpclient.New()
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("downloading remote rules: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote rules: %w", err)
	}

	var remote remotePatterns
	if err := yaml.Unmarshal(body, &remote); err != nil {
		return nil, fmt.Errorf("unmarshalling remote rules: %w", err)
	}

	seen := make(map[string]bool, len(builtin))
	for _, rule := range builtin {
		seen[rule.Name] = true
	}

	merged := make([]types.Rule, len(builtin), len(builtin)+len(remote.Patterns))
	copy(merged, builtin)
	skipped := 0
	for _, entry := range remote.Patterns {
		if seen[entry.Pattern.Name] {
			skipped++
			continue
		}
		if _, err := regexp.Compile(entry.Pattern.Regex); err != nil {
			log.Trace().Err(err).Str("name", entry.Pattern.Name).Msg("Skipping remote rule with invalid regex")
			skipped++
			continue
		}
		seen[entry.Pattern.Name] = true

		base := 35
		switch entry.Pattern.Confidence {
		case "high":
			base = 65
		case "medium":
			base = 50
		}

		merged = append(merged, types.Rule{
			Name:           entry.Pattern.Name,
			Regex:          entry.Pattern.Regex,
			Severity:       types.SeverityMedium,
			Description:    "Remote catalog pattern",
			Remediation:    "Verify the match and remove the credential from the package",
			BaseConfidence: base,
		})
	}

	log.Debug().Int("remote", len(remote.Patterns)).Int("skipped", skipped).Msg("Merged remote rules")
	return newCatalog(merged)
}
