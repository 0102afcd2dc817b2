// Package types defines the shared data model of the secret scanning pipeline.
package types

// Severity is the fixed risk tier assigned to a detector rule.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// severityRank orders severities for result sorting, most severe first.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Rank returns the sort rank of the severity. Unknown severities sort last.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Rule is one immutable entry of the signature catalog.
type Rule struct {
	Name           string
	Regex          string
	Severity       Severity
	CWE            string
	Description    string
	Remediation    string
	BaseConfidence int
	// HighConfidence marks rules whose matches never score below the
	// high-confidence floor, e.g. a PEM private key header.
	HighConfidence bool
	// CaseInsensitive rules are compiled with the (?i) flag so code-style
	// variants like "API_KEY" and "ApiKey" both hit.
	CaseInsensitive bool
}

// CandidateString is one raw token pulled out of the application package
// before any detection logic runs.
type CandidateString struct {
	Text     string
	Location string
}

// RawMatch is a single signature hit inside one candidate string.
type RawMatch struct {
	RuleName string
	Value    string
}

// Finding is one reported, scored and classified detection.
type Finding struct {
	Type       string   `json:"type"`
	Value      string   `json:"value"`
	Confidence int      `json:"confidence"`
	Severity   Severity `json:"severity"`
	Location   string   `json:"location"`
	// Locations holds every distinct location the same (type, value) pair
	// was seen at. Location always equals Locations[0].
	Locations []string `json:"locations,omitempty"`
	CWE       string   `json:"cwe,omitempty"`
}
