// Package format provides string sanitization and size parsing helpers.
package format

import (
	"strings"

	"github.com/acarl005/stripansi"
	gounits "github.com/docker/go-units"
)

// MaxStoredValueLength caps how much of a matched secret value is kept on a
// finding. Values beyond this are truncated for storage.
const MaxStoredValueLength = 1024

// SanitizeCandidate normalizes a raw extracted string for matching and
// reporting: newlines become spaces and ANSI escape sequences are stripped.
func SanitizeCandidate(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return stripansi.Strip(text)
}

// TruncateValue shortens a matched value to MaxStoredValueLength.
func TruncateValue(value string) string {
	if len(value) > MaxStoredValueLength {
		return value[:MaxStoredValueLength]
	}
	return value
}

// ParseHumanSize parses a human-readable size string (e.g. "100MB") into bytes.
func ParseHumanSize(size string) (int64, error) {
	return gounits.FromHumanSize(size)
}
