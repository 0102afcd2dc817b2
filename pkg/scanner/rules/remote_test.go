package rules

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

const remoteFixture = `patterns:
  - pattern:
      name: Heroku API Key
      regex: heroku[a-z0-9]{32}
      confidence: high
  - pattern:
      name: Broken Rule
      regex: "("
      confidence: low
  - pattern:
      name: AWS Access Key ID
      regex: should-be-skipped
      confidence: high
`

func TestNewCatalogWithRemote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(remoteFixture))
	}))
	defer ts.Close()

	catalog, err := NewCatalogWithRemote(ts.URL)
	if err != nil {
		t.Fatalf("NewCatalogWithRemote() error = %v", err)
	}

	// Builtin rules plus the one valid, non-colliding remote rule.
	if got, want := len(catalog.Rules()), len(builtin)+1; got != want {
		t.Errorf("catalog has %d rules, want %d", got, want)
	}

	rule, ok := catalog.Lookup("Heroku API Key")
	if !ok {
		t.Fatal("remote rule missing from catalog")
	}
	if rule.Severity != types.SeverityMedium {
		t.Errorf("remote rule severity = %s, want MEDIUM", rule.Severity)
	}
	if rule.BaseConfidence != 65 {
		t.Errorf("remote rule base confidence = %d, want 65", rule.BaseConfidence)
	}

	// The builtin AWS rule is untouched by the colliding remote entry.
	aws, ok := catalog.Lookup("AWS Access Key ID")
	if !ok {
		t.Fatal("builtin AWS rule missing")
	}
	if aws.Regex != `AKIA[0-9A-Z]{16}` {
		t.Errorf("builtin AWS rule regex = %q", aws.Regex)
	}
}

func TestNewCatalogWithRemoteUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	// A 404 is not retried and yields a YAML parse of an empty-ish body; the
	// catalog falls back to builtin rules only.
	catalog, err := NewCatalogWithRemote(ts.URL)
	if err != nil {
		t.Fatalf("NewCatalogWithRemote() error = %v", err)
	}
	if got := len(catalog.Rules()); got != len(builtin) {
		t.Errorf("catalog has %d rules, want builtin only (%d)", got, len(builtin))
	}
}
