package scanner

import (
	"github.com/mobsec-labs/secrethunter/pkg/scanner/engine"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/rules"
	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

type Finding = types.Finding
type CandidateString = types.CandidateString
type Rule = types.Rule
type Severity = types.Severity
type Pipeline = engine.Pipeline
type Catalog = rules.Catalog

var NewCatalog = rules.NewCatalog
var NewCatalogWithRemote = rules.NewCatalogWithRemote
var NewPipeline = engine.New
