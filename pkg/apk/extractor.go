// Package apk extracts candidate strings from Android application packages.
// An APK is a zip container; printable string runs are pulled from the dex
// bytecode and text resources, the same corpus a decompiler would surface.
package apk

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

// ExtractionError indicates the container itself could not be parsed. It is
// the only extractor failure that fails a scan job.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting APK: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor pulls printable string runs out of an APK.
type Extractor struct {
	// MinLength is the shortest string run that is emitted as a candidate.
	MinLength int
}

// NewExtractor returns an extractor with the default minimum run length.
func NewExtractor() *Extractor {
	return &Extractor{MinLength: 5}
}

// ExtractStrings reads the APK from r and returns all candidate strings from
// dex entries (location "string_constant") and text resources (location
// "resource"). A corrupt container yields an ExtractionError; unreadable
// individual entries are logged and skipped.
func (e *Extractor) ExtractStrings(r io.ReaderAt, size int64) ([]types.CandidateString, error) {
	reader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	var candidates []types.CandidateString
	for _, entry := range reader.File {
		kind, ok := classifyEntry(entry.Name)
		if !ok {
			continue
		}

		log.Trace().Str("entry", entry.Name).Str("kind", kind).Msg("Extracting strings from entry")
		data, err := readZipFile(entry)
		if err != nil {
			log.Warn().Err(err).Str("entry", entry.Name).Msg("Failed reading APK entry, skipping")
			continue
		}

		location := kind + ":" + entry.Name
		for _, text := range printableRuns(data, e.MinLength) {
			candidates = append(candidates, types.CandidateString{Text: text, Location: location})
		}
	}

	return candidates, nil
}

// classifyEntry maps an archive entry name to a candidate location kind.
// Binary media entries are skipped entirely.
func classifyEntry(name string) (string, bool) {
	if strings.HasSuffix(name, ".dex") {
		return "string_constant", true
	}
	if name == "AndroidManifest.xml" || strings.HasPrefix(name, "res/") || strings.HasPrefix(name, "assets/") {
		switch {
		case strings.HasSuffix(name, ".png"),
			strings.HasSuffix(name, ".jpg"),
			strings.HasSuffix(name, ".webp"),
			strings.HasSuffix(name, ".ttf"),
			strings.HasSuffix(name, ".so"):
			return "", false
		}
		return "resource", true
	}
	return "", false
}

func readZipFile(zf *zip.File) ([]byte, error) {
	f, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// printableRuns returns every run of printable ASCII characters in data that
// reaches minLength, in the order they appear.
func printableRuns(data []byte, minLength int) []string {
	var runs []string
	start := -1
	for i, b := range data {
		if b >= 0x20 && b <= 0x7e {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minLength {
			runs = append(runs, string(data[start:i]))
		}
		start = -1
	}
	if start >= 0 && len(data)-start >= minLength {
		runs = append(runs, string(data[start:]))
	}
	return runs
}

// UncompressedSize returns the aggregated uncompressed size of the archive's
// entries, or zero when the container cannot be read.
func UncompressedSize(r io.ReaderAt, size int64) uint64 {
	reader, err := zip.NewReader(r, size)
	if err != nil {
		return 0
	}

	var total uint64
	for _, file := range reader.File {
		total += file.UncompressedSize64
	}
	return total
}
