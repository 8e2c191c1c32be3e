// Package store reads and writes the pipeline's on-disk artifacts: the
// extraction report, the translation map, the per-locale resource bundles
// and the review file.
//
// Read functions return an error satisfying errors.Is(err, fs.ErrNotExist)
// when the artifact has never been produced.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LiteralRecord is one extracted literal as persisted in the report.
type LiteralRecord struct {
	Text  string   `json:"text"`
	Attr  *string  `json:"attr"`
	Attrs []string `json:"attrs,omitempty"` // Further attributes carrying the same text
}

// Report maps a file path to its literals in source order.
type Report map[string][]LiteralRecord

// ReadReport loads the extraction report.
func ReadReport(path string) (Report, error) {
	var r Report
	if err := readJSON(path, &r); err != nil {
		return nil, err
	}
	if r == nil {
		r = Report{}
	}
	return r, nil
}

// WriteReport persists the extraction report.
func WriteReport(path string, r Report) error {
	if r == nil {
		r = Report{}
	}
	return writeJSON(path, r)
}

// ReadMap loads the text → key translation map.
func ReadMap(path string) (map[string]string, error) {
	return readStringMap(path)
}

// WriteMap persists the text → key translation map.
func WriteMap(path string, m map[string]string) error {
	return writeStringMap(path, m)
}

// BundlePath returns the bundle file for a locale inside dir.
func BundlePath(dir, locale string) string {
	return filepath.Join(dir, locale+".json")
}

// ReadBundle loads a key → text resource bundle.
func ReadBundle(path string) (map[string]string, error) {
	return readStringMap(path)
}

// WriteBundle persists a key → text resource bundle.
func WriteBundle(path string, b map[string]string) error {
	return writeStringMap(path, b)
}

// ReadSuggestions loads a key → suggested translation file.
func ReadSuggestions(path string) (map[string]string, error) {
	return readStringMap(path)
}

// WriteSuggestions persists a key → suggested translation file.
func WriteSuggestions(path string, s map[string]string) error {
	return writeStringMap(path, s)
}

func readStringMap(path string) (map[string]string, error) {
	m := make(map[string]string)
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = make(map[string]string)
	}
	return m, nil
}

func writeStringMap(path string, m map[string]string) error {
	if m == nil {
		m = map[string]string{}
	}
	return writeJSON(path, m)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) // #nosec G304 - artifact paths come from configuration
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// encodeJSON renders v with sorted keys, 2-space indent and a trailing
// newline. HTML characters are kept literal.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(path string, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return WriteFileAtomic(path, data, 0o644)
}
