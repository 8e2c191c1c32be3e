package i18nmig

import "fmt"

// ParseError indicates a source file could not be parsed. The file is
// excluded from the current pass; the batch continues.
type ParseError struct {
	Path     string
	Message  string
	Language string // The processor language that failed, e.g. "jsx"
	Line     int    // 1-based line of the first syntax error, 0 if unknown
	Cause    error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("parse error (%s): %s: %s: %v", e.Language, loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error (%s): %s: %s", e.Language, loc, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// MissingArtifactError indicates a pass was invoked without the upstream
// artifact it consumes. It is fatal for the invocation.
type MissingArtifactError struct {
	Artifact string // Artifact name, e.g. "translation map"
	Path     string
	Hint     string // Command that produces the artifact
	Cause    error
}

func (e *MissingArtifactError) Error() string {
	msg := fmt.Sprintf("missing %s at %s", e.Artifact, e.Path)
	if e.Hint != "" {
		msg += fmt.Sprintf(" (run %q first)", e.Hint)
	}
	return msg
}

func (e *MissingArtifactError) Unwrap() error {
	return e.Cause
}

// KeyExhaustedError indicates no free numeric suffix was found for a slug.
type KeyExhaustedError struct {
	Text  string
	Base  string
	Tried int
}

func (e *KeyExhaustedError) Error() string {
	return fmt.Sprintf("key space exhausted for %q (base %q, %d suffixes tried)", e.Text, e.Base, e.Tried)
}

// WriteError indicates a rewritten file could not be safely written. The
// original file is left untouched.
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("write error: %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("write error: %s: %s", e.Path, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a suggestion provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a suggestion cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the provider returned a different number of
// suggestions than texts requested.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("suggestion count mismatch: expected %d, got %d", e.Expected, e.Got)
}
