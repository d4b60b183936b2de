package raml

import (
	"fmt"
	"strings"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError   ErrorCode = "InputError"
	NetworkError ErrorCode = "NetworkError"
	IncludeError ErrorCode = "IncludeError"
	SyntaxError  ErrorCode = "SyntaxError"
)

// SpecError is a structured error for failures that happen before the
// document can be decoded (unreadable input, blocked URLs, broken includes).
type SpecError struct {
	Code     ErrorCode
	Message  string
	Location string // file path or URL
	Cause    error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Diagnostic is one problem found while decoding a document.
type Diagnostic struct {
	// Path is a slash separated path to the offending node, e.g. "types/Person/properties/age".
	Path    string
	Message string
	Line    int
	Column  int
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Path != "" {
		b.WriteString(d.Path)
	} else {
		b.WriteString("/")
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, " (line %d, column %d)", d.Line, d.Column)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// ParseError aggregates all diagnostics of a document. A document with any
// diagnostic is rejected as a whole.
type ParseError struct {
	Location    string
	Diagnostics []Diagnostic
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("RAML syntax errors:")
	for _, d := range e.Diagnostics {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}
