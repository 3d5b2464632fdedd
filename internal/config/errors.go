package config

import "fmt"

// ParseError reports a malformed configuration or defaults document. The
// caller surfaces it and aborts resolution for the affected key only.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
