package kvconf

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrEmptySource is wrapped by a SourceError when the source has no bytes.
	ErrEmptySource = errors.New("empty source")

	// ErrSyntax is matched by every *LexError.
	ErrSyntax = errors.New("syntax error")

	// ErrAllocation is returned when an allocation would exceed Options.MemoryLimit.
	ErrAllocation = errors.New("memory limit exceeded")

	// ErrCapacityOverflow is returned by fixed-slab stores when a line or the
	// line count does not fit.
	ErrCapacityOverflow = errors.New("capacity overflow")

	// ErrStaleView is the panic value of reading a View after its record was
	// written or its store was closed.
	ErrStaleView = errors.New("stale value view")

	// ErrInvalidKey is returned by Set for keys the lexer would never produce.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidValue is returned by Set for values that cannot be written
	// back: ones that need quoting but contain a '"'.
	ErrInvalidValue = errors.New("invalid value")

	// ErrCorruptSnapshot is returned by UnmarshalSnapshot.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("kvconf: source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// LexError describes an invalid key or value. Line and Col are 1-based, Off
// is the byte offset into the source.
type LexError struct {
	Line int
	Col  int
	Off  int
	Msg  string
	Text []byte // the offending source line, without the newline
}

// position returns the 1-based line and column of off, and the offset the
// line starts at.
func position(data []byte, off int) (line, col, lineStart int) {
	line = 1
	for i := 0; i < off && i < len(data); i++ {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, off - lineStart + 1, lineStart
}

func lexErrf(data []byte, off int, format string, args ...any) *LexError {
	line, col, lineStart := position(data, off)
	lineEnd := lineStart
	for lineEnd < len(data) && data[lineEnd] != '\n' {
		lineEnd++
	}
	return &LexError{
		Line: line,
		Col:  col,
		Off:  off,
		Msg:  fmt.Sprintf(format, args...),
		Text: slices.Clone(data[lineStart:lineEnd]),
	}
}

func (e *LexError) Error() string {
	const maxText = 64
	text := e.Text
	if len(text) > maxText {
		return fmt.Sprintf("line %d, col %d: %s: %q...", e.Line, e.Col, e.Msg, text[:maxText])
	}
	return fmt.Sprintf("line %d, col %d: %s: %q", e.Line, e.Col, e.Msg, text)
}

func (e *LexError) Unwrap() error {
	return ErrSyntax
}
