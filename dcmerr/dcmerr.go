// Package dcmerr implements the structured error carrier threaded through
// the rest of godicom. Every fallible operation in the library returns a
// *dcmerr.Error (or nil) instead of a global/out-parameter error slot, per
// the "idiomatic fallible-return" re-architecture called for by the error
// handling design this package generalizes from the teacher's
// reader.go ParseError.
package dcmerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/jcupitt/godicom/dicomlog"
)

// Code classifies an Error the way callers are expected to switch on.
type Code int

const (
	// NOMEM marks an allocation failure. Go's allocator panics instead of
	// failing, so this code exists for API parity with the spec's error
	// table; library code never constructs it.
	NOMEM Code = iota + 1
	// INVALID marks bad arguments, a VR mismatch, an out-of-range index,
	// or mutation of a locked container.
	INVALID
	// PARSE marks a malformed DICOM stream.
	PARSE
	// IO marks a failure from the underlying read/seek source.
	IO
)

func (c Code) String() string {
	switch c {
	case NOMEM:
		return "NOMEM"
	case INVALID:
		return "INVALID"
	case PARSE:
		return "PARSE"
	case IO:
		return "IO"
	default:
		return "UNKNOWN"
	}
}

// Error is the structured error value returned by fallible godicom calls.
// Offset and TagPath are populated by the stream parser; other callers
// leave Offset at -1 and TagPath empty.
type Error struct {
	Code    Code
	Summary string
	Message string
	// Offset is the byte offset at which the error was detected, counted
	// by the decoder that detected it (for the main file decoder, from the
	// end of the preamble and DICM magic), or -1 if not applicable.
	Offset int64
	// TagPath is the stack of containing tags, outermost first, rendered
	// e.g. "(5200,9229)/(0028,9110)".
	TagPath string

	cause error
}

// New creates an Error with no underlying cause.
func New(code Code, summary, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Summary: summary,
		Message: fmt.Sprintf(format, args...),
		Offset:  -1,
	}
}

// Wrap creates an Error that carries cause as its underlying stack-bearing
// cause, via github.com/pkg/errors so programmatic callers can still
// errors.Cause() through to the original failure.
func Wrap(cause error, code Code, summary, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Summary: summary,
		Message: fmt.Sprintf(format, args...),
		Offset:  -1,
		cause:   errors.WithStack(cause),
	}
}

// AtOffset returns a copy of e with Offset set.
func (e *Error) AtOffset(offset int64) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Offset = offset
	return &cp
}

// WithTag prepends tag to the front of the containing-tag path.
func (e *Error) WithTag(tag fmt.Stringer) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	if cp.TagPath == "" {
		cp.TagPath = tag.String()
	} else {
		cp.TagPath = tag.String() + "/" + cp.TagPath
	}
	return &cp
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Summary)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.TagPath != "" {
		fmt.Fprintf(&b, " [at %s]", e.TagPath)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	return b.String()
}

// Log routes e to the logging collaborator at ERROR level and returns e
// unchanged, so call sites can write "return err.Log()" at the point an
// error is about to surface to a caller that won't otherwise log it.
func (e *Error) Log() *Error {
	if e == nil {
		return nil
	}
	dicomlog.Errorf("%s", e.Error())
	return e
}

// Cause returns the underlying error passed to Wrap, or nil.
func (e *Error) Cause() error {
	if e == nil || e.cause == nil {
		return nil
	}
	return errors.Cause(e.cause)
}

// First implements the "first error wins" composition rule from the error
// handling design: if existing is already non-nil it is returned unchanged,
// otherwise candidate is returned. Callers that thread a single error slot
// through a sequence of fallible steps call First(slot, step()) and assign
// the result back to slot.
func First(existing, candidate *Error) *Error {
	if existing != nil {
		return existing
	}
	return candidate
}
