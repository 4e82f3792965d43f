// Package errs defines the error kinds shared by the pattern compiler and
// the expression resolver.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	Internal       Kind = iota // a syntax failed in an unexpected way
	MalformedInput             // structurally broken pattern or text
	NoMatch                    // nothing matched the text
	SemanticError              // matched structurally but violates a typing rule
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed input"
	case NoMatch:
		return "no match"
	case SemanticError:
		return "semantic error"
	case Internal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is. Only the kind is compared.
var (
	ErrInternal       = &Error{Kind: Internal}
	ErrMalformedInput = &Error{Kind: MalformedInput}
	ErrNoMatch        = &Error{Kind: NoMatch}
	ErrSemantic       = &Error{Kind: SemanticError}
)

// Error is a located error. Text is the offending substring and Pos its
// byte offset in the pattern or line being processed.
type Error struct {
	Kind    Kind
	Message string
	Text    string
	Pos     int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Text != "" {
		msg = fmt.Sprintf("%s (index %d): '%s'", msg, e.Pos, e.Text)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// At returns a copy of e located at text/pos. Existing locations are kept.
func (e *Error) At(text string, pos int) *Error {
	c := *e
	if c.Text == "" {
		c.Text = text
		c.Pos = pos
	}
	return &c
}

func newf(kind Kind, text string, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Text: text, Pos: pos}
}

// Malformed returns a MalformedInput error.
func Malformed(text string, pos int, format string, args ...any) *Error {
	return newf(MalformedInput, text, pos, format, args...)
}

// NoMatchf returns a NoMatch error.
func NoMatchf(text string, pos int, format string, args ...any) *Error {
	return newf(NoMatch, text, pos, format, args...)
}

// Semantic returns a SemanticError.
func Semantic(text string, pos int, format string, args ...any) *Error {
	return newf(SemanticError, text, pos, format, args...)
}

// Internalf returns an Internal error wrapping cause.
func Internalf(cause error, text string, pos int, format string, args ...any) *Error {
	e := newf(Internal, text, pos, format, args...)
	e.Err = cause
	return e
}

// KindOf returns the kind of err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
