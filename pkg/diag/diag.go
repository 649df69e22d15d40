// Package diag holds the error taxonomy shared by the compilers.
package diag

import (
	"errors"
	"fmt"
)

// Kind classifies a compile-time failure.
type Kind uint8

const (
	// Syntax: the source does not parse, or uses a word outside the vocabulary.
	Syntax Kind = iota + 1
	// Type: the source parses but does not produce a number.
	Type
	// Encoding: the word is understood but has no bytecode encoding.
	Encoding
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "SyntaxError"
	case Type:
		return "TypeError"
	case Encoding:
		return "EncodingError"
	default:
		return "Error"
	}
}

// Error is returned by every compiler in this module.
type Error struct {
	Kind  Kind
	Token string // offending token, if any
	Pos   int    // byte offset in the source, -1 when unknown
	Msg   string
}

func (e *Error) Error() string {
	if e.Token != "" && e.Pos >= 0 {
		return fmt.Sprintf("%s: %s %q (at %d)", e.Kind, e.Msg, e.Token, e.Pos)
	}
	if e.Token != "" {
		return fmt.Sprintf("%s: %s %q", e.Kind, e.Msg, e.Token)
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("%s: %s (at %d)", e.Kind, e.Msg, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Errorf builds an Error without token or position.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: -1, Msg: fmt.Sprintf(format, args...)}
}

// BadToken reports a token the compiler could not understand.
func BadToken(kind Kind, tok string) *Error {
	return &Error{Kind: kind, Token: tok, Pos: -1, Msg: "could not understand token"}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// Is reports whether err carries a diag.Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
