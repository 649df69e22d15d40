// Package rpn handles RPN source text: the parenthesised prefix sugar,
// validation against the word list and tokenisation.
package rpn

import (
	"regexp"
	"strconv"
	"strings"

	"bytebeat/pkg/diag"
	"bytebeat/pkg/opcode"
)

// ErrUnbalanced is returned when parentheses remain that no rewrite can remove.
var ErrUnbalanced = &diag.Error{Kind: diag.Syntax, Pos: -1, Msg: "unbalanced parentheses"}

var (
	hasGroup   = regexp.MustCompile(`\(.*\)`)
	innerGroup = regexp.MustCompile(`\(([^(]+?) ([^()]+)\)`)
	glued      = regexp.MustCompile(`\)[^\s)]`)
	literal    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// Desugar rewrites every "(OP A B...)" group into "A B... OP", innermost
// groups first, until none remain.
//
//	Desugar("(* (+ 2 3) (- 5 1))") // "2 3 + 5 1 - *"
func Desugar(code string) (string, error) {
	for hasGroup.MatchString(code) {
		next := innerGroup.ReplaceAllString(code, "${2} ${1}")
		if next == code {
			return "", ErrUnbalanced
		}
		code = next
	}
	return code, nil
}

// Fields splits desugared code into words. Line breaks are kept as "\n"
// tokens, other whitespace separates.
func Fields(code string) []string {
	var out []string
	for i, line := range strings.Split(code, "\n") {
		if i > 0 {
			out = append(out, "\n")
		}
		out = append(out, strings.Fields(line)...)
	}
	return out
}

// Validate reports whether code desugars and consists only of known words
// and numeric literals.
func Validate(code string) bool {
	_, err := Tokens(code)
	return err == nil
}

// Tokens desugars code and returns its words without line breaks. The first
// word that is neither a literal nor a known word is reported as a syntax error.
func Tokens(code string) ([]string, error) {
	if loc := glued.FindStringIndex(code); loc != nil {
		return nil, &diag.Error{Kind: diag.Syntax, Token: code[loc[0]:loc[1]], Pos: loc[0],
			Msg: "closing parenthesis must be followed by a space"}
	}
	code, err := Desugar(code)
	if err != nil {
		return nil, err
	}
	toks := strings.Fields(code)
	if len(toks) == 0 {
		return nil, diag.Errorf(diag.Syntax, "empty program")
	}
	for _, tok := range toks {
		if IsLiteral(tok) {
			continue
		}
		if _, ok := opcode.FromToken(tok); !ok {
			return nil, diag.BadToken(diag.Syntax, tok)
		}
	}
	return toks, nil
}

// IsLiteral reports whether tok is a decimal number literal.
func IsLiteral(tok string) bool {
	return literal.MatchString(tok)
}

// ParseLiteral converts a literal token to its value.
func ParseLiteral(tok string) (float64, bool) {
	if !IsLiteral(tok) {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	return v, err == nil
}
