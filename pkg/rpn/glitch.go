package rpn

import (
	"regexp"
	"strconv"
	"strings"

	"bytebeat/pkg/diag"
	"bytebeat/pkg/opcode"
)

// Glitch URLs encode a program as "glitch://name!" followed by one letter per
// word and uppercase hex literals, '.' separating adjacent literals and '!'
// standing for a line break.

var (
	glitchURL    = regexp.MustCompile(`^(?:glitch://)?([^!]*)!(.*)$`)
	glitchToken  = regexp.MustCompile(`[\dA-F]+|[a-hj-u!]`)
	validURL     = regexp.MustCompile(`^(glitch://)?[^!]*![a-hj-u!A-F\d.]+$`)
	glitchNumber = regexp.MustCompile(`^\d+$`)
)

// IsValidGlitchCode reports whether code uses only words that have a Glitch
// letter and non-negative integer literals.
func IsValidGlitchCode(code string) bool {
	code, err := Desugar(code)
	if err != nil {
		return false
	}
	toks := Fields(code)
	words := 0
	for _, tok := range toks {
		if tok == "\n" {
			continue
		}
		words++
		if glitchNumber.MatchString(tok) {
			if _, err := strconv.ParseUint(tok, 10, 32); err != nil {
				return false
			}
			continue
		}
		op, ok := opcode.FromToken(tok)
		if !ok {
			return false
		}
		if def, _ := opcode.Lookup(byte(op)); def.Glitch == 0 {
			return false
		}
	}
	return words > 0
}

// ToGlitchURL encodes code under the given name.
//
//	ToGlitchURL("1 1 +", "name") // "glitch://name!1.1f"
func ToGlitchURL(code, name string) (string, error) {
	if strings.ContainsRune(name, '!') {
		return "", diag.Errorf(diag.Encoding, "glitch name must not contain '!'")
	}
	code, err := Desugar(code)
	if err != nil {
		return "", err
	}
	if !IsValidGlitchCode(code) {
		return "", diag.Errorf(diag.Encoding, "can't be converted to glitch URL")
	}

	toks := Fields(code)
	var b strings.Builder
	b.WriteString("glitch://")
	b.WriteString(name)
	b.WriteByte('!')
	for i, tok := range toks {
		if tok == "\n" {
			b.WriteByte('!')
			continue
		}
		if glitchNumber.MatchString(tok) {
			n, _ := strconv.ParseUint(tok, 10, 32)
			b.WriteString(strings.ToUpper(strconv.FormatUint(n, 16)))
			if i+1 < len(toks) && glitchNumber.MatchString(toks[i+1]) {
				b.WriteByte('.')
			}
			continue
		}
		op, _ := opcode.FromToken(tok)
		def, _ := opcode.Lookup(byte(op))
		b.WriteByte(def.Glitch)
	}
	return b.String(), nil
}

// FromGlitchURL decodes a Glitch URL into its name and RPN code.
//
//	FromGlitchURL("glitch://name!1.1Ff") // "name", "1 31 +"
func FromGlitchURL(url string) (name, code string, err error) {
	m := glitchURL.FindStringSubmatch(url)
	if m == nil {
		return "", "", diag.Errorf(diag.Syntax, "not a glitch URL: %q", url)
	}
	name = m[1]

	var words []string
	for _, tok := range glitchToken.FindAllString(m[2], -1) {
		if tok == "!" {
			words = append(words, "\n")
			continue
		}
		if tok[0] >= 'a' && tok[0] <= 'u' && len(tok) == 1 {
			op, ok := opcode.FromGlitch(tok[0])
			if !ok {
				return "", "", diag.BadToken(diag.Syntax, tok)
			}
			def, _ := opcode.Lookup(byte(op))
			words = append(words, def.Word)
			continue
		}
		n, err := strconv.ParseUint(tok, 16, 64)
		if err != nil {
			return "", "", diag.BadToken(diag.Syntax, tok)
		}
		words = append(words, strconv.FormatUint(n, 10))
	}

	code = strings.Join(words, " ")
	code = strings.ReplaceAll(code, "\n ", "\n")
	code = strings.ReplaceAll(code, " \n", "\n")
	return name, code, nil
}

// IsValidGlitchURL reports whether url has the shape of a Glitch URL.
func IsValidGlitchURL(url string) bool {
	return validURL.MatchString(url)
}
