package eval

import (
	"unicode/utf16"

	"bytebeat/pkg/numeric"
)

// ValueKind is the dynamic type of a Value.
type ValueKind uint8

const (
	KindNumber ValueKind = iota
	KindString
	KindBoolean
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	default:
		return "invalid"
	}
}

// Value is the result of evaluating an expression node.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Boolean(b bool) Value   { return Value{Kind: KindBoolean, Bool: b} }

// ToNumber converts v the way arithmetic operands are converted.
func (v Value) ToNumber() float64 {
	switch v.Kind {
	case KindString:
		return numeric.Parse(v.Str)
	case KindBoolean:
		return numeric.Bool(v.Bool)
	default:
		return v.Num
	}
}

// ToString converts v the way concatenation does.
func (v Value) ToString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return numeric.Format(v.Num)
	}
}

func (v Value) Truthy() bool {
	switch v.Kind {
	case KindString:
		return v.Str != ""
	case KindBoolean:
		return v.Bool
	default:
		return numeric.Truthy(v.Num)
	}
}

// Inspect renders v for diagnostics; strings are quoted.
func (v Value) Inspect() string {
	if v.Kind == KindString {
		return "'" + v.Str + "'"
	}
	return v.ToString()
}

// codeUnits returns the UTF-16 encoding of s, which is what string
// indices count.
func codeUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// codeUnitAt returns the UTF-16 code unit at index idx of s without
// encoding the whole string.
func codeUnitAt(s string, idx int) (uint16, bool) {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			switch idx {
			case n:
				return uint16(hi), true
			case n + 1:
				return uint16(lo), true
			}
			n += 2
			continue
		}
		if n == idx {
			return uint16(r), true
		}
		n++
	}
	return 0, false
}
