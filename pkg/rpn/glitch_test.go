package rpn

import "testing"

func TestToGlitchURL(t *testing.T) {
	tests := []struct {
		code     string
		name     string
		expected string
	}{
		{"1 1 +", "name", "glitch://name!1.1f"},
		{"t 10 >> 42 & t *", "", "glitch://!aAk2Alad"},
		{"(* t 255)", "x", "glitch://x!aFFd"},
		{"t dup 8 >>\nswap drop", "lines", "glitch://lines!ap8k!rc"},
		{"t 3 < t 4 > =", "cmp", "glitch://cmp!a3sa4tu"},
	}

	for _, tt := range tests {
		got, err := ToGlitchURL(tt.code, tt.name)
		if err != nil {
			t.Fatalf("ToGlitchURL(%q) error: %v", tt.code, err)
		}
		if got != tt.expected {
			t.Errorf("ToGlitchURL(%q) wrong. expected=%q, got=%q", tt.code, tt.expected, got)
		}
	}
}

func TestToGlitchURLRejects(t *testing.T) {
	for _, code := range []string{"t tt +", "t 1.5 *", "t -1 *", "t sin", "t 1 >>>", "t 1 &&"} {
		if _, err := ToGlitchURL(code, "x"); err == nil {
			t.Errorf("ToGlitchURL(%q) expected error", code)
		}
	}
	if _, err := ToGlitchURL("t", "bad!name"); err == nil {
		t.Errorf("expected error for name containing '!'")
	}
}

func TestFromGlitchURL(t *testing.T) {
	tests := []struct {
		url          string
		expectedName string
		expectedCode string
	}{
		{"glitch://name!1.1Ff", "name", "1 31 +"},
		{"glitch://name!1.1f", "name", "1 1 +"},
		{"noscheme!aAk2Alad", "noscheme", "t 10 >> 42 & t *"},
		{"glitch://lines!ap8k!rc", "lines", "t dup 8 >>\nswap drop"},
	}

	for _, tt := range tests {
		name, code, err := FromGlitchURL(tt.url)
		if err != nil {
			t.Fatalf("FromGlitchURL(%q) error: %v", tt.url, err)
		}
		if name != tt.expectedName {
			t.Errorf("name wrong. expected=%q, got=%q", tt.expectedName, name)
		}
		if code != tt.expectedCode {
			t.Errorf("code wrong. expected=%q, got=%q", tt.expectedCode, code)
		}
	}

	if _, _, err := FromGlitchURL("no separator"); err == nil {
		t.Errorf("expected error for malformed URL")
	}
}

func TestGlitchRoundTrip(t *testing.T) {
	codes := []string{"t 5 * t 7 >> &", "t t 4 >> | 63 ^", "4096 t 2 pick put 1 +\nt ~"}

	for _, code := range codes {
		url, err := ToGlitchURL(code, "rt")
		if err != nil {
			t.Fatalf("ToGlitchURL(%q) error: %v", code, err)
		}
		if !IsValidGlitchURL(url) {
			t.Errorf("IsValidGlitchURL(%q) = false", url)
		}
		_, back, err := FromGlitchURL(url)
		if err != nil {
			t.Fatalf("FromGlitchURL(%q) error: %v", url, err)
		}
		if back != code {
			t.Errorf("round trip wrong. expected=%q, got=%q", code, back)
		}
	}
}

func TestIsValidGlitchURL(t *testing.T) {
	tests := map[string]bool{
		"glitch://a!aFFd": true,
		"x!1.1f":          true,
		"glitch://a!":     false,
		"glitch://a!aiz":  false,
		"aFFd":            false,
	}
	for url, expected := range tests {
		if got := IsValidGlitchURL(url); got != expected {
			t.Errorf("IsValidGlitchURL(%q) wrong. expected=%t, got=%t", url, expected, got)
		}
	}
}
