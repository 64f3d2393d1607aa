package version

import (
	"fmt"
	"strings"
)

// Opam orders version strings the way the opam package manager does.
// It implements the precedence comparator used by version selection.
type Opam struct{}

// opamVersionChars lists every character opam accepts in a version string.
const opamVersionChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-+._~"

// MalformedVersionError reports a version string that has no comparable form.
type MalformedVersionError struct {
	Version string
	Reason  string
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version %q: %s", e.Version, e.Reason)
}

// Validate returns a *MalformedVersionError when raw cannot be ordered.
func (Opam) Validate(raw string) error {
	if raw == "" {
		return &MalformedVersionError{Version: raw, Reason: "empty version"}
	}
	if i := strings.IndexFunc(raw, func(r rune) bool {
		return !strings.ContainsRune(opamVersionChars, r)
	}); i >= 0 {
		return &MalformedVersionError{
			Version: raw,
			Reason:  fmt.Sprintf("invalid character %q at offset %d", raw[i], i),
		}
	}
	return nil
}

// Compare returns 1 if a sorts after b, -1 if before, 0 if equal.
//
// The string is consumed as alternating non-digit and digit runs. Non-digit
// runs compare per character with '~' before end-of-run, end-of-run before
// letters, and letters before every other character. Digit runs compare
// numerically. This makes "1.0~beta" sort before "1.0" and "1.0" before
// "1.0.1" or "1.0a".
func (Opam) Compare(a, b string) int {
	return CompareOpam(a, b)
}

// CompareOpam is the function form of Opam.Compare.
func CompareOpam(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			ac, bc := charOrder(a, i), charOrder(b, j)
			if ac != bc {
				return sign(ac - bc)
			}
			i++
			j++
		}

		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}

		firstDiff := 0
		for i < len(a) && j < len(b) && isDigit(a[i]) && isDigit(b[j]) {
			if firstDiff == 0 {
				firstDiff = int(a[i]) - int(b[j])
			}
			i++
			j++
		}
		if i < len(a) && isDigit(a[i]) {
			return 1
		}
		if j < len(b) && isDigit(b[j]) {
			return -1
		}
		if firstDiff != 0 {
			return sign(firstDiff)
		}
	}
	return 0
}

// charOrder weights the character at s[i]; positions past the end weigh 0.
func charOrder(s string, i int) int {
	if i >= len(s) {
		return 0
	}
	c := s[i]
	switch {
	case isDigit(c):
		return 0
	case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return int(c)
	case c == '~':
		return -1
	default:
		return int(c) + 256
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
