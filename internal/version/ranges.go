package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// AnyRange is the wildcard range expression.
const AnyRange = "*"

// SemverRanges evaluates npm-style range expressions ("^1.2.0", ">=4.10",
// "1.x || 2.x") with Masterminds semver constraints. It is the
// range-satisfaction predicate used by version selection.
type SemverRanges struct{}

// NormalizeRange maps the empty range and "latest" to the wildcard.
func NormalizeRange(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "latest" {
		return AnyRange
	}
	return expr
}

// ValidRange reports whether expr parses as a range expression.
func (SemverRanges) ValidRange(expr string) bool {
	_, err := semver.NewConstraint(NormalizeRange(expr))
	return err == nil
}

// Satisfies reports whether version is inside the range expr. The version
// is parsed leniently ("4.14" and "v4.14.1" are accepted).
func (SemverRanges) Satisfies(version, expr string) (bool, error) {
	c, err := semver.NewConstraint(NormalizeRange(expr))
	if err != nil {
		return false, fmt.Errorf("invalid range %q: %w", expr, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", version, err)
	}
	return c.Check(v), nil
}
