package opam

import (
	"strings"

	"github.com/tsukumogami/opamresolve/internal/resolver"
	"github.com/tsukumogami/opamresolve/internal/version"
)

// DefaultScope is the identifier prefix of opam packages.
const DefaultScope = "@opam/"

// Parse splits "<scope><name>@<range>" into name and range. The range
// defaults to "*" when there is no '@' after the scope.
//
// Parse never fails: callers gate on IsApplicable first, and anything
// malformed is split as well as possible and left for the range predicate
// to reject.
func Parse(scope, pattern string) resolver.Identifier {
	rest := strings.TrimPrefix(pattern, scope)
	name, rng, found := strings.Cut(rest, "@")
	if !found {
		rng = version.AnyRange
	}
	return resolver.Identifier{Name: name, VersionRange: rng}
}

// IsApplicable reports whether pattern starts with scope and the text after
// its last '@' is a valid range expression. A bare "@opam/name" has no such
// text (its last '@' is the scope's own) and is not applicable.
func IsApplicable(scope, pattern string, ranges Ranges) bool {
	if !strings.HasPrefix(pattern, scope) {
		return false
	}
	return ranges.ValidRange(pattern[strings.LastIndex(pattern, "@")+1:])
}
