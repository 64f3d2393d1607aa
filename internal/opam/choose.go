package opam

import (
	"fmt"

	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/version"
)

// Precedence orders raw version strings in opam's native syntax.
type Precedence interface {
	// Validate reports whether raw has a comparable form.
	Validate(raw string) error
	// Compare returns >0 when a sorts after b, <0 before, 0 when equal.
	Compare(a, b string) int
}

// Ranges is the range-satisfaction predicate.
type Ranges interface {
	ValidRange(expr string) bool
	Satisfies(ver, expr string) (bool, error)
}

// Constraint is what a chosen version must satisfy.
type Constraint struct {
	VersionRange string

	// CompilerVersion is the installed compiler version. Empty means no
	// compiler filtering.
	CompilerVersion string
}

// Selector picks the best version of a package from its published set.
// It holds no state; Choose is a pure function of its arguments.
type Selector struct {
	Precedence Precedence
	Ranges     Ranges
}

// NewSelector returns a selector using opam ordering and semver ranges.
func NewSelector() *Selector {
	return &Selector{Precedence: version.Opam{}, Ranges: version.SemverRanges{}}
}

// Choose returns the highest version in coll that is compatible with the
// compiler and inside the requested range. ok is false when nothing
// qualifies; that is not an error. A candidate whose version has no
// comparable form fails the whole call with *MalformedCandidateVersionError.
func (s *Selector) Choose(name string, coll *manifest.Collection, c Constraint) (string, bool, error) {
	raw := coll.Raw()

	pool := make([]string, 0, len(raw))
	for _, v := range raw {
		if c.CompilerVersion != "" {
			m := coll.Versions[v]
			compatible, err := s.Ranges.Satisfies(c.CompilerVersion, m.CompilerConstraint())
			if err != nil {
				return "", false, fmt.Errorf("checking %s@%s against compiler %s: %w", name, v, c.CompilerVersion, err)
			}
			if !compatible {
				continue
			}
		}
		pool = append(pool, v)
	}

	// Each candidate is seen two ways. Ordering uses the raw string, so a
	// pre-release tag still ranks where opam puts it. Range matching uses
	// the view with the pre-release detached, because the predicate would
	// otherwise keep pre-releases out of "*" and other plain ranges.
	views := make(map[string]string, len(pool))
	for _, v := range pool {
		if err := s.Precedence.Validate(v); err != nil {
			return "", false, &MalformedCandidateVersionError{Name: name, Version: v, Err: err}
		}
		view, err := version.RangeView(v)
		if err != nil {
			return "", false, &MalformedCandidateVersionError{Name: name, Version: v, Err: err}
		}
		views[v] = view
	}

	for _, v := range version.SortDescending(pool, s.Precedence.Compare) {
		match, err := s.Ranges.Satisfies(views[v], c.VersionRange)
		if err != nil {
			return "", false, fmt.Errorf("matching %s@%s: %w", name, v, err)
		}
		if match {
			return v, true, nil
		}
	}
	return "", false, nil
}
