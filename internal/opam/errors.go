package opam

import (
	"fmt"
	"strings"
)

// DependencyNotFoundError is returned when no published version satisfies a
// request.
type DependencyNotFoundError struct {
	Pattern         string   // identifier as requested
	Name            string   // parsed package name
	VersionRange    string   // normalized range
	CompilerVersion string   // compiler filter in effect, if any
	Path            []string // requesting packages, root first
}

func (e *DependencyNotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "couldn't find any versions for %q that match %q", e.Pattern, e.VersionRange)
	if e.CompilerVersion != "" {
		fmt.Fprintf(&sb, " with ocaml %s", e.CompilerVersion)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&sb, " (dependency path: %s)", strings.Join(e.Path, " -> "))
	}
	return sb.String()
}

// Suggestion returns an actionable hint for the user.
func (e *DependencyNotFoundError) Suggestion() string {
	if e.CompilerVersion != "" {
		return fmt.Sprintf("Run 'opamresolve versions %s --ocaml %s' to see which versions support this compiler", e.Name, e.CompilerVersion)
	}
	return fmt.Sprintf("Run 'opamresolve versions %s' to see available versions", e.Name)
}

// MalformedCandidateVersionError reports a published version that cannot be
// ordered. It points at bad repository data rather than an unsatisfiable
// request, and is never recovered from.
type MalformedCandidateVersionError struct {
	Name    string
	Version string
	Err     error
}

func (e *MalformedCandidateVersionError) Error() string {
	return fmt.Sprintf("opam package %s publishes malformed version %q: %v", e.Name, e.Version, e.Err)
}

func (e *MalformedCandidateVersionError) Unwrap() error {
	return e.Err
}

// Suggestion returns an actionable hint for the user.
func (e *MalformedCandidateVersionError) Suggestion() string {
	return "The opam repository data is corrupt; update or regenerate the repository checkout"
}
