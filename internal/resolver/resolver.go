// Package resolver dispatches dependency identifiers to the resolver
// variant registered for their scope prefix.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tsukumogami/opamresolve/internal/manifest"
)

// ErrNoResolver is returned when no registered variant accepts a pattern.
var ErrNoResolver = errors.New("no resolver accepts identifier")

// Identifier is a parsed dependency identifier.
type Identifier struct {
	Name         string
	VersionRange string
}

// LockLookup returns a previously resolved manifest for a pattern, keyed
// by the ecosystem tag of the variant asking.
type LockLookup interface {
	Locked(tag, pattern string) (*manifest.Manifest, bool)
}

// Request is one resolution request from the dependency pipeline.
type Request struct {
	// Pattern is the identifier as written by the requesting package,
	// for example "@opam/dune@^3.0.0".
	Pattern string

	// Parents is the chain of requesting packages as recorded while
	// walking the graph: nearest parent first, root last.
	Parents []string

	// CompilerVersion is the installed compiler version, if known.
	// Empty disables compiler compatibility filtering.
	CompilerVersion string

	// Lock short-circuits resolution when it holds the pattern. May be nil.
	Lock LockLookup
}

// Path returns the dependency path root-first.
func (r Request) Path() []string {
	path := make([]string, len(r.Parents))
	for i, p := range r.Parents {
		path[len(r.Parents)-1-i] = p
	}
	return path
}

// Variant is one ecosystem's resolver.
type Variant interface {
	// Parse splits a pattern the variant accepts into name and range.
	Parse(pattern string) Identifier

	// IsApplicable reports whether the variant should handle pattern.
	IsApplicable(pattern string) bool

	// Resolve turns the request into one manifest.
	Resolve(ctx context.Context, req Request) (*manifest.Manifest, error)
}

// Table maps scope prefixes to resolver variants.
type Table struct {
	variants map[string]Variant
	prefixes []string // longest first
}

// NewTable creates an empty dispatch table.
func NewTable() *Table {
	return &Table{variants: make(map[string]Variant)}
}

// Register installs v for identifiers starting with prefix, replacing any
// variant previously registered for the same prefix.
func (t *Table) Register(prefix string, v Variant) {
	if _, exists := t.variants[prefix]; !exists {
		t.prefixes = append(t.prefixes, prefix)
		sort.SliceStable(t.prefixes, func(i, j int) bool {
			return len(t.prefixes[i]) > len(t.prefixes[j])
		})
	}
	t.variants[prefix] = v
}

// Lookup returns the variant for pattern. The longest registered prefix
// wins, and the variant must also report the pattern as applicable.
func (t *Table) Lookup(pattern string) (Variant, bool) {
	for _, prefix := range t.prefixes {
		if !strings.HasPrefix(pattern, prefix) {
			continue
		}
		v := t.variants[prefix]
		if v.IsApplicable(pattern) {
			return v, true
		}
		return nil, false
	}
	return nil, false
}

// Resolve dispatches req to the variant that accepts req.Pattern.
func (t *Table) Resolve(ctx context.Context, req Request) (*manifest.Manifest, error) {
	v, ok := t.Lookup(req.Pattern)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoResolver, req.Pattern)
	}
	return v.Resolve(ctx, req)
}
