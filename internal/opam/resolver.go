// Package opam resolves "@opam/<name>@<range>" identifiers against an opam
// package repository.
package opam

import (
	"context"

	"github.com/tsukumogami/opamresolve/internal/log"
	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/override"
	"github.com/tsukumogami/opamresolve/internal/repository"
	"github.com/tsukumogami/opamresolve/internal/resolver"
	"github.com/tsukumogami/opamresolve/internal/version"
)

// LockTag is the ecosystem tag used to probe the lockfile.
const LockTag = manifest.RemoteTypeOpam

// Resolver is the opam variant of resolver.Variant. It keeps no state
// between calls; the repository and override providers own any sharing.
type Resolver struct {
	scope     string
	selector  *Selector
	repos     repository.Provider
	overrides override.Provider
	logger    log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithScope sets the identifier prefix. The default is DefaultScope.
func WithScope(scope string) Option {
	return func(r *Resolver) {
		r.scope = scope
	}
}

// WithSelector replaces the version selector.
func WithSelector(s *Selector) Option {
	return func(r *Resolver) {
		r.selector = s
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates an opam resolver over the given providers.
func New(repos repository.Provider, overrides override.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		scope:     DefaultScope,
		selector:  NewSelector(),
		repos:     repos,
		overrides: overrides,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scope returns the identifier prefix this resolver accepts.
func (r *Resolver) Scope() string {
	return r.scope
}

// Selector returns the version selector, for staleness checks that must
// agree with resolution.
func (r *Resolver) Selector() *Selector {
	return r.selector
}

// Parse implements resolver.Variant.
func (r *Resolver) Parse(pattern string) resolver.Identifier {
	return Parse(r.scope, pattern)
}

// IsApplicable implements resolver.Variant.
func (r *Resolver) IsApplicable(pattern string) bool {
	return IsApplicable(r.scope, pattern, r.selector.Ranges)
}

// Resolve implements resolver.Variant. A locked manifest is returned as is;
// otherwise the best version is selected from the repository and returned
// as a copy carrying its provenance in Remote.
func (r *Resolver) Resolve(ctx context.Context, req resolver.Request) (*manifest.Manifest, error) {
	if req.Lock != nil {
		if m, ok := req.Lock.Locked(LockTag, req.Pattern); ok {
			r.logger.Debug("Using locked resolution", "pattern", req.Pattern, "version", m.Version)
			return m, nil
		}
	}

	id := r.Parse(req.Pattern)
	m, chosen, err := r.resolveManifest(ctx, id, req)
	if err != nil {
		return nil, err
	}

	locator := id.Name + "@" + chosen
	out := m.Clone()
	out.Remote = &manifest.Remote{
		Type:      manifest.RemoteTypeOpam,
		Registry:  manifest.RegistryNpm,
		Hash:      m.Integrity(),
		Reference: locator,
		Resolved:  locator,
	}
	return out, nil
}

// resolveManifest selects a version for id and returns the repository's
// manifest for it, unmodified. Provider errors are returned unchanged.
func (r *Resolver) resolveManifest(ctx context.Context, id resolver.Identifier, req resolver.Request) (*manifest.Manifest, string, error) {
	rng := version.NormalizeRange(id.VersionRange)

	overlays, err := r.overrides.Overrides(ctx)
	if err != nil {
		return nil, "", err
	}
	repo, err := r.repos.Repository(ctx)
	if err != nil {
		return nil, "", err
	}
	coll, err := repo.Manifests(ctx, id.Name, overlays)
	if err != nil {
		return nil, "", err
	}

	c := Constraint{VersionRange: rng, CompilerVersion: req.CompilerVersion}
	chosen, ok, err := r.selector.Choose(id.Name, coll, c)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", &DependencyNotFoundError{
			Pattern:         req.Pattern,
			Name:            id.Name,
			VersionRange:    rng,
			CompilerVersion: req.CompilerVersion,
			Path:            req.Path(),
		}
	}

	r.logger.Debug("Chose opam version",
		"package", id.Name, "range", rng, "ocaml", req.CompilerVersion,
		"version", chosen, "candidates", coll.Len())
	return coll.Versions[chosen], chosen, nil
}
