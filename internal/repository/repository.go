// Package repository provides the opam package repository: the complete set
// of published manifests for a package name, converted and ready for
// version selection.
//
// A repository is either a directory checkout or a snapshot archive of one,
// both laid out as
//
//	packages/<name>/<name>.<version>/manifest.toml
package repository

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/tsukumogami/opamresolve/internal/log"
	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/override"
)

// ManifestFile is the file name of a converted manifest inside a version
// directory.
const ManifestFile = "manifest.toml"

var packageNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_+-]*$`)

// ValidPackageName reports whether name is a valid opam package name.
func ValidPackageName(name string) bool {
	return len(name) <= 256 && packageNameRegex.MatchString(name)
}

// Repository returns every published version of a package. Overlays
// matching each version are attached to its manifest's Overrides field.
type Repository interface {
	Manifests(ctx context.Context, name string, overlays *override.Set) (*manifest.Collection, error)
}

// Provider hands out the repository, initializing it on first use. Later
// calls return the same repository, or the same initialization error.
type Provider interface {
	Repository(ctx context.Context) (Repository, error)
}

// Option configures repositories created by this package.
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger sets the logger used for repository loading and cache activity.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type onceProvider struct {
	once sync.Once
	load func(ctx context.Context) (Repository, error)
	repo Repository
	err  error
}

// Once returns a Provider that calls load a single time.
func Once(load func(ctx context.Context) (Repository, error)) Provider {
	return &onceProvider{load: load}
}

func (p *onceProvider) Repository(ctx context.Context) (Repository, error) {
	p.once.Do(func() {
		p.repo, p.err = p.load(ctx)
	})
	return p.repo, p.err
}

// Static returns a Provider for an already constructed repository.
func Static(r Repository) Provider {
	return Once(func(context.Context) (Repository, error) { return r, nil })
}

// Open returns a cached Provider for the checkout directory or snapshot
// archive at path. Nothing is read until the first Repository call.
func Open(path string, opts ...Option) Provider {
	o := buildOptions(opts)
	return Once(func(ctx context.Context) (Repository, error) {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &Error{Type: ErrTypeIO, Message: fmt.Sprintf("cannot open repository %s", path), Err: err}
		}
		var repo Repository
		if info.IsDir() {
			o.logger.Info("Using opam repository checkout", "dir", path)
			repo = NewDir(path)
		} else {
			snap, err := LoadSnapshot(ctx, path)
			if err != nil {
				return nil, err
			}
			o.logger.Info("Loaded opam repository snapshot", "path", path, "packages", snap.Len())
			repo = snap
		}
		return NewCached(repo, opts...), nil
	})
}

// decodeManifest parses a manifest file and fills in name and version from
// the directory layout when the file omits them.
func decodeManifest(data []byte, source, name, ver string) (*manifest.Manifest, error) {
	var m manifest.Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, &Error{
			Type:    ErrTypeParsing,
			Package: name,
			Message: fmt.Sprintf("failed to parse %s", source),
			Err:     err,
		}
	}
	if m.Name == "" {
		m.Name = name
	}
	if m.Version == "" {
		m.Version = ver
	}
	return &m, nil
}

// versionFromDir extracts the version from a "<name>.<version>" directory.
func versionFromDir(name, dir string) (string, bool) {
	ver, ok := strings.CutPrefix(dir, name+".")
	if !ok || ver == "" {
		return "", false
	}
	return ver, true
}
