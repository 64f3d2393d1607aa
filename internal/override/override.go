// Package override loads the build and patch overlays that adapt opam
// packages to the package manager. Overlays are looked up here; merging
// them into manifests happens in a later pipeline step.
package override

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/tsukumogami/opamresolve/internal/log"
	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/version"
)

// Provider supplies the override set. Implementations initialize once;
// every call returns the same set.
type Provider interface {
	Overrides(ctx context.Context) (*Set, error)
}

// Set holds overlays per package name. A nil *Set is empty.
type Set struct {
	byName map[string][]manifest.Overlay
}

// NewSet builds a set from overlays keyed by package name.
func NewSet(byName map[string][]manifest.Overlay) *Set {
	return &Set{byName: byName}
}

// Len returns the number of packages with overlays.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byName)
}

// Names returns the packages with overlays, sorted.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// For returns the overlays of name whose version range contains ver.
// Versions without a numeric core match only overlays for "*".
func (s *Set) For(name, ver string) []manifest.Overlay {
	if s == nil {
		return nil
	}
	var ranges version.SemverRanges
	view, viewErr := version.RangeView(ver)

	var out []manifest.Overlay
	for _, o := range s.byName[name] {
		expr := version.NormalizeRange(o.Versions)
		if expr == version.AnyRange {
			out = append(out, o)
			continue
		}
		if viewErr != nil {
			continue
		}
		// Ranges were validated at load time.
		if ok, _ := ranges.Satisfies(view, expr); ok {
			out = append(out, o)
		}
	}
	return out
}

type overlayFile struct {
	Override []manifest.Overlay `toml:"override"`
}

// LoadDir reads every <package>.toml file in dir. A missing directory is
// an empty set.
func LoadDir(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return NewSet(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides directory: %w", err)
	}

	var ranges version.SemverRanges
	byName := make(map[string][]manifest.Overlay)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".toml")
		path := filepath.Join(dir, e.Name())

		var f overlayFile
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("failed to parse override %s: %w", path, err)
		}
		for i, o := range f.Override {
			if !ranges.ValidRange(o.Versions) {
				return nil, fmt.Errorf("override %s entry %d: invalid versions range %q", path, i, o.Versions)
			}
		}
		if len(f.Override) > 0 {
			byName[name] = f.Override
		}
	}
	return NewSet(byName), nil
}

// Dir is a Provider backed by a directory of overlay files.
type Dir struct {
	path   string
	logger log.Logger
	load   func() (*Set, error)
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger used while loading overlays.
func WithLogger(l log.Logger) Option {
	return func(d *Dir) {
		d.logger = l
	}
}

// NewDir creates a provider that loads dir on first use.
func NewDir(dir string, opts ...Option) *Dir {
	d := &Dir{path: dir, logger: log.Default()}
	for _, opt := range opts {
		opt(d)
	}
	d.load = sync.OnceValues(func() (*Set, error) {
		set, err := LoadDir(d.path)
		if err != nil {
			return nil, err
		}
		d.logger.Info("Loaded opam overrides", "dir", d.path, "packages", set.Len())
		return set, nil
	})
	return d
}

// Overrides loads the directory once and returns the same set (or error)
// on every call.
func (d *Dir) Overrides(ctx context.Context) (*Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.load()
}

// Static is a Provider returning a fixed set.
type Static struct {
	Set *Set
}

// Overrides returns s.Set.
func (s Static) Overrides(context.Context) (*Set, error) {
	return s.Set, nil
}
