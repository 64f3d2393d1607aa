// Package lockfile reads opamresolve lockfiles and finds entries a fresh
// resolution would no longer pick.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/resolver"
)

// FormatVersion is the only lockfile format this package reads.
const FormatVersion = 1

// ErrUnsupportedFormat is returned for lockfiles with another format version.
var ErrUnsupportedFormat = errors.New("unsupported lockfile format")

// Entry is one locked resolution, keyed in the file by its pattern.
type Entry struct {
	Name             string            `toml:"name"`
	Version          string            `toml:"version"`
	Resolved         string            `toml:"resolved,omitempty"`
	Integrity        string            `toml:"integrity,omitempty"`
	Dependencies     map[string]string `toml:"dependencies,omitempty"`
	PeerDependencies map[string]string `toml:"peer_dependencies,omitempty"`
}

// Manifest returns the entry as a resolved opam manifest.
func (e Entry) Manifest() *manifest.Manifest {
	resolved := e.Resolved
	if resolved == "" {
		resolved = e.Name + "@" + e.Version
	}
	m := &manifest.Manifest{
		Name:             e.Name,
		Version:          e.Version,
		Dependencies:     copyMap(e.Dependencies),
		PeerDependencies: copyMap(e.PeerDependencies),
		Dist:             manifest.Dist{Integrity: e.Integrity},
		Remote: &manifest.Remote{
			Type:      manifest.RemoteTypeOpam,
			Registry:  manifest.RegistryNpm,
			Hash:      e.Integrity,
			Reference: resolved,
			Resolved:  resolved,
		},
	}
	return m
}

// Lockfile is a parsed lockfile. It is never written back.
type Lockfile struct {
	Version int              `toml:"version"`
	Entries map[string]Entry `toml:"entries"`

	path string
}

// Load reads and validates the lockfile at path.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	lf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lf.path = path
	return lf, nil
}

// Parse decodes lockfile content.
func Parse(data []byte) (*Lockfile, error) {
	var lf Lockfile
	if _, err := toml.Decode(string(data), &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile: %w", err)
	}
	if lf.Version != FormatVersion {
		return nil, fmt.Errorf("%w: version %d (want %d)", ErrUnsupportedFormat, lf.Version, FormatVersion)
	}
	for pattern, e := range lf.Entries {
		if e.Name == "" || e.Version == "" {
			return nil, fmt.Errorf("entry %q: name and version are required", pattern)
		}
	}
	return &lf, nil
}

// Path returns the file the lockfile was loaded from, if any.
func (l *Lockfile) Path() string {
	return l.path
}

// Patterns returns the locked patterns in sorted order.
func (l *Lockfile) Patterns() []string {
	patterns := make([]string, 0, len(l.Entries))
	for p := range l.Entries {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// Locked implements resolver.LockLookup. Only opam lookups are answered;
// every hit is a fresh manifest.
func (l *Lockfile) Locked(tag, pattern string) (*manifest.Manifest, bool) {
	if l == nil || tag != manifest.RemoteTypeOpam {
		return nil, false
	}
	e, ok := l.Entries[pattern]
	if !ok {
		return nil, false
	}
	return e.Manifest(), true
}

var _ resolver.LockLookup = (*Lockfile)(nil)

// Checker decides staleness for the patterns it accepts.
type Checker interface {
	IsApplicable(pattern string) bool
	Parse(pattern string) resolver.Identifier
	IsStale(entry *manifest.Manifest, versionRange, compilerVersion string) (bool, error)
}

// StaleEntry is a locked entry that must be resolved again.
type StaleEntry struct {
	Pattern string
	Version string
	Range   string
}

// Stale returns the entries c accepts that it reports as stale under the
// range in their pattern and the given compiler version, in pattern order.
// Patterns c does not accept are skipped.
func (l *Lockfile) Stale(c Checker, compilerVersion string) ([]StaleEntry, error) {
	var out []StaleEntry
	for _, pattern := range l.Patterns() {
		if !c.IsApplicable(pattern) {
			continue
		}
		id := c.Parse(pattern)
		e := l.Entries[pattern]
		stale, err := c.IsStale(e.Manifest(), id.VersionRange, compilerVersion)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", pattern, err)
		}
		if stale {
			out = append(out, StaleEntry{Pattern: pattern, Version: e.Version, Range: id.VersionRange})
		}
	}
	return out, nil
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
