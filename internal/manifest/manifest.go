// Package manifest defines the package manifests exchanged between the
// opam repository, the version selector and the dependency pipeline.
package manifest

import (
	"maps"
	"slices"

	"github.com/tsukumogami/opamresolve/internal/version"
)

// CompilerKey is the peer-compatibility key declaring which compiler
// versions a package builds with.
const CompilerKey = "ocaml"

const (
	// RemoteTypeOpam tags manifests resolved from an opam repository.
	RemoteTypeOpam = "opam"

	// RegistryNpm is the registry source recorded for opam resolutions.
	RegistryNpm = "npm"
)

// Manifest is a package manifest converted from an opam repository entry.
type Manifest struct {
	Name             string            `toml:"name" json:"name"`
	Version          string            `toml:"version" json:"version"`
	Description      string            `toml:"description,omitempty" json:"description,omitempty"`
	License          string            `toml:"license,omitempty" json:"license,omitempty"`
	Dependencies     map[string]string `toml:"dependencies,omitempty" json:"dependencies,omitempty"`
	PeerDependencies map[string]string `toml:"peer_dependencies,omitempty" json:"peerDependencies,omitempty"`
	Dist             Dist              `toml:"dist" json:"dist"`
	Opam             Opam              `toml:"opam" json:"opam"`

	// Overrides carries the overlays matching this version. They are
	// attached by the repository and merged by a later pipeline step.
	Overrides []Overlay `toml:"-" json:"overrides,omitempty"`

	// Remote is set once the manifest has been resolved.
	Remote *Remote `toml:"-" json:"_remote,omitempty"`
}

// Dist locates the package source archive.
type Dist struct {
	Tarball   string `toml:"tarball,omitempty" json:"tarball,omitempty"`
	Integrity string `toml:"integrity,omitempty" json:"integrity,omitempty"`
}

// Opam holds build information carried over from the opam file.
type Opam struct {
	Source   string     `toml:"source,omitempty" json:"source,omitempty"`
	Checksum string     `toml:"checksum,omitempty" json:"checksum,omitempty"`
	Build    [][]string `toml:"build,omitempty" json:"build,omitempty"`
	Install  [][]string `toml:"install,omitempty" json:"install,omitempty"`
	Patches  []string   `toml:"patches,omitempty" json:"patches,omitempty"`
}

// Overlay is an ecosystem-specific build or patch overlay for a range of
// package versions.
type Overlay struct {
	Versions         string            `toml:"versions" json:"versions"`
	Build            [][]string        `toml:"build,omitempty" json:"build,omitempty"`
	Install          [][]string        `toml:"install,omitempty" json:"install,omitempty"`
	Patches          []string          `toml:"patches,omitempty" json:"patches,omitempty"`
	Dependencies     map[string]string `toml:"dependencies,omitempty" json:"dependencies,omitempty"`
	PeerDependencies map[string]string `toml:"peer_dependencies,omitempty" json:"peerDependencies,omitempty"`
}

// Remote is the provenance block stamped on a resolved manifest.
type Remote struct {
	Type      string `toml:"type" json:"type"`
	Registry  string `toml:"registry" json:"registry"`
	Hash      string `toml:"hash" json:"hash"`
	Reference string `toml:"reference" json:"reference"`
	Resolved  string `toml:"resolved" json:"resolved"`
}

// CompilerConstraint returns the range of compiler versions the package
// declares compatibility with, or "*" when it declares none.
func (m *Manifest) CompilerConstraint() string {
	if c, ok := m.PeerDependencies[CompilerKey]; ok && c != "" {
		return c
	}
	return version.AnyRange
}

// Locator returns "<name>@<version>".
func (m *Manifest) Locator() string {
	return m.Name + "@" + m.Version
}

// Integrity returns the hash recorded in provenance blocks: the dist
// integrity when present, otherwise the opam source checksum.
func (m *Manifest) Integrity() string {
	if m.Dist.Integrity != "" {
		return m.Dist.Integrity
	}
	return m.Opam.Checksum
}

// Clone returns a deep copy of m.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	c := *m
	c.Dependencies = maps.Clone(m.Dependencies)
	c.PeerDependencies = maps.Clone(m.PeerDependencies)
	c.Opam.Build = cloneCommands(m.Opam.Build)
	c.Opam.Install = cloneCommands(m.Opam.Install)
	c.Opam.Patches = slices.Clone(m.Opam.Patches)
	if m.Overrides != nil {
		c.Overrides = make([]Overlay, len(m.Overrides))
		for i, o := range m.Overrides {
			c.Overrides[i] = o.clone()
		}
	}
	if m.Remote != nil {
		r := *m.Remote
		c.Remote = &r
	}
	return &c
}

func (o Overlay) clone() Overlay {
	o.Build = cloneCommands(o.Build)
	o.Install = cloneCommands(o.Install)
	o.Patches = slices.Clone(o.Patches)
	o.Dependencies = maps.Clone(o.Dependencies)
	o.PeerDependencies = maps.Clone(o.PeerDependencies)
	return o
}

func cloneCommands(cmds [][]string) [][]string {
	if cmds == nil {
		return nil
	}
	out := make([][]string, len(cmds))
	for i, c := range cmds {
		out[i] = slices.Clone(c)
	}
	return out
}

// Collection is every published version of one package, keyed by the raw
// version string as published.
type Collection struct {
	Name     string
	Versions map[string]*Manifest
}

// NewCollection builds a collection from manifests, keyed by their Version.
func NewCollection(name string, manifests ...*Manifest) *Collection {
	c := &Collection{Name: name, Versions: make(map[string]*Manifest, len(manifests))}
	for _, m := range manifests {
		c.Versions[m.Version] = m
	}
	return c
}

// Len returns the number of versions in the collection.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Versions)
}

// Raw returns the raw version keys in ascending string order.
func (c *Collection) Raw() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Versions))
}
