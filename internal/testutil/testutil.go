// Package testutil provides repository fixtures for tests.
package testutil

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/tsukumogami/opamresolve/internal/manifest"
)

// Package returns a minimal manifest for name at ver. When ocaml is
// non-empty it is declared as the compiler constraint.
func Package(name, ver, ocaml string) *manifest.Manifest {
	m := &manifest.Manifest{
		Name:    name,
		Version: ver,
		Dist:    manifest.Dist{Integrity: "sha256-" + name + "-" + ver},
	}
	if ocaml != "" {
		m.PeerDependencies = map[string]string{manifest.CompilerKey: ocaml}
	}
	return m
}

// EncodeManifest renders m as manifest.toml content.
func EncodeManifest(t *testing.T, m *manifest.Manifest) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		t.Fatalf("failed to encode manifest %s: %v", m.Locator(), err)
	}
	return buf.Bytes()
}

// ManifestPath returns the layout path of m relative to a repository root.
func ManifestPath(m *manifest.Manifest) string {
	return filepath.Join("packages", m.Name, m.Name+"."+m.Version, "manifest.toml")
}

// WriteRepository lays out manifests as a repository checkout under a new
// temporary directory and returns its root.
func WriteRepository(t *testing.T, manifests ...*manifest.Manifest) string {
	t.Helper()
	root := t.TempDir()
	for _, m := range manifests {
		path := filepath.Join(root, ManifestPath(m))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, EncodeManifest(t, m), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	return root
}

// TarRepository returns an uncompressed tar archive of the checkout layout
// for manifests, nested under top when it is non-empty.
func TarRepository(t *testing.T, top string, manifests ...*manifest.Manifest) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, m := range manifests {
		data := EncodeManifest(t, m)
		name := filepath.ToSlash(ManifestPath(m))
		if top != "" {
			name = top + "/" + name
		}
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(data)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header: %v", err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatalf("failed to write tar entry: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	return buf.Bytes()
}
