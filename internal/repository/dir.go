package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/override"
)

// Dir reads manifests from a repository checkout on every call.
type Dir struct {
	root string
}

// NewDir creates a repository over the checkout at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Manifests implements Repository.
func (d *Dir) Manifests(ctx context.Context, name string, overlays *override.Set) (*manifest.Collection, error) {
	if !ValidPackageName(name) {
		return nil, &Error{Type: ErrTypeInvalidName, Package: name, Message: fmt.Sprintf("invalid package name %q", name)}
	}

	pkgDir := filepath.Join(d.root, "packages", name)
	entries, err := os.ReadDir(pkgDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, &Error{Type: ErrTypeIO, Package: name, Message: "failed to read package directory", Err: err}
	}

	coll := &manifest.Collection{Name: name, Versions: make(map[string]*manifest.Manifest, len(entries))}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() {
			continue
		}
		ver, ok := versionFromDir(name, e.Name())
		if !ok {
			continue
		}
		path := filepath.Join(pkgDir, e.Name(), ManifestFile)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &Error{Type: ErrTypeIO, Package: name, Message: fmt.Sprintf("failed to read %s", path), Err: err}
		}
		m, err := decodeManifest(data, path, name, ver)
		if err != nil {
			return nil, err
		}
		m.Overrides = overlays.For(name, ver)
		coll.Versions[ver] = m
	}

	if coll.Len() == 0 {
		return nil, notFound(name)
	}
	return coll, nil
}
