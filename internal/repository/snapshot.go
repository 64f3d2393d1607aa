package repository

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	lzip "github.com/sorairolake/lzip-go"
	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/override"
	"github.com/ulikunitz/xz"
)

// maxManifestSize bounds a single manifest read from an archive.
const maxManifestSize = 1 << 20

// Snapshot is a repository held in memory, read from a tar archive of a
// checkout.
type Snapshot struct {
	packages map[string]map[string]*manifest.Manifest
}

// NewSnapshot builds an in-memory repository from manifests. Manifests are
// grouped by Name and keyed by Version.
func NewSnapshot(manifests ...*manifest.Manifest) *Snapshot {
	s := &Snapshot{packages: make(map[string]map[string]*manifest.Manifest)}
	for _, m := range manifests {
		s.add(m.Name, m.Version, m)
	}
	return s
}

func (s *Snapshot) add(name, ver string, m *manifest.Manifest) {
	versions, ok := s.packages[name]
	if !ok {
		versions = make(map[string]*manifest.Manifest)
		s.packages[name] = versions
	}
	versions[ver] = m
}

// Len returns the number of packages in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.packages)
}

// Manifests implements Repository. Every call returns fresh copies, so
// attaching overlays never touches the snapshot.
func (s *Snapshot) Manifests(ctx context.Context, name string, overlays *override.Set) (*manifest.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	versions, ok := s.packages[name]
	if !ok || len(versions) == 0 {
		return nil, notFound(name)
	}
	coll := &manifest.Collection{Name: name, Versions: make(map[string]*manifest.Manifest, len(versions))}
	for ver, m := range versions {
		c := m.Clone()
		c.Overrides = overlays.For(name, ver)
		coll.Versions[ver] = c
	}
	return coll, nil
}

// LoadSnapshot reads a tar archive of a repository checkout. The
// compression is chosen from the file extension: .tar, .tar.gz/.tgz,
// .tar.xz/.txz, .tar.zst/.tzst or .tar.lz/.tlz. A single leading directory
// inside the archive (as produced by "tar -C .. repo") is accepted.
func LoadSnapshot(ctx context.Context, archivePath string) (*Snapshot, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, &Error{Type: ErrTypeIO, Message: fmt.Sprintf("failed to open snapshot %s", archivePath), Err: err}
	}
	defer f.Close()

	r, closeFn, err := decompress(archivePath, f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return readSnapshot(ctx, tar.NewReader(r), archivePath)
}

// decompress wraps r according to the archive extension.
func decompress(archivePath string, r io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".tar"):
		return r, noop, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, archiveError(archivePath, "failed to create gzip reader", err)
		}
		return gzr, func() { gzr.Close() }, nil
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, archiveError(archivePath, "failed to create xz reader", err)
		}
		return xzr, noop, nil
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, archiveError(archivePath, "failed to create zstd reader", err)
		}
		return zr, zr.Close, nil
	case strings.HasSuffix(lower, ".tar.lz"), strings.HasSuffix(lower, ".tlz"):
		lr, err := lzip.NewReader(r)
		if err != nil {
			return nil, nil, archiveError(archivePath, "failed to create lzip reader", err)
		}
		return lr, noop, nil
	default:
		return nil, nil, archiveError(archivePath, "unsupported snapshot format", nil)
	}
}

func archiveError(archivePath, msg string, err error) *Error {
	return &Error{Type: ErrTypeArchive, Message: fmt.Sprintf("%s: %s", archivePath, msg), Err: err}
}

func readSnapshot(ctx context.Context, tr *tar.Reader, archivePath string) (*Snapshot, error) {
	snap := NewSnapshot()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, archiveError(archivePath, "failed to read archive", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name, ver, ok := splitManifestPath(hdr.Name)
		if !ok {
			continue
		}
		if hdr.Size > maxManifestSize {
			return nil, archiveError(archivePath, fmt.Sprintf("manifest %s exceeds %d bytes", hdr.Name, maxManifestSize), nil)
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxManifestSize))
		if err != nil {
			return nil, archiveError(archivePath, fmt.Sprintf("failed to read %s", hdr.Name), err)
		}
		m, err := decodeManifest(data, archivePath+":"+hdr.Name, name, ver)
		if err != nil {
			return nil, err
		}
		snap.add(name, ver, m)
	}
	return snap, nil
}

// splitManifestPath matches "[<top>/]packages/<name>/<name>.<version>/manifest.toml".
func splitManifestPath(p string) (name, ver string, ok bool) {
	parts := strings.Split(path.Clean(strings.TrimPrefix(p, "./")), "/")
	if len(parts) == 5 {
		parts = parts[1:]
	}
	if len(parts) != 4 || parts[0] != "packages" || parts[3] != ManifestFile {
		return "", "", false
	}
	name = parts[1]
	if !ValidPackageName(name) {
		return "", "", false
	}
	ver, ok = versionFromDir(name, parts[2])
	if !ok {
		return "", "", false
	}
	return name, ver, true
}
