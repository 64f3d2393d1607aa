package opam

import "github.com/tsukumogami/opamresolve/internal/manifest"

// IsStale reports whether a locked entry would no longer be chosen under
// the given range and compiler version, meaning the lock must be discarded
// and the pattern resolved again. It runs Choose on a collection holding
// only the entry.
func (s *Selector) IsStale(entry *manifest.Manifest, versionRange, compilerVersion string) (bool, error) {
	coll := manifest.NewCollection(entry.Name, entry)
	_, ok, err := s.Choose(entry.Name, coll, Constraint{
		VersionRange:    versionRange,
		CompilerVersion: compilerVersion,
	})
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// IsStale reports whether entry would be discarded by this resolver's
// selector. It satisfies lockfile.Checker.
func (r *Resolver) IsStale(entry *manifest.Manifest, versionRange, compilerVersion string) (bool, error) {
	return r.selector.IsStale(entry, versionRange, compilerVersion)
}
