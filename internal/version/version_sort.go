package version

import (
	"sort"
)

// SortDescending sorts versions in descending order (latest first) using
// cmp as the precedence function. Versions that cmp reports as equal, such
// as "1.0" and "1.00" under opam ordering, fall back to plain string order
// so the result never depends on input order.
// The input slice is not modified; a new sorted slice is returned.
func SortDescending(versions []string, cmp func(a, b string) int) []string {
	if len(versions) == 0 {
		return versions
	}

	result := make([]string, len(versions))
	copy(result, versions)

	sort.Slice(result, func(i, j int) bool {
		if c := cmp(result[i], result[j]); c != 0 {
			return c > 0
		}
		return result[i] > result[j]
	})

	return result
}

// IsSortedDescending checks if versions are sorted in descending order
// according to cmp.
func IsSortedDescending(versions []string, cmp func(a, b string) int) bool {
	for i := 1; i < len(versions); i++ {
		if cmp(versions[i-1], versions[i]) < 0 {
			return false
		}
	}
	return true
}
