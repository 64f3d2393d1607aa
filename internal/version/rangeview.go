package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// numericCore matches the leading dotted numeric part of a version.
var numericCore = regexp.MustCompile(`^v?(\d+)(\.\d+)?(\.\d+)?`)

// RangeView returns the form of raw used for range matching: its numeric
// core with any pre-release or build suffix detached ("2.0.0~alpha" and
// "2.0.0-alpha" both give "2.0.0").
//
// Range predicates exclude pre-release versions from ranges that do not
// name a pre-release themselves, so "*" would skip "2.0.0-alpha". Matching
// against the detached core keeps wildcard ranges inclusive of them. The
// suffix still matters for ordering; callers compare the raw strings.
func RangeView(raw string) (string, error) {
	core := numericCore.FindString(strings.TrimSpace(raw))
	if core == "" {
		return "", &MalformedVersionError{Version: raw, Reason: "no numeric version core"}
	}
	v, err := semver.NewVersion(core)
	if err != nil {
		return "", &MalformedVersionError{Version: raw, Reason: err.Error()}
	}
	// NewVersion keeps any prerelease it parsed; the core regexp never
	// captures one, but clear it so the contract does not depend on that.
	stripped, err := v.SetPrerelease("")
	if err != nil {
		return "", fmt.Errorf("detaching prerelease from %q: %w", raw, err)
	}
	stripped, err = stripped.SetMetadata("")
	if err != nil {
		return "", fmt.Errorf("detaching metadata from %q: %w", raw, err)
	}
	return stripped.String(), nil
}
