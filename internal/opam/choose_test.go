package opam

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/testutil"
	"github.com/tsukumogami/opamresolve/internal/version"
)

func collection(name string, versions map[string]string) *manifest.Collection {
	c := manifest.NewCollection(name)
	for v, ocaml := range versions {
		c.Versions[v] = testutil.Package(name, v, ocaml)
	}
	return c
}

func TestChooseScenarios(t *testing.T) {
	tests := []struct {
		name       string
		candidates map[string]string
		constraint Constraint
		want       string
		wantOK     bool
	}{
		{
			name:       "wildcard includes detached prerelease",
			candidates: map[string]string{"1.0.0": "", "1.2.0": "", "2.0.0-alpha": ""},
			constraint: Constraint{VersionRange: "*"},
			want:       "2.0.0-alpha",
			wantOK:     true,
		},
		{
			name:       "compiler filter drops incompatible highest",
			candidates: map[string]string{"1.0.0": "*", "1.2.0": ">=4.10", "2.0.0": ">=4.14"},
			constraint: Constraint{VersionRange: "*", CompilerVersion: "4.11.0"},
			want:       "1.2.0",
			wantOK:     true,
		},
		{
			name:       "nothing in range",
			candidates: map[string]string{"1.0.0": ""},
			constraint: Constraint{VersionRange: "^2.0.0"},
			wantOK:     false,
		},
		{
			name:       "no compiler version skips filter",
			candidates: map[string]string{"1.0.0": "*", "2.0.0": ">=99.0"},
			constraint: Constraint{VersionRange: "*"},
			want:       "2.0.0",
			wantOK:     true,
		},
		{
			name:       "undeclared compiler constraint always survives",
			candidates: map[string]string{"1.0.0": "", "2.0.0": ">=5.0"},
			constraint: Constraint{VersionRange: "*", CompilerVersion: "4.14.1"},
			want:       "1.0.0",
			wantOK:     true,
		},
		{
			name:       "everything filtered by compiler",
			candidates: map[string]string{"1.0.0": ">=5.0", "2.0.0": ">=5.1"},
			constraint: Constraint{VersionRange: "*", CompilerVersion: "4.14.1"},
			wantOK:     false,
		},
		{
			name:       "opam ordering not lexical",
			candidates: map[string]string{"0.9.0": "", "0.10.0": "", "0.10.0~beta": ""},
			constraint: Constraint{VersionRange: "^0.9.0 || ^0.10.0"},
			want:       "0.10.0",
			wantOK:     true,
		},
		{
			name:       "tilde prerelease matches its release range",
			candidates: map[string]string{"1.0.0": "", "2.0.0~rc1": ""},
			constraint: Constraint{VersionRange: "^2.0.0"},
			want:       "2.0.0~rc1",
			wantOK:     true,
		},
		{
			name:       "latest normalizes to wildcard",
			candidates: map[string]string{"1.0.0": "", "3.0.0": ""},
			constraint: Constraint{VersionRange: "latest"},
			want:       "3.0.0",
			wantOK:     true,
		},
	}

	s := NewSelector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := s.Choose("foo", collection("foo", tt.candidates), tt.constraint)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChooseEmptyCollection(t *testing.T) {
	s := NewSelector()

	got, ok, err := s.Choose("foo", manifest.NewCollection("foo"), Constraint{VersionRange: "*"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)

	_, ok, err = s.Choose("foo", nil, Constraint{VersionRange: "*"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChooseMalformedVersionIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"invalid character", "1.0 beta"},
		{"no numeric core", "dev"},
	}

	s := NewSelector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The malformed version sorts below a valid match; it must still fail.
			coll := collection("foo", map[string]string{"9.0.0": "", tt.version: ""})
			_, _, err := s.Choose("foo", coll, Constraint{VersionRange: "*"})

			var mce *MalformedCandidateVersionError
			require.True(t, errors.As(err, &mce), "expected *MalformedCandidateVersionError, got %v", err)
			assert.Equal(t, tt.version, mce.Version)
			assert.Equal(t, "foo", mce.Name)

			var mve *version.MalformedVersionError
			assert.True(t, errors.As(err, &mve))
		})
	}
}

func TestChooseMalformedVersionFilteredByCompilerIsIgnored(t *testing.T) {
	coll := collection("foo", map[string]string{"1.0.0": "", "dev": ">=5.0"})
	got, ok, err := NewSelector().Choose("foo", coll, Constraint{VersionRange: "*", CompilerVersion: "4.14.1"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.0.0", got)
}

func TestChooseInvalidRange(t *testing.T) {
	coll := collection("foo", map[string]string{"1.0.0": ""})
	_, _, err := NewSelector().Choose("foo", coll, Constraint{VersionRange: "not a range"})
	assert.Error(t, err)

	coll = collection("foo", map[string]string{"1.0.0": "garbage constraint"})
	_, _, err = NewSelector().Choose("foo", coll, Constraint{VersionRange: "*", CompilerVersion: "4.14.1"})
	assert.Error(t, err)
}

var (
	suffixes      = []string{"", "", "", "~beta", "~rc1", "-alpha", "+flambda"}
	compilerReqs  = []string{"", "", ">=4.8", ">=4.10", ">=4.14", "<5.0.0"}
	compilers     = []string{"", "4.8.1", "4.11.0", "4.14.1", "5.1.0"}
	nestedRanges  = [][2]string{{"^1.2.0", ">=1.0.0"}, {"~1.2.0", "^1.0.0"}, {"1.2.x", "1.x"}, {"=2.1.3", "*"}, {"^0.3.0", "<1.0.0"}}
	anyRangeSetup = []string{"*", "^1.0.0", "~2.1.0", ">=0.3.0 <2.0.0", "1.x || 3.x"}
)

func randomCollection(rng *rand.Rand) *manifest.Collection {
	coll := manifest.NewCollection("pkg")
	n := 1 + rng.IntN(12)
	for i := 0; i < n; i++ {
		v := fmt.Sprintf("%d.%d.%d%s", rng.IntN(4), rng.IntN(4), rng.IntN(4), suffixes[rng.IntN(len(suffixes))])
		coll.Versions[v] = testutil.Package("pkg", v, compilerReqs[rng.IntN(len(compilerReqs))])
	}
	return coll
}

// eligible returns the candidates passing the compiler filter and range
// under the same rules Choose uses.
func eligible(t *testing.T, s *Selector, coll *manifest.Collection, c Constraint) []string {
	t.Helper()
	var out []string
	for v, m := range coll.Versions {
		if c.CompilerVersion != "" {
			ok, err := s.Ranges.Satisfies(c.CompilerVersion, m.CompilerConstraint())
			require.NoError(t, err)
			if !ok {
				continue
			}
		}
		view, err := version.RangeView(v)
		require.NoError(t, err)
		ok, err := s.Ranges.Satisfies(view, c.VersionRange)
		require.NoError(t, err)
		if ok {
			out = append(out, v)
		}
	}
	return out
}

func TestChooseProperties(t *testing.T) {
	s := NewSelector()
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 300; i++ {
		coll := randomCollection(rng)
		c := Constraint{
			VersionRange:    anyRangeSetup[rng.IntN(len(anyRangeSetup))],
			CompilerVersion: compilers[rng.IntN(len(compilers))],
		}

		got, ok, err := s.Choose("pkg", coll, c)
		require.NoError(t, err)

		// Determinism.
		again, okAgain, err := s.Choose("pkg", coll, c)
		require.NoError(t, err)
		require.Equal(t, got, again)
		require.Equal(t, ok, okAgain)

		pool := eligible(t, s, coll, c)
		if !ok {
			require.Empty(t, pool, "no match reported but %v are eligible (constraint %+v)", pool, c)
			continue
		}

		// Compiler filter: the choice is compatible with the compiler.
		if c.CompilerVersion != "" {
			compatible, err := s.Ranges.Satisfies(c.CompilerVersion, coll.Versions[got].CompilerConstraint())
			require.NoError(t, err)
			require.True(t, compatible, "%s chosen but incompatible with %s", got, c.CompilerVersion)
		}

		// Highest first: nothing eligible outranks the choice.
		require.Contains(t, pool, got)
		for _, v := range pool {
			require.LessOrEqual(t, version.CompareOpam(v, got), 0, "%s eligible and above chosen %s", v, got)
		}
	}
}

func TestChooseMonotoneRangeWidening(t *testing.T) {
	s := NewSelector()
	rng := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 300; i++ {
		coll := randomCollection(rng)
		pair := nestedRanges[rng.IntN(len(nestedRanges))]
		compiler := compilers[rng.IntN(len(compilers))]

		narrow, ok, err := s.Choose("pkg", coll, Constraint{VersionRange: pair[0], CompilerVersion: compiler})
		require.NoError(t, err)
		if !ok {
			continue
		}

		wide, ok, err := s.Choose("pkg", coll, Constraint{VersionRange: pair[1], CompilerVersion: compiler})
		require.NoError(t, err)
		require.True(t, ok, "%s matched %s but nothing matched wider %s", narrow, pair[0], pair[1])
		require.GreaterOrEqual(t, version.CompareOpam(wide, narrow), 0,
			"widening %s to %s moved the choice down from %s to %s", pair[0], pair[1], narrow, wide)
	}
}
