package version

import (
	"errors"
	"testing"
)

func TestCompareOpam(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.10.0", "1.9.0", 1},
		{"2.0.0", "1.99.99", 1},
		{"1.0~beta", "1.0", -1},
		{"1.0~beta", "1.0~alpha", 1},
		{"1.0~~", "1.0~", -1},
		{"1.0", "1.0.1", -1},
		{"1.0", "1.0a", -1},
		{"1.0a", "1.0.1", -1},
		{"1.0+1", "1.0", 1},
		{"v0.15.0", "v0.14.2", 1},
		{"0.9.6a", "0.9.6", 1},
		{"4.14.0", "4.14.0~rc1", 1},
		{"1.0", "1.00", 0},
		{"2.0.0-alpha", "1.2.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := CompareOpam(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareOpam(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := CompareOpam(tt.b, tt.a); got != -tt.want {
				t.Errorf("CompareOpam(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestOpamValidate(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"semver", "1.2.3", false},
		{"tilde prerelease", "1.2.3~beta1", false},
		{"plus suffix", "4.14.0+flambda", false},
		{"v prefix", "v0.15.0", false},
		{"underscore", "1_2", false},
		{"empty", "", true},
		{"space", "1.0 beta", true},
		{"slash", "1.0/2", true},
		{"unicode", "1.0é", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Opam{}.Validate(tt.version)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
			if err != nil {
				var mve *MalformedVersionError
				if !errors.As(err, &mve) {
					t.Errorf("expected *MalformedVersionError, got %T", err)
				}
			}
		})
	}
}
