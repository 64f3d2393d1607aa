package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/opamresolve/internal/config"
	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/opam"
	"github.com/tsukumogami/opamresolve/internal/version"
)

// versionInfo is one row of the versions listing.
type versionInfo struct {
	Version    string `json:"version"`
	OCaml      string `json:"ocaml"`
	Compatible bool   `json:"compatible"`
	Malformed  bool   `json:"malformed,omitempty"`
}

var versionsCmd = &cobra.Command{
	Use:   "versions <name>",
	Short: "List published versions of a package",
	Long: `List every version of an opam package in the repository, highest first,
in opam's ordering. With --ocaml, versions that do not declare support for
that compiler are marked.

Examples:
  opamresolve versions dune
  opamresolve versions fmt --ocaml 4.14.1 --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		ocaml, _ := cmd.Flags().GetString("ocaml")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		s, err := loadSettings(ocaml)
		if err != nil {
			fail(err, name)
		}
		sess, err := newSession(s)
		if err != nil {
			printError(err, name)
			exitWithCode(ExitUsage)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.GetFetchTimeout())
		defer cancel()

		coll, err := sess.collection(ctx, name)
		if err != nil {
			fail(err, name)
		}

		infos, err := listVersions(sess.resolver.Selector(), coll, s.OCamlVersion)
		if err != nil {
			fail(err, name)
		}

		if jsonOutput {
			type versionsOutput struct {
				Name     string        `json:"name"`
				OCaml    string        `json:"ocaml,omitempty"`
				Versions []versionInfo `json:"versions"`
			}
			printJSON(versionsOutput{Name: name, OCaml: s.OCamlVersion, Versions: infos})
			return
		}

		printInfof("Available versions of %s (%d total):\n\n", name, len(infos))
		for _, v := range infos {
			switch {
			case v.Malformed:
				fmt.Printf("  %s  (malformed)\n", v.Version)
			case !v.Compatible:
				fmt.Printf("  %s  (requires ocaml %s)\n", v.Version, v.OCaml)
			default:
				fmt.Printf("  %s\n", v.Version)
			}
		}
	},
}

// collection fetches name's versions with overrides attached.
func (s *session) collection(ctx context.Context, name string) (*manifest.Collection, error) {
	overlays, err := s.overrides.Overrides(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := s.repos.Repository(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Manifests(ctx, name, overlays)
}

// listVersions orders coll by precedence and marks each version's
// compatibility with compilerVersion. Malformed versions are listed,
// not rejected, so the listing can point at them.
func listVersions(sel *opam.Selector, coll *manifest.Collection, compilerVersion string) ([]versionInfo, error) {
	sorted := version.SortDescending(coll.Raw(), sel.Precedence.Compare)
	infos := make([]versionInfo, 0, len(sorted))
	for _, v := range sorted {
		m := coll.Versions[v]
		info := versionInfo{Version: v, OCaml: m.CompilerConstraint(), Compatible: true}
		if sel.Precedence.Validate(v) != nil {
			info.Malformed = true
		} else if _, err := version.RangeView(v); err != nil {
			info.Malformed = true
		}
		if compilerVersion != "" {
			ok, err := sel.Ranges.Satisfies(compilerVersion, info.OCaml)
			if err != nil {
				return nil, fmt.Errorf("checking %s@%s against compiler %s: %w", coll.Name, v, compilerVersion, err)
			}
			info.Compatible = ok
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func init() {
	versionsCmd.Flags().String("ocaml", "", "Installed OCaml compiler version (marks incompatible versions)")
	versionsCmd.Flags().Bool("json", false, "Output in JSON format")
}
