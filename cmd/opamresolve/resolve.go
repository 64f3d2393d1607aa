package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tsukumogami/opamresolve/internal/config"
	"github.com/tsukumogami/opamresolve/internal/lockfile"
	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/progress"
	"github.com/tsukumogami/opamresolve/internal/resolver"
)

// maxParallelResolves bounds concurrent resolutions in one invocation.
const maxParallelResolves = 8

var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier>...",
	Short: "Resolve identifiers to concrete package versions",
	Long: `Resolve one or more @opam/ identifiers and print the chosen versions.

A bare name resolves in the configured scope, and an identifier without a
range resolves to the highest compatible version.

Examples:
  opamresolve resolve @opam/dune@^3.0.0
  opamresolve resolve dune fmt@^0.9.0 --ocaml 4.14.1
  opamresolve resolve @opam/lwt@^5.0.0 --lockfile opamresolve.lock
  opamresolve resolve @opam/fmt@^0.9.0 --parent app --parent lib --json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ocaml, _ := cmd.Flags().GetString("ocaml")
		lockPath, _ := cmd.Flags().GetString("lockfile")
		parents, _ := cmd.Flags().GetStringArray("parent")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		s, err := loadSettings(ocaml)
		if err != nil {
			fail(err, "")
		}
		sess, err := newSession(s)
		if err != nil {
			printError(err, "")
			exitWithCode(ExitUsage)
		}

		var lock resolver.LockLookup
		if lockPath != "" {
			lf, err := lockfile.Load(lockPath)
			if err != nil {
				fail(err, "")
			}
			lock = lf
		}

		patterns := make([]string, len(args))
		for i, arg := range args {
			patterns[i] = normalizeIdentifier(s.Scope, arg)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.GetFetchTimeout())
		defer cancel()

		results, err := resolveAll(ctx, sess.table, patterns, resolver.Request{
			Parents:         reverse(parents),
			CompilerVersion: s.OCamlVersion,
			Lock:            lock,
		})
		if err != nil {
			pkg := ""
			if len(patterns) == 1 {
				pkg = sess.resolver.Parse(patterns[0]).Name
			}
			fail(err, pkg)
		}

		if jsonOutput {
			printJSON(results)
			return
		}
		for i, m := range results {
			fmt.Printf("%s %s@%s\n", patterns[i], m.Name, m.Version)
		}
	},
}

// resolveAll resolves every pattern with the shared request fields in
// base, keeping results in pattern order. The first failure cancels the
// rest.
func resolveAll(ctx context.Context, table *resolver.Table, patterns []string, base resolver.Request) ([]*manifest.Manifest, error) {
	results := make([]*manifest.Manifest, len(patterns))

	status := progress.NewStatus(os.Stderr, "Resolving", len(patterns))
	if !quietFlag {
		status.Start()
	}
	defer status.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelResolves)
	for i, pattern := range patterns {
		g.Go(func() error {
			status.Begin(pattern)
			req := base
			req.Pattern = pattern
			m, err := table.Resolve(ctx, req)
			if err != nil {
				return err
			}
			results[i] = m
			status.Done()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reverse turns the command-line parent list, written root first, into
// the nearest-first order requests record.
func reverse(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func init() {
	resolveCmd.Flags().String("ocaml", "", "Installed OCaml compiler version (filters incompatible versions)")
	resolveCmd.Flags().String("lockfile", "", "Lockfile whose entries are used as is")
	resolveCmd.Flags().StringArray("parent", nil, "Requesting package, root first (repeatable)")
	resolveCmd.Flags().Bool("json", false, "Output resolved manifests as JSON")
}
