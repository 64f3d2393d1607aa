package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/opamresolve/internal/lockfile"
)

var checkCmd = &cobra.Command{
	Use:   "check <lockfile>",
	Short: "Find lockfile entries that must be resolved again",
	Long: `Check every opam entry of a lockfile against the range in its identifier
and the compiler version. An entry is stale when a fresh resolution could
no longer pick it. Entries outside the configured scope are skipped.

Exits with code 9 when any entry is stale.

Examples:
  opamresolve check opamresolve.lock
  opamresolve check opamresolve.lock --ocaml 5.1.0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ocaml, _ := cmd.Flags().GetString("ocaml")

		s, err := loadSettings(ocaml)
		if err != nil {
			fail(err, "")
		}
		sess, err := newSession(s)
		if err != nil {
			printError(err, "")
			exitWithCode(ExitUsage)
		}

		lf, err := lockfile.Load(args[0])
		if err != nil {
			fail(err, "")
		}

		stale, err := lf.Stale(sess.resolver, s.OCamlVersion)
		if err != nil {
			fail(err, "")
		}

		if len(stale) == 0 {
			printInfof("%s: %d entries up to date\n", args[0], len(lf.Entries))
			return
		}

		for _, e := range stale {
			fmt.Printf("stale: %s (locked %s)\n", e.Pattern, e.Version)
		}
		printInfof("\n%d of %d entries must be resolved again\n", len(stale), len(lf.Entries))
		exitWithCode(ExitStale)
	},
}

func init() {
	checkCmd.Flags().String("ocaml", "", "Installed OCaml compiler version")
}
