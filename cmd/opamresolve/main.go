package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tsukumogami/opamresolve/internal/buildinfo"
	"github.com/tsukumogami/opamresolve/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "opamresolve",
	Short: "Resolve @opam/ dependency identifiers to concrete package versions",
	Long: `opamresolve picks the version of an opam package that a package manager
should install for an identifier such as @opam/dune@^3.0.0.

Candidates come from an opam repository checkout or snapshot archive. When
an OCaml compiler version is known, versions that do not declare support
for it are skipped. Versions are ordered the way opam orders them, so
pre-releases like 2.0.0~beta rank below 2.0.0.`,
	Version:       buildinfo.Describe(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetDefault(log.NewCLI(os.Stderr, determineLogLevel()))
	},
}

// determineLogLevel picks the log level from flags, then environment
// variables. More verbose flags win over less verbose ones.
func determineLogLevel() slog.Level {
	switch {
	case debugFlag:
		return slog.LevelDebug
	case verboseFlag:
		return slog.LevelInfo
	case quietFlag:
		return slog.LevelError
	case isTruthy(os.Getenv("OPAMRESOLVE_DEBUG")):
		return slog.LevelDebug
	case isTruthy(os.Getenv("OPAMRESOLVE_VERBOSE")):
		return slog.LevelInfo
	case isTruthy(os.Getenv("OPAMRESOLVE_QUIET")):
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// isTruthy reports whether an environment value enables a setting.
func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print repository and override loading")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print every resolution decision")
	rootCmd.PersistentFlags().StringVar(&repositoryFlag, "repository", "", "opam repository checkout or snapshot archive")
	rootCmd.PersistentFlags().StringVar(&overridesFlag, "overrides", "", "Directory of <package>.toml override files")
	rootCmd.PersistentFlags().StringVar(&scopeFlag, "scope", "", "Identifier prefix handled by the opam resolver")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitUsage)
	}
}
