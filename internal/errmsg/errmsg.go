// Package errmsg provides enhanced error message formatting with actionable suggestions.
package errmsg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsukumogami/opamresolve/internal/lockfile"
	"github.com/tsukumogami/opamresolve/internal/opam"
	"github.com/tsukumogami/opamresolve/internal/repository"
	"github.com/tsukumogami/opamresolve/internal/resolver"
)

// ErrorContext provides additional context for error formatting
type ErrorContext struct {
	Package string // The package being resolved (for suggestions)
}

// Format returns a formatted error message with possible causes and suggestions.
// The context parameter is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	var notFoundErr *opam.DependencyNotFoundError
	if errors.As(err, &notFoundErr) {
		return formatDependencyNotFound(err, notFoundErr)
	}

	var malformedErr *opam.MalformedCandidateVersionError
	if errors.As(err, &malformedErr) {
		return formatMalformedVersion(err, malformedErr)
	}

	var repoErr *repository.Error
	if errors.As(err, &repoErr) {
		return formatRepositoryError(err, repoErr, ctx)
	}

	if errors.Is(err, resolver.ErrNoResolver) {
		return formatNoResolver(err.Error())
	}

	if errors.Is(err, lockfile.ErrUnsupportedFormat) {
		return formatSuggestions(err.Error(),
			[]string{"The lockfile was written by a newer or older tool"},
			[]string{"Regenerate the lockfile with the package manager that owns it"})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return formatSuggestions(err.Error(),
			[]string{"Loading the repository took longer than the fetch timeout"},
			[]string{"Raise OPAMRESOLVE_FETCH_TIMEOUT (for example 5m)"})
	}

	errMsg := err.Error()

	if isNotExistError(errMsg) {
		return formatSuggestions(errMsg,
			[]string{"The repository or lockfile path does not exist", "Typo in the path"},
			[]string{
				"Run 'opamresolve config get repository' to see the configured checkout",
				"Set OPAMRESOLVE_REPOSITORY to an opam repository checkout or snapshot archive",
			})
	}

	if isPermissionError(errMsg) {
		return formatSuggestions(errMsg,
			[]string{"Insufficient permissions on $OPAMRESOLVE_HOME directory", "File or directory owned by different user"},
			[]string{"Check permissions on ~/.opamresolve directory"})
	}

	// Return original error for unrecognized types
	return errMsg
}

// Fprint writes the formatted error to w, prefixed with "Error: ".
func Fprint(w io.Writer, err error, ctx *ErrorContext) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "Error: %s\n", strings.TrimRight(Format(err, ctx), "\n"))
}

func formatDependencyNotFound(err error, e *opam.DependencyNotFoundError) string {
	causes := []string{
		fmt.Sprintf("No published version of %s is inside %s", e.Name, e.VersionRange),
	}
	if e.CompilerVersion != "" {
		causes = append(causes, fmt.Sprintf("Matching versions exist but none declare support for ocaml %s", e.CompilerVersion))
	}
	causes = append(causes, "The repository checkout is out of date")

	suggestions := []string{e.Suggestion()}
	if len(e.Path) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Relax the constraint declared by %s", e.Path[len(e.Path)-1]))
	}
	return formatSuggestions(err.Error(), causes, suggestions)
}

func formatMalformedVersion(err error, e *opam.MalformedCandidateVersionError) string {
	return formatSuggestions(err.Error(),
		[]string{
			fmt.Sprintf("The repository publishes %s version %q that cannot be ordered", e.Name, e.Version),
			"The repository checkout is corrupt or hand edited",
		},
		[]string{e.Suggestion()})
}

func formatRepositoryError(err error, e *repository.Error, ctx *ErrorContext) string {
	var causes []string
	switch e.Type {
	case repository.ErrTypeNotFound:
		causes = []string{"Typo in the package name", "The package is not published in this repository"}
	case repository.ErrTypeInvalidName:
		causes = []string{"The identifier does not name an opam package"}
	case repository.ErrTypeParsing:
		causes = []string{"A manifest.toml in the repository is not valid TOML"}
	case repository.ErrTypeArchive:
		causes = []string{"The snapshot archive is truncated", "The archive extension does not match its compression"}
	case repository.ErrTypeIO:
		causes = []string{"The repository checkout could not be read"}
	}

	var suggestions []string
	if s := e.Suggestion(); s != "" {
		suggestions = append(suggestions, s)
	}
	if e.Type == repository.ErrTypeNotFound && ctx != nil && ctx.Package != "" {
		suggestions = append(suggestions, fmt.Sprintf("Run 'opamresolve versions %s' against another checkout with --repository", ctx.Package))
	}
	return formatSuggestions(err.Error(), causes, suggestions)
}

func formatNoResolver(errMsg string) string {
	return formatSuggestions(errMsg,
		[]string{"The identifier is not in the configured scope", "The range after the last '@' is not a valid range expression"},
		[]string{
			"Write identifiers as @opam/<name>@<range>, for example @opam/dune@^3.0.0",
			"Run 'opamresolve config get scope' to see the configured scope",
		})
}

func formatSuggestions(msg string, causes, suggestions []string) string {
	var sb strings.Builder
	sb.WriteString(msg)
	sb.WriteString("\n")

	if len(causes) > 0 {
		sb.WriteString("\nPossible causes:\n")
		for _, c := range causes {
			sb.WriteString("  - " + c + "\n")
		}
	}

	if len(suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, s := range suggestions {
			sb.WriteString("  - " + s + "\n")
		}
	}

	return sb.String()
}

// isNotExistError checks if the error message indicates a missing path
func isNotExistError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "no such file or directory") ||
		strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "cannot find the path")
}

// isPermissionError checks if the error message indicates a permission issue
func isPermissionError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "operation not permitted")
}
