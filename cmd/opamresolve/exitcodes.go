package main

import (
	"errors"
	"os"

	"github.com/tsukumogami/opamresolve/internal/opam"
	"github.com/tsukumogami/opamresolve/internal/repository"
	"github.com/tsukumogami/opamresolve/internal/resolver"
)

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 2

	// ExitPackageNotFound indicates the package is not in the repository
	ExitPackageNotFound = 3

	// ExitVersionNotFound indicates no version satisfies the request
	ExitVersionNotFound = 4

	// ExitRepository indicates the repository could not be read
	ExitRepository = 5

	// ExitMalformedVersion indicates the repository publishes an unorderable version
	ExitMalformedVersion = 6

	// ExitStale indicates the lockfile holds entries that must be resolved again
	ExitStale = 9
)

// exitCodeFor maps an error to the exit code scripts can test for.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var notFoundErr *opam.DependencyNotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitVersionNotFound
	}

	var malformedErr *opam.MalformedCandidateVersionError
	if errors.As(err, &malformedErr) {
		return ExitMalformedVersion
	}

	var repoErr *repository.Error
	if errors.As(err, &repoErr) {
		switch repoErr.Type {
		case repository.ErrTypeNotFound, repository.ErrTypeInvalidName:
			return ExitPackageNotFound
		default:
			return ExitRepository
		}
	}

	if errors.Is(err, resolver.ErrNoResolver) {
		return ExitUsage
	}

	return ExitGeneral
}

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}
