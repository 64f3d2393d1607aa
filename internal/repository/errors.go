package repository

import "fmt"

// ErrorType classifies repository errors for better handling
type ErrorType int

const (
	// ErrTypeNotFound indicates the package is not in the repository
	ErrTypeNotFound ErrorType = iota
	// ErrTypeInvalidName indicates a package name that cannot be looked up
	ErrTypeInvalidName
	// ErrTypeParsing indicates a manifest that could not be decoded
	ErrTypeParsing
	// ErrTypeArchive indicates a snapshot archive that could not be read
	ErrTypeArchive
	// ErrTypeIO indicates a filesystem error reading the checkout
	ErrTypeIO
)

// Error provides structured error information for repository operations
type Error struct {
	Type    ErrorType
	Package string // Package name that caused the error, if any
	Message string // Human-readable error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("opam repository: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("opam repository: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support
func (e *Error) Unwrap() error {
	return e.Err
}

// Suggestion returns an actionable suggestion for the user based on the error type.
// Returns an empty string if no specific suggestion is available.
func (e *Error) Suggestion() string {
	switch e.Type {
	case ErrTypeNotFound:
		return "Check the package name, or point OPAMRESOLVE_REPOSITORY at a newer repository checkout"
	case ErrTypeInvalidName:
		return "opam package names contain only letters, digits, '-', '_' and '+'"
	case ErrTypeParsing:
		return "The repository contains a malformed manifest; regenerate the checkout"
	case ErrTypeArchive:
		return "Snapshot archives must be .tar, .tar.gz, .tar.xz, .tar.zst or .tar.lz"
	default:
		return ""
	}
}

func notFound(name string) *Error {
	return &Error{
		Type:    ErrTypeNotFound,
		Package: name,
		Message: fmt.Sprintf("package %q not found", name),
	}
}
