package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tsukumogami/opamresolve/internal/errmsg"
)

// printInfof prints a formatted informational message unless quiet mode is enabled
func printInfof(format string, a ...interface{}) {
	if !quietFlag {
		fmt.Printf(format, a...)
	}
}

// printJSON marshals the given value to JSON and prints it to stdout
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		exitWithCode(ExitGeneral)
	}
}

// printError prints an error to stderr with suggestions if available.
// This uses the errmsg package to format errors with actionable suggestions.
func printError(err error, pkg string) {
	var ctx *errmsg.ErrorContext
	if pkg != "" {
		ctx = &errmsg.ErrorContext{Package: pkg}
	}
	errmsg.Fprint(os.Stderr, err, ctx)
}

// fail prints err and exits with the code matching it.
func fail(err error, pkg string) {
	printError(err, pkg)
	exitWithCode(exitCodeFor(err))
}
