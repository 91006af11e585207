// Package errors provides error handling conventions for the vcinstall CLI.
//
// This package defines sentinel errors for the installer's failure taxonomy,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions. It also re-exports the core
// constructors from cockroachdb/errors so callers only need one import.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, vcerrors.ErrBrewMissing) {
//	    // handle missing package manager
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (environment, I/O, network, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion:
//
//	err := vcerrors.NewEnvironmentError(vcerrors.ErrBrewMissing, "Install Homebrew from https://brew.sh")
//	var exitErr *vcerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
