package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/mergers/internal/merger"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a merge went wrong or scenarios failed
	ExitCommandError = 2 // the command could not run: bad config, unreadable input, missing database
)

// Error codes carried in JSON error responses. Fatal merge errors use
// "E_" followed by the merger.RuntimeErrorCode instead.
const (
	ErrCodeConfigFormat  = "E_CONFIG_FORMAT"
	ErrCodeConfigInvalid = "E_CONFIG_INVALID"
	ErrCodeEngine        = "E_ENGINE"
	ErrCodeTestFailed    = "E_TEST_FAILED"
)

// ExitError is returned by commands to choose the process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as one JSON response.
type OutputFormatter struct {
	Format string
	Writer io.Writer
	// ErrWriter receives verbose diagnostics so they never mix with a JSON
	// response. Writer is used when it is nil.
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes a failed command.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// MergeErrorDetails is attached to responses for fatal merge errors.
type MergeErrorDetails struct {
	Code   merger.RuntimeErrorCode `json:"code"`
	Source string                  `json:"source,omitempty"`
}

// Success writes a result. In text mode a fmt.Stringer prints itself
// verbatim, anything else is printed on its own line.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if t, ok := data.(fmt.Stringer); ok {
		_, err := fmt.Fprint(f.Writer, t.String())
		return err
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a failure. Details are printed in text mode only when
// verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	if _, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if f.Verbose && details != nil {
		_, err := fmt.Fprintf(f.Writer, "Details: %v\n", details)
		return err
	}
	return nil
}

// MergeFailure reports a fatal merge error and returns it as an
// ExitFailure. A text-mode caller gets only the returned error, which
// main prints.
func (f *OutputFormatter) MergeFailure(err error) error {
	if f.Format == "json" {
		code, details := ErrCodeEngine, any(nil)
		var re *merger.RuntimeError
		if errors.As(err, &re) {
			code = "E_" + string(re.Code)
			details = MergeErrorDetails{Code: re.Code, Source: string(re.Source)}
		}
		if outErr := f.Error(code, err.Error(), details); outErr != nil {
			return outErr
		}
	}
	return WrapExitError(ExitFailure, "engine error", err)
}

// VerboseLog writes a diagnostic line when verbose output is on.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
