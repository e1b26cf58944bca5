package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation ran and reported failure
	ExitCommandError = 2 // bad arguments, config or environment
)

// ExitError carries the process exit code for a failed command.
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

// GetExitCode extracts the exit code from err, defaulting to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

// parseDocument decodes a JSON argument; "-" reads from in.
func parseDocument(arg string, in io.Reader) (any, error) {
	var raw []byte
	if arg == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "read stdin", err)
		}
		raw = data
	} else {
		raw = []byte(arg)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, NewExitError(ExitCommandError, "document JSON is empty")
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid document JSON", err)
	}
	return value, nil
}

// splitAssignment parses name=value flag values.
func splitAssignment(flag, raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", NewExitError(ExitCommandError, fmt.Sprintf("--%s expects name=value, got %q", flag, raw))
	}
	return name, value, nil
}
