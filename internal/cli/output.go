package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The request ran but failed: providers exhausted, health check failed
	ExitCommandError = 2 // Command error: bad flags, unreadable config, invalid request
)

// ExitError carries the exit code a command should terminate with.
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, ExitFailure for plain errors.
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

// CLIResponse is the JSON document printed with --format json.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success prints data, using text to render it in text mode.
func (f *OutputFormatter) Success(data interface{}, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Failure prints an error that still carries data, then returns an ExitError.
func (f *OutputFormatter) Failure(exitCode int, code, message string, data interface{}, text func(w io.Writer)) error {
	if f.Format == "json" {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   data,
			Error:  &CLIError{Code: code, Message: message},
		}); err != nil {
			return err
		}
	} else {
		if text != nil {
			text(f.Writer)
		}
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	}
	return NewExitError(exitCode, message)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func renderDispatch(w io.Writer, r *types.DispatchResult) {
	if r.Success {
		fmt.Fprintf(w, "%-10s %s\n", "Provider:", r.ProviderKey)
		fmt.Fprintf(w, "%-10s %s\n", "Model:", r.Model)
		fmt.Fprintf(w, "%-10s %t\n", "Fallback:", r.FallbackUsed)
	}
	fmt.Fprintf(w, "%-10s %d\n", "Attempts:", len(r.Attempts))
	for _, a := range r.Attempts {
		line := fmt.Sprintf("  %s #%d %s %dms", a.ProviderKey, a.AttemptNumber, a.Outcome, a.DurationMs)
		if a.ErrorType != "" {
			line += fmt.Sprintf(" [%s] %s", a.ErrorType, a.ErrorMessage)
		}
		fmt.Fprintln(w, line)
	}
	if r.Success {
		fmt.Fprintf(w, "\n%s\n", r.Content)
	}
}

func renderTest(w io.Writer, r types.TestResult) {
	status := "OK"
	if !r.Success {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s (%dms): %s\n", status, r.ProviderKey, r.LatencyMs, r.Message)
	if r.ErrorType != "" {
		fmt.Fprintf(w, "  error type: %s\n", r.ErrorType)
	}
}

func renderStats(w io.Writer, s *types.Stats) {
	fallback := s.MostUsedFallback
	if fallback == "" {
		fallback = "-"
	}

	fmt.Fprintf(w, "%-24s %d days\n", "Window:", s.WindowDays)
	fmt.Fprintf(w, "%-24s %d\n", "Total requests:", s.TotalRequests)
	fmt.Fprintf(w, "%-24s %d\n", "Successful requests:", s.SuccessfulRequests)
	fmt.Fprintf(w, "%-24s %d\n", "Contingency activations:", s.ContingencyActivations)
	fmt.Fprintf(w, "%-24s %s\n", "Most used fallback:", fallback)

	if len(s.ProviderFailures) == 0 {
		fmt.Fprintf(w, "%-24s %s\n", "Provider failures:", "none")
		return
	}
	fmt.Fprintln(w, "Provider failures:")
	keys := make([]string, 0, len(s.ProviderFailures))
	for k := range s.ProviderFailures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-22s %d\n", k+":", s.ProviderFailures[k])
	}
}

func renderProviders(w io.Writer, list []backendtypes.ProviderInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE\tMODEL\tPRIORITY\tENABLED\tAVAILABLE")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%t\n", p.Key, p.Type, p.Model, p.Priority, p.Enabled, p.Available)
	}
	_ = tw.Flush()
}
