package cli

// This file defines error handling utilities for the CLI, including:
//   - Sentinel errors, each bound to a noexcept code
//   - Wrapping helpers that pair a sentinel with a coded error
//   - Structured error logging
//   - Debug mode management for error output

import (
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"noexcept/pkg/noexcept"
)

var (
	debugMode   bool
	debugModeMu sync.RWMutex
)

// SetDebugMode sets the global debug mode flag.
// When enabled, logStructuredError will output structured error logs to terminal.
func SetDebugMode(enabled bool) {
	debugModeMu.Lock()
	defer debugModeMu.Unlock()
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled.
func IsDebugMode() bool {
	debugModeMu.RLock()
	defer debugModeMu.RUnlock()
	return debugMode
}

// CLI error codes follow a 5-digit scheme where the first two digits are the
// domain and the last three digits are reserved for subcodes.
const (
	CodeCLI    noexcept.Code = 70000
	CodeConfig noexcept.Code = 79000
)

// cliErrors owns the codes of the CLI's own failures. It is separate from the
// module the commands operate on, so user catalogs never collide with it.
var cliErrors = func() *noexcept.Module {
	m := noexcept.NewModule()
	m.Likey(CodeCLI, "CLI/argument validation error")
	m.Likey(CodeConfig, "Configuration error")
	return m
}()

// newSentinelError creates a sentinel error and registers its code in one step.
func newSentinelError(msg string, code noexcept.Code) error {
	err := errors.New(msg)
	errorCodes[err] = code
	return err
}

// errorCodes maps sentinel errors to their codes.
// Must be declared before sentinel errors to ensure proper initialization order.
var errorCodes = make(map[error]noexcept.Code)

func codeFor(base error) noexcept.Code {
	if code, ok := errorCodes[base]; ok {
		return code
	}
	return CodeCLI
}

// Sentinel errors for CLI operations.
var (
	// CLI errors.
	ErrCodeRequired           = newSentinelError("code is required", CodeCLI)
	ErrInvalidCode            = newSentinelError("invalid code", CodeCLI)
	ErrUnknownOutputFormat    = newSentinelError("unknown output format", CodeCLI)
	ErrControlCharsNotAllowed = newSentinelError("value must not contain control characters", CodeCLI)

	// Configuration errors.
	ErrLoadCatalogFailed   = newSentinelError("failed to load catalog", CodeConfig)
	ErrExportCatalogFailed = newSentinelError("failed to export catalog", CodeConfig)
)

// sentinelError pairs a sentinel with the coded error describing one failure.
// errors.Is matches the sentinel; noexcept helpers see the coded error.
type sentinelError struct {
	base  error
	coded *noexcept.Error
}

func (e *sentinelError) Error() string {
	return noexcept.UserString(e.coded)
}

func (e *sentinelError) Unwrap() []error {
	return []error{e.base, e.coded}
}

// newWithSentinel creates an error coded after base with msg as its message.
func newWithSentinel(base error, msg string) error {
	return wrapWithSentinel(base, nil, msg)
}

// wrapWithSentinel is newWithSentinel linking cause to the coded error.
func wrapWithSentinel(base, cause error, msg string) error {
	coded, err := cliErrors.Build().
		WithCode(codeFor(base), msg).
		WithLinkedCause(cause).
		Build()
	if err != nil {
		return err
	}
	if base == nil {
		return coded
	}
	return &sentinelError{base: base, coded: coded}
}

// logStructuredError logs an error with structured fields to terminal.
// Only logs when debug mode is enabled (via --debug flag).
//
// For coded errors it logs:
// - error.codes: "[70000]"
// - error.messages: ["CLI/argument validation error", "code is required"]
// - error.linked.N: "*errors.errorString: boom @ unknown"
func logStructuredError(logger *zap.Logger, err error, msg string) {
	if logger == nil || err == nil || !IsDebugMode() {
		return
	}

	var coded *noexcept.Error
	if errors.As(err, &coded) {
		fields := []zap.Field{
			zap.String("error.codes", codesHeader(coded.Codes())),
			zap.Strings("error.messages", coded.Messages()),
			zap.Error(err),
		}
		for i, linked := range coded.Linked() {
			fields = append(fields, zap.String("error.linked."+strconv.Itoa(i), linked.String()))
		}
		logger.Error(msg, fields...)
	} else {
		// Fallback for uncoded errors
		logger.Error(msg, zap.Error(err))
	}
}
