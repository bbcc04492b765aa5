// Package errors provides the unified error type and factory functions used by
// every layer of SymRxn. Callers classify failures through ErrorCode values
// instead of matching on message text.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// AppError is the single structured error type used throughout SymRxn.
// It supports errors.Is / errors.As / errors.Unwrap across layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodePatternError, "reactant side is empty")
//	return errors.Wrap(err, errors.ErrCodeParseError, "product did not round-trip").
//	           WithDetail("smiles=" + s)
type AppError struct {
	// Code is the typed error code that identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description.
	Message string

	// Detail carries supplementary context such as the offending SMILES.
	Detail string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is the call stack captured at construction. It is not part of Error().
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with a format string.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error. A nil err yields nil.
// When err is already an *AppError and code is CodeUnknown the original code is kept.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// IsCode reports whether any error in err's chain is an *AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err's chain carries CodeNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// GetCode extracts the ErrorCode from the first *AppError in err's chain.
// CodeOK is returned for nil and CodeUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Stack: captureStack(1)}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Stack: captureStack(1)}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Stack: captureStack(1)}
}

// ParseError reports molecule text that could not be parsed. source is the
// offending SMILES or file path.
func ParseError(source string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeParseError,
		Message: DefaultMessageForCode(ErrCodeParseError),
		Detail:  "source=" + source,
		Cause:   cause,
		Stack:   captureStack(1),
	}
}

// PatternError reports a malformed reaction pattern.
func PatternError(pattern, reason string) *AppError {
	return &AppError{
		Code:    ErrCodePatternError,
		Message: reason,
		Detail:  "pattern=" + pattern,
		Stack:   captureStack(1),
	}
}

// InvalidTemplate reports an uninitialized reaction template.
func InvalidTemplate(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidTemplate, Message: message, Stack: captureStack(1)}
}

// AmbiguousAttachment reports an atom with zero or several terminal hydrogens.
func AmbiguousAttachment(atom, hydrogens int) *AppError {
	return &AppError{
		Code:    ErrCodeAmbiguousAttachment,
		Message: DefaultMessageForCode(ErrCodeAmbiguousAttachment),
		Detail:  fmt.Sprintf("atom=%d hydrogens=%d", atom, hydrogens),
		Stack:   captureStack(1),
	}
}

// DegenerateProbeResult reports a probe run that produced anything but one product.
func DegenerateProbeResult(pattern string, products int) *AppError {
	return &AppError{
		Code:    ErrCodeDegenerateProbeResult,
		Message: DefaultMessageForCode(ErrCodeDegenerateProbeResult),
		Detail:  fmt.Sprintf("pattern=%s products=%d", pattern, products),
		Stack:   captureStack(1),
	}
}

//Personal.AI order the ending
