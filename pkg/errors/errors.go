package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Harness errors
var (
	ErrKeyNotFound       = errors.New("scenario key not found")
	ErrKeyType           = errors.New("scenario value has unexpected type")
	ErrEventNotFound     = errors.New("event not raised")
	ErrUnexpectedEvent   = errors.New("unexpected event raised")
	ErrEventDataMismatch = errors.New("event data mismatch")
	ErrTableMismatch     = errors.New("table does not match")
	ErrInvalidTable      = errors.New("invalid data table")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnknownProduct    = errors.New("unknown loan product")
	ErrPlatformNotReady  = errors.New("platform not ready")
	ErrLoanLocked        = errors.New("loan is locked")
	ErrRunInProgress     = errors.New("suite run already in progress")
)

// HarnessError represents a failed step with a stable code
type HarnessError struct {
	Code    string
	Message string
	Err     error
}

func (e *HarnessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *HarnessError) Unwrap() error {
	return e.Err
}

// NewHarnessError creates a new harness error
func NewHarnessError(code, message string, err error) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeKeyNotFound       = "KEY_NOT_FOUND"
	ErrCodeKeyType           = "KEY_TYPE"
	ErrCodeEventNotFound     = "EVENT_NOT_FOUND"
	ErrCodeUnexpectedEvent   = "UNEXPECTED_EVENT"
	ErrCodeEventDataMismatch = "EVENT_DATA_MISMATCH"
	ErrCodeTableMismatch     = "TABLE_MISMATCH"
	ErrCodeInvalidTable      = "INVALID_TABLE"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeUnknownProduct    = "UNKNOWN_PRODUCT"
	ErrCodePlatformNotReady  = "PLATFORM_NOT_READY"
	ErrCodeLoanLocked        = "LOAN_LOCKED"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeRunInProgress     = "RUN_IN_PROGRESS"
)

func WrapKeyNotFound(key string) *HarnessError {
	return NewHarnessError(
		ErrCodeKeyNotFound,
		fmt.Sprintf("no value stored under %q in the scenario context", key),
		ErrKeyNotFound,
	)
}

func WrapKeyType(key string, want, got any) *HarnessError {
	return NewHarnessError(
		ErrCodeKeyType,
		fmt.Sprintf("value under %q is %T, expected %T", key, got, want),
		ErrKeyType,
	)
}

func WrapEventNotFound(eventType string, aggregateID int64, seen []string) *HarnessError {
	msg := fmt.Sprintf("%s for aggregate %d was not raised", eventType, aggregateID)
	if len(seen) > 0 {
		msg += "; seen for aggregate: " + strings.Join(seen, ", ")
	}
	return NewHarnessError(ErrCodeEventNotFound, msg, ErrEventNotFound)
}

func WrapUnexpectedEvent(eventType string, aggregateID int64) *HarnessError {
	return NewHarnessError(
		ErrCodeUnexpectedEvent,
		fmt.Sprintf("%s for aggregate %d was raised but should not have been", eventType, aggregateID),
		ErrUnexpectedEvent,
	)
}

func WrapEventDataMismatch(eventType, path string, expected, actual any) *HarnessError {
	return NewHarnessError(
		ErrCodeEventDataMismatch,
		fmt.Sprintf("%s: %s expected %v but was %v", eventType, path, expected, actual),
		ErrEventDataMismatch,
	)
}

func WrapTableMismatch(what string, problems []string) *HarnessError {
	return NewHarnessError(
		ErrCodeTableMismatch,
		fmt.Sprintf("%s does not match:\n  %s", what, strings.Join(problems, "\n  ")),
		ErrTableMismatch,
	)
}

func WrapInvalidTable(reason string) *HarnessError {
	return NewHarnessError(ErrCodeInvalidTable, reason, ErrInvalidTable)
}

func WrapInvalidRequest(request string, err error) *HarnessError {
	return NewHarnessError(
		ErrCodeInvalidRequest,
		fmt.Sprintf("%s failed validation", request),
		errors.Join(ErrInvalidRequest, err),
	)
}

func WrapUnknownProduct(name string) *HarnessError {
	return NewHarnessError(
		ErrCodeUnknownProduct,
		fmt.Sprintf("loan product %q does not exist on the platform", name),
		ErrUnknownProduct,
	)
}

func WrapPlatformNotReady(err error) *HarnessError {
	return NewHarnessError(
		ErrCodePlatformNotReady,
		"platform did not become ready",
		errors.Join(ErrPlatformNotReady, err),
	)
}

func WrapLoanLocked(loanID int64, lockOwner string) *HarnessError {
	return NewHarnessError(
		ErrCodeLoanLocked,
		fmt.Sprintf("loan %d is still locked by %s", loanID, lockOwner),
		ErrLoanLocked,
	)
}

func WrapRunInProgress(startedAt time.Time) *HarnessError {
	return NewHarnessError(
		ErrCodeRunInProgress,
		fmt.Sprintf("a suite run started at %s is still going", startedAt.Format(time.RFC3339)),
		ErrRunInProgress,
	)
}

func WrapDatabaseError(err error) *HarnessError {
	return NewHarnessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

// APIError is a non-2xx answer from the platform, decoded from its error body
type APIError struct {
	Method     string `json:"-"`
	Path       string `json:"-"`
	StatusCode int    `json:"-"`

	DeveloperMessage   string        `json:"developerMessage"`
	DefaultUserMessage string        `json:"defaultUserMessage"`
	GlobalisationCode  string        `json:"userMessageGlobalisationCode"`
	Errors             []APIErrorArg `json:"errors"`
}

// APIErrorArg is one entry of the platform's errors[] list
type APIErrorArg struct {
	DeveloperMessage   string `json:"developerMessage"`
	DefaultUserMessage string `json:"defaultUserMessage"`
	GlobalisationCode  string `json:"userMessageGlobalisationCode"`
	ParameterName      string `json:"parameterName"`
}

func (e *APIError) Error() string {
	msg := e.DeveloperMessage
	if len(e.Errors) > 0 && e.Errors[0].DeveloperMessage != "" {
		msg = e.Errors[0].DeveloperMessage
	}
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Codes returns the globalisation codes of the error and its entries
func (e *APIError) Codes() []string {
	var codes []string
	if e.GlobalisationCode != "" {
		codes = append(codes, e.GlobalisationCode)
	}
	for _, arg := range e.Errors {
		if arg.GlobalisationCode != "" {
			codes = append(codes, arg.GlobalisationCode)
		}
	}
	return codes
}

// HasCode reports whether any globalisation code equals code
func (e *APIError) HasCode(code string) bool {
	for _, c := range e.Codes() {
		if c == code {
			return true
		}
	}
	return false
}

// AsAPIError unwraps err into an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
