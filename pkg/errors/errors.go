package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeIndexRange    ErrorType = "index_out_of_range"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeNetwork       ErrorType = "network"
	ErrorTypeAuth          ErrorType = "auth"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeServerError   ErrorType = "server_error"
	ErrorTypeAPI           ErrorType = "api"
)

// CodeRateLimitExceeded is the API error code sent alongside HTTP 429.
const CodeRateLimitExceeded = 88

// Error is the typed error used across twharvest.
type Error struct {
	Type    ErrorType
	Message string
	// Code is the HTTP status, 0 when no response was received.
	Code int
	// APICode is the numeric code from the API error body, if any.
	APICode int
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Type) + " error"
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.APICode != 0 {
		msg += fmt.Sprintf(" [api %d]", e.APICode)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration reports unusable startup configuration, such as an empty credential source.
func Configuration(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// WrapConfiguration is Configuration with an underlying cause.
func WrapConfiguration(err error, format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeConfiguration, Message: fmt.Sprintf(format, args...), Err: err}
}

// IndexOutOfRange reports an invalid credential pool index.
func IndexOutOfRange(index, length int) *Error {
	return &Error{
		Type:    ErrorTypeIndexRange,
		Message: fmt.Sprintf("index %d outside [0, %d)", index, length),
	}
}

// RateLimited reports an upstream quota exhaustion signal.
func RateLimited(message string, apiCode int) *Error {
	return &Error{
		Type:    ErrorTypeRateLimit,
		Message: message,
		Code:    http.StatusTooManyRequests,
		APICode: apiCode,
	}
}

// Network wraps a transport failure.
func Network(err error) *Error {
	return &Error{Type: ErrorTypeNetwork, Message: "request failed", Err: err}
}

// Parsing wraps a malformed response.
func Parsing(message string, err error) *Error {
	return &Error{Type: ErrorTypeParsing, Message: message, Err: err}
}

// FromStatus maps an HTTP status and API error body to a typed error.
func FromStatus(status, apiCode int, message string) *Error {
	e := &Error{Code: status, APICode: apiCode, Message: message}
	switch {
	case status == http.StatusTooManyRequests || apiCode == CodeRateLimitExceeded:
		e.Type = ErrorTypeRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Type = ErrorTypeAuth
	case status == http.StatusNotFound:
		e.Type = ErrorTypeNotFound
	case status >= 500:
		e.Type = ErrorTypeServerError
	default:
		e.Type = ErrorTypeAPI
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func as(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// TypeOf returns the ErrorType of err, or "" when err is not a typed error.
func TypeOf(err error) ErrorType {
	if e, ok := as(err); ok {
		return e.Type
	}
	return ""
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	return TypeOf(err) == ErrorTypeConfiguration
}

// IsIndexOutOfRange reports whether err is an invalid pool index.
func IsIndexOutOfRange(err error) bool {
	return TypeOf(err) == ErrorTypeIndexRange
}

// IsRateLimit reports whether err signals quota exhaustion.
func IsRateLimit(err error) bool {
	e, ok := as(err)
	if !ok {
		return false
	}
	return e.Type == ErrorTypeRateLimit ||
		e.Code == http.StatusTooManyRequests ||
		e.APICode == CodeRateLimitExceeded
}

// IsTransient reports whether err is a recoverable upstream failure other than rate limiting.
func IsTransient(err error) bool {
	if IsRateLimit(err) {
		return false
	}
	switch TypeOf(err) {
	case ErrorTypeNetwork, ErrorTypeServerError, ErrorTypeAPI,
		ErrorTypeParsing, ErrorTypeAuth, ErrorTypeNotFound:
		return true
	default:
		return false
	}
}

// IsRetryable checks if an error should be retried at the transport layer
// given the set of retryable HTTP statuses.
func IsRetryable(err error, statuses []int) bool {
	e, ok := as(err)
	if !ok {
		return false
	}
	if e.Type == ErrorTypeNetwork {
		return true
	}
	if e.Type == ErrorTypeRateLimit {
		return false
	}
	return IsRetryableStatusCode(e.Code, statuses)
}

// IsRetryableStatusCode checks if an HTTP status code is in the retry set
func IsRetryableStatusCode(statusCode int, statuses []int) bool {
	for _, s := range statuses {
		if s == statusCode {
			return true
		}
	}
	return false
}
