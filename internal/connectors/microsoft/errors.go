package microsoft

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error types for Microsoft Graph API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("microsoft: unauthorised")

	// ErrForbidden indicates the user lacks permission for the requested resource.
	ErrForbidden = errors.New("microsoft: forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("microsoft: not found")

	// ErrConflict indicates the resource was changed or already exists.
	ErrConflict = errors.New("microsoft: conflict")

	// ErrPreconditionFailed indicates an If-Match ETag no longer matches.
	ErrPreconditionFailed = errors.New("microsoft: precondition failed")

	// ErrRateLimited indicates the request was throttled by Microsoft Graph.
	ErrRateLimited = errors.New("microsoft: rate limited")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("microsoft: bad request")

	// ErrServerError indicates a server-side error from Microsoft Graph.
	ErrServerError = errors.New("microsoft: server error")
)

// WrapError converts an HTTP status code to an appropriate error.
func WrapError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusPreconditionFailed:
		return ErrPreconditionFailed
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// GraphError is a non-2xx Graph response. Error returns the service's own
// message so it can be shown to the user unchanged.
type GraphError struct {
	StatusCode int
	Code       string
	Message    string
}

// NewGraphError builds a GraphError from a response status and body.
// Bodies that are not Graph error envelopes leave Code and Message empty.
func NewGraphError(statusCode int, body []byte) *GraphError {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)

	return &GraphError{
		StatusCode: statusCode,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
	}
}

func (e *GraphError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Unwrap returns the sentinel matching the status code.
func (e *GraphError) Unwrap() error {
	return WrapError(e.StatusCode)
}

// IsUnauthorised checks if the status code indicates an authentication failure.
func IsUnauthorised(statusCode int) bool {
	return statusCode == http.StatusUnauthorized
}

// IsRateLimited checks if the status code indicates rate limiting.
func IsRateLimited(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests
}

// IsNotFound checks if the status code indicates a missing resource.
func IsNotFound(statusCode int) bool {
	return statusCode == http.StatusNotFound
}

// IsRetryable checks if the error is potentially transient and can be retried.
func IsRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}
