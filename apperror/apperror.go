package apperror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HTTPError is the canonical error envelope written for every failed request.
type HTTPError struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPError: status=%d, message=%s", e.Status, e.Message)
}

func New(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func BadRequest(message string) *HTTPError      { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *HTTPError    { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *HTTPError       { return New(http.StatusForbidden, message) }
func NotFound(message string) *HTTPError        { return New(http.StatusNotFound, message) }
func Conflict(message string) *HTTPError        { return New(http.StatusConflict, message) }
func TooManyRequests(message string) *HTTPError { return New(http.StatusTooManyRequests, message) }
func Internal(message string) *HTTPError        { return New(http.StatusInternalServerError, message) }

func WithErrors(status int, message string, errs []FieldError) *HTTPError {
	return &HTTPError{Status: status, Message: message, Errors: errs}
}

const pqUniqueViolation = "23505"

// From classifies an arbitrary error. Errors that are already HTTPErrors are
// returned unchanged; anything unknown becomes a 500 carrying its message.
func From(err error) *HTTPError {
	if err == nil {
		return nil
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(http.StatusServiceUnavailable, "Request timed out")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return Conflict("Resource already exists")
	}

	return Internal(err.Error())
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func Write(w http.ResponseWriter, err error) {
	httpErr := From(err)
	if httpErr == nil {
		httpErr = Internal(http.StatusText(http.StatusInternalServerError))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Status)
	json.NewEncoder(w).Encode(httpErr)
}
