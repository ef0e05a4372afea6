package artifacts

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrCharacterNotFound is returned when the API has no character by that name.
var ErrCharacterNotFound = errors.New("character not found")

// ErrOutOfRetries is returned when every attempt at a retryable request failed.
var ErrOutOfRetries = errors.New("max retries exceeded")

// APIError is a non-2xx response from the game API.
type APIError struct {
	// StatusCode is the HTTP status.
	StatusCode int
	// Code is the numeric code from the error envelope, often equal to StatusCode.
	Code int
	// Message is the human-readable message from the error envelope.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("artifacts api: status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if repeated unchanged.
func (e *APIError) Retryable() bool {
	return retryableStatus(e.StatusCode)
}

// retryableStatus covers server faults, rate limiting (429), conflicts (409)
// and the game's own "already in progress" codes (461, 486).
func retryableStatus(code int) bool {
	switch {
	case code >= 500:
		return true
	case code == http.StatusTooManyRequests, code == http.StatusConflict, code == 461, code == 486:
		return true
	}
	return false
}

// parseAPIError builds an APIError from a response body shaped like
// {"error": {"code": 404, "message": "..."}}. Bodies that do not match fall
// back to the HTTP status text.
func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Code: status}
	if !gjson.ValidBytes(body) {
		e.Message = http.StatusText(status)
		return e
	}
	envelope := gjson.GetBytes(body, "error")
	if c := envelope.Get("code"); c.Exists() {
		e.Code = int(c.Int())
	}
	e.Message = envelope.Get("message").String()
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
