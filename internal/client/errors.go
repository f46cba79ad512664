package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork marks transport failures: the remote store was unreachable or
	// the exchange broke before a status code was received.
	ErrNetwork = errors.New("network error")
	// ErrUnauthorized marks 401 responses. Callers treat it as session expiry.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation marks 4xx responses other than 401/404 and requests
	// rejected before they were sent.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the error taxonomy so callers can use
// errors.Is.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return ErrValidation
	default:
		return nil
	}
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Kind returns a short label for err's place in the taxonomy.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "auth"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNetwork):
		return "network"
	case asAPIError(err) != nil:
		return "server"
	default:
		return "internal"
	}
}

func networkError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
