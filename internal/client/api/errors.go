package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mobank/internal/common"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto the common error taxonomy.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return common.ErrCredentialRejected
	case e.Status == http.StatusBadRequest || e.Status == http.StatusNotFound ||
		e.Status == http.StatusConflict || e.Status == http.StatusUnprocessableEntity:
		return common.ErrInvalidArgument
	case e.Status >= 500:
		return common.ErrNetworkUnavailable
	default:
		return common.ErrMalformedResponse
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
