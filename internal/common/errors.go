// Package common defines shared constants and sentinel errors used across
// the mobank client layers. Callers should use errors.Is to match these
// values; lower layers wrap them with fmt.Errorf("...: %w", ...).
package common

import "errors"

var (
	// ErrInvalidArgument: a required parameter was missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPersistence: a durable-store operation failed or could not be
	// verified by a follow-up read.
	ErrPersistence = errors.New("persistence error")

	// ErrMalformedResponse: structured data from the server (or rehydrated
	// from disk) could not be parsed or lacks required fields.
	ErrMalformedResponse = errors.New("malformed server response")

	// ErrCredentialRejected: the server no longer honors the presented token.
	ErrCredentialRejected = errors.New("credential rejected")

	// ErrNetworkUnavailable: the remote endpoint could not be reached.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrNoSession: the operation needs an authenticated session.
	ErrNoSession = errors.New("no active session")
)
