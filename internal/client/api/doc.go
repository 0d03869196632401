// Package api is the HTTP client for the banking backend's authentication
// and profile endpoints.
//
// # Overview
//
// The Client interface is the transport-agnostic contract used by the
// services layer: Login, Refresh and Me. HTTPClient implements it over
// net/http against the /api/v1 REST routes. Success responses use the
// backend envelope {"success": bool, "message": string, "data": {...}}.
//
// # Error Handling
//
// Every failure is converted to one of the common sentinels before it
// leaves the package, so callers match with errors.Is:
//
//   - common.ErrNetworkUnavailable: the request never got a response.
//   - common.ErrCredentialRejected: the server answered 401 or 403.
//   - common.ErrMalformedResponse: the body could not be decoded, the
//     envelope reported success=false, or required fields are missing.
//
// Non-2xx responses are returned as *Error carrying the status code and
// the server's message.
package api
