// Package cli provides the interactive mobank command-line client.
//
// It wires configuration, on-device storage, the REST client and the
// realtime balance channel into an interactive REPL. Typical flow: resume
// the persisted session or prompt for credentials, then execute user
// commands until exit.
//
// Key features:
//   - Login / Logout / session resume
//   - Balance refresh and live balance watching
//   - Recipient list management (add, delete, clear, reset)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
