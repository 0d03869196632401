package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ConnState is a state of the realtime balance channel.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateRefreshingCredentials
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateRefreshingCredentials:
		return "refreshing_credentials"
	default:
		return "unknown"
	}
}

// EventKind discriminates Event records.
type EventKind string

const (
	EventBalanceUpdated   EventKind = "balance_updated"
	EventDepositCompleted EventKind = "deposit_completed"
	EventStateChanged     EventKind = "state_changed"
	EventSessionEnded     EventKind = "session_ended"
)

// CarriesBalance reports whether events of this kind hold a new balance.
func (k EventKind) CarriesBalance() bool {
	return k == EventBalanceUpdated || k == EventDepositCompleted
}

// Event is one record of the realtime event stream.
type Event struct {
	Kind    EventKind
	Balance decimal.Decimal // set for balance-carrying kinds
	State   ConnState       // set for state_changed
	Err     error           // set for session_ended
	ConnID  string
	At      time.Time
}

// Envelope is the wire frame exchanged over the realtime socket.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// BalancePayload is the data of balance-carrying envelopes.
type BalancePayload struct {
	Balance decimal.Decimal `json:"balance"`
}
