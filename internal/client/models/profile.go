// Package models defines the client-side records shared by the session,
// recipient and realtime components.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID is an opaque server identifier. The backend sends user ids as either
// JSON numbers or strings; both decode to the same ID.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Profile is the denormalized copy of the server-side user record kept in
// the userData key.
type Profile struct {
	UserID    ID               `json:"UserID"`
	Username  string           `json:"Username,omitempty"`
	FirstName string           `json:"FirstName,omitempty"`
	LastName  string           `json:"LastName,omitempty"`
	Email     string           `json:"Email,omitempty"`
	Balance   *decimal.Decimal `json:"Balance,omitempty"`
}

// DisplayName prefers the first/last name pair and falls back to the username.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Username
	}
}
