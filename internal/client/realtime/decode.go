package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/common"
)

var errNoBalance = errors.New("balance event without balance")

// kindOf normalises the envelope type; the backend has used both
// "balance updated" and "balance_updated".
func kindOf(t string) models.EventKind {
	t = strings.ToLower(strings.TrimSpace(t))
	return models.EventKind(strings.ReplaceAll(t, " ", "_"))
}

// decode parses one frame. It returns (nil, nil) for well-formed frames of
// kinds the client does not act on.
func decode(data []byte) (*models.Event, error) {
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedResponse, err)
	}

	kind := kindOf(env.Type)
	if !kind.CarriesBalance() {
		if kind != "pong" {
			return nil, fmt.Errorf("unknown event type %q", env.Type)
		}
		return nil, nil
	}

	var p struct {
		Balance *json.RawMessage `json:"balance"`
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedResponse, errNoBalance)
	}
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedResponse, err)
	}
	if p.Balance == nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedResponse, errNoBalance)
	}

	var payload models.BalancePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedResponse, err)
	}
	return &models.Event{Kind: kind, Balance: payload.Balance}, nil
}
