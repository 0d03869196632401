package recipients

import (
	_ "embed"
	"encoding/json"

	"github.com/dmitrijs2005/mobank/internal/client/models"
)

//go:embed seed.json
var seedJSON []byte

// Starter returns the recipients a new user's list is populated with. There
// is no server-side recipient directory, so the list is bootstrapped locally.
func Starter() []models.Recipient {
	var rs []models.Recipient
	if err := json.Unmarshal(seedJSON, &rs); err != nil {
		panic("recipients: bad seed.json: " + err.Error())
	}
	return rs
}
