// Package trade defines the unified trade execution record shared across
// exchange adapters.
package trade

import (
	"encoding/json"
	"time"

	"github.com/cryptoadapters/coinsbit/currency"
	"github.com/cryptoadapters/coinsbit/exchanges/order"
)

// Data defines a single normalised trade execution
type Data struct {
	TID          string
	Exchange     string
	CurrencyPair currency.Pair
	OrderID      string
	Type         order.Type
	Side         order.Side
	Price        float64
	Amount       float64
	Timestamp    time.Time
	// Info preserves the raw exchange payload for downstream consumers
	Info json.RawMessage
}
