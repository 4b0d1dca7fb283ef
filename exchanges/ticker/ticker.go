// Package ticker defines the unified market snapshot record shared across
// exchange adapters.
package ticker

import (
	"encoding/json"
	"time"

	"github.com/cryptoadapters/coinsbit/currency"
)

// Price is a unified point-in-time market snapshot. Recreated on every ticker
// fetch and never mutated.
type Price struct {
	Pair        currency.Pair
	Last        float64
	High        float64
	Low         float64
	Bid         float64
	BidVolume   float64
	Ask         float64
	AskVolume   float64
	Open        float64
	Close       float64
	Change      float64
	Percentage  float64
	Average     float64
	BaseVolume  float64
	QuoteVolume float64
	// LastUpdated is the zero value when the exchange supplies no timestamp
	LastUpdated  time.Time
	ExchangeName string
	// Info preserves the raw exchange payload for downstream consumers
	Info json.RawMessage
}
