// Package market defines the unified tradable market record shared across
// exchange adapters.
package market

import (
	"encoding/json"

	"github.com/cryptoadapters/coinsbit/currency"
)

// Precision holds the number of decimal digits accepted for each order
// dimension
type Precision struct {
	Price  int
	Amount int
	Cost   int
}

// MinMax holds an inclusive limit range; zero values denote an unknown bound
type MinMax struct {
	Min float64
	Max float64
}

// Limits holds order placement limits for a market
type Limits struct {
	Amount MinMax
	Price  MinMax
	Cost   MinMax
}

// Market describes one tradable pair in unified form. Constructed once per
// adapter lifetime and treated as immutable after creation.
type Market struct {
	// ID is the exchange's own pair name e.g. ETH_BTC
	ID string
	// Symbol is the unified representation e.g. ETH/BTC
	Symbol    string
	Pair      currency.Pair
	BaseID    string
	QuoteID   string
	Active    bool
	Precision Precision
	Limits    Limits
	// Info preserves the raw exchange payload for downstream consumers
	Info json.RawMessage
}
