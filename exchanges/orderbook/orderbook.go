// Package orderbook defines the unified order book and its normalisation
// behaviour shared across exchange adapters.
package orderbook

import (
	"errors"
	"sort"
	"time"

	"github.com/cryptoadapters/coinsbit/currency"
)

var (
	// ErrNoLevels is returned when a book carries neither bids nor asks
	ErrNoLevels = errors.New("orderbook has no levels")

	errPriceNotSet  = errors.New("orderbook level price not set")
	errAmountNotSet = errors.New("orderbook level amount not set")
)

// Item stores the price and amount values for one book level
type Item struct {
	Price  float64
	Amount float64
}

// Base holds the fields for the orderbook base
type Base struct {
	Exchange    string
	Pair        currency.Pair
	Bids        []Item
	Asks        []Item
	LastUpdated time.Time
}

// Verify ensures that every level carries a usable price and amount
func (b *Base) Verify() error {
	if len(b.Bids) == 0 && len(b.Asks) == 0 {
		return ErrNoLevels
	}
	for i := range b.Bids {
		if b.Bids[i].Price <= 0 {
			return errPriceNotSet
		}
		if b.Bids[i].Amount <= 0 {
			return errAmountNotSet
		}
	}
	for i := range b.Asks {
		if b.Asks[i].Price <= 0 {
			return errPriceNotSet
		}
		if b.Asks[i].Amount <= 0 {
			return errAmountNotSet
		}
	}
	return nil
}

// SortBids sorts bids into descending price order
func (b *Base) SortBids() {
	sort.Slice(b.Bids, func(i, j int) bool {
		return b.Bids[i].Price > b.Bids[j].Price
	})
}

// SortAsks sorts asks into ascending price order
func (b *Base) SortAsks() {
	sort.Slice(b.Asks, func(i, j int) bool {
		return b.Asks[i].Price < b.Asks[j].Price
	})
}

// Process verifies and normalises the book, sorting bids descending and asks
// ascending, and stamps the update time
func (b *Base) Process() error {
	if err := b.Verify(); err != nil {
		return err
	}
	b.SortBids()
	b.SortAsks()
	if b.LastUpdated.IsZero() {
		b.LastUpdated = time.Now()
	}
	return nil
}

// CalculateTotalBids returns the total amount of bids and the total orderbook
// bids value
func (b *Base) CalculateTotalBids() (amountCollated, total float64) {
	for i := range b.Bids {
		amountCollated += b.Bids[i].Amount
		total += b.Bids[i].Amount * b.Bids[i].Price
	}
	return amountCollated, total
}

// CalculateTotalAsks returns the total amount of asks and the total orderbook
// asks value
func (b *Base) CalculateTotalAsks() (amountCollated, total float64) {
	for i := range b.Asks {
		amountCollated += b.Asks[i].Amount
		total += b.Asks[i].Amount * b.Asks[i].Price
	}
	return amountCollated, total
}
