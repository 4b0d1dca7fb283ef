// Package account defines unified balance holdings shared across exchange
// adapters.
package account

import (
	"errors"

	"github.com/cryptoadapters/coinsbit/currency"
)

var (
	// ErrHoldingsIsNil is returned when nil holdings are processed
	ErrHoldingsIsNil = errors.New("account holdings is nil")

	errExchangeNameUnset = errors.New("exchange name unset")
)

// Balance is a sub type to store currency name and individual totals
type Balance struct {
	Currency currency.Code
	Total    float64
	Free     float64
	Used     float64
}

// Holdings is a generic type to hold an exchange's balances for all currencies
// returned by a single account snapshot call
type Holdings struct {
	Exchange   string
	Currencies []Balance
}

// Process derives each balance total from its free and used amounts and
// validates the snapshot. The generic balance-normalisation step every
// adapter hands its mapped balances to.
func Process(h *Holdings) error {
	if h == nil {
		return ErrHoldingsIsNil
	}
	if h.Exchange == "" {
		return errExchangeNameUnset
	}
	for i := range h.Currencies {
		h.Currencies[i].Total = h.Currencies[i].Free + h.Currencies[i].Used
	}
	return nil
}

// GetBalance returns the balance for a specific currency code held in the
// snapshot
func (h *Holdings) GetBalance(c currency.Code) (Balance, bool) {
	for i := range h.Currencies {
		if h.Currencies[i].Currency.Equal(c) {
			return h.Currencies[i], true
		}
	}
	return Balance{}, false
}
