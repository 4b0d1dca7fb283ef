// Package order defines unified order types and the normalised order record
// shared across exchange adapters.
package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cryptoadapters/coinsbit/currency"
)

// Validation errors
var (
	ErrSubmissionIsNil            = errors.New("order submission is nil")
	ErrPairIsEmpty                = errors.New("order pair is empty")
	ErrSideIsInvalid              = errors.New("order side is invalid")
	ErrTypeIsInvalid              = errors.New("order type is invalid")
	ErrAmountIsInvalid            = errors.New("order amount is invalid")
	ErrPriceMustBeSetIfLimitOrder = errors.New("order price must be set if limit order type is desired")
)

// Side enforces a standard for order sides across the code base
type Side string

// Order side types
const (
	AnySide Side = "ANY"
	Buy     Side = "BUY"
	Sell    Side = "SELL"
)

// Type enforces a standard for order types across the code base
type Type string

// Order type declarations
const (
	AnyType Type = "ANY"
	Limit   Type = "LIMIT"
	Market  Type = "MARKET"
	Unknown Type = "UNKNOWN"
)

// Status defines order status types
type Status string

// All order status types
const (
	AnyStatus     Status = "ANY"
	Open          Status = "OPEN"
	Closed        Status = "CLOSED"
	Cancelled     Status = "CANCELLED"
	UnknownStatus Status = "UNKNOWN"
)

// Fee holds fee information attached to an order, if available
type Fee struct {
	Currency currency.Code
	Cost     float64
	Rate     float64
}

// TradeHistory holds exchange history data for an order
type TradeHistory struct {
	TID       string
	Timestamp time.Time
	Price     float64
	Amount    float64
	Fee       float64
}

// Detail holds a unified order in normalised form. The adapter never
// transitions an order's state itself; Status reflects whatever the exchange
// returned at call time.
type Detail struct {
	ID       string
	Exchange string
	// Date is the order placement time; a last-trade timestamp is not
	// available from every exchange
	Date              time.Time
	LastTradeTime     time.Time
	Status            Status
	Pair              currency.Pair
	Type              Type
	Side              Side
	Price             float64
	Amount            float64
	ExecutedAmount    float64
	RemainingAmount   float64
	Cost              float64
	Fee               Fee
	Trades            []TradeHistory
	// Info preserves the raw exchange payload for downstream consumers
	Info json.RawMessage
}

// Submit contains all properties of an order that may be required for an
// order to be created on an exchange
type Submit struct {
	Pair   currency.Pair
	Type   Type
	Side   Side
	Price  float64
	Amount float64
}

// Validate checks the supplied data and returns whether or not it's valid
func (s *Submit) Validate() error {
	if s == nil {
		return ErrSubmissionIsNil
	}
	if s.Pair.IsEmpty() {
		return ErrPairIsEmpty
	}
	if s.Side != Buy && s.Side != Sell {
		return ErrSideIsInvalid
	}
	if s.Type != Market && s.Type != Limit {
		return ErrTypeIsInvalid
	}
	if s.Amount <= 0 {
		return ErrAmountIsInvalid
	}
	if s.Type == Limit && s.Price <= 0 {
		return ErrPriceMustBeSetIfLimitOrder
	}
	return nil
}

// String implements the stringer interface
func (t Type) String() string {
	return string(t)
}

// Lower returns the type lower case string
func (t Type) Lower() string {
	return strings.ToLower(string(t))
}

// String implements the stringer interface
func (s Side) String() string {
	return string(s)
}

// Lower returns the side lower case string
func (s Side) Lower() string {
	return strings.ToLower(string(s))
}

// String implements the stringer interface
func (s Status) String() string {
	return string(s)
}

// Lower returns the status lower case string
func (s Status) Lower() string {
	return strings.ToLower(string(s))
}

// StringToOrderSide converts a case insensitive order side to a real Side
func StringToOrderSide(side string) (Side, error) {
	switch {
	case strings.EqualFold(side, Buy.String()):
		return Buy, nil
	case strings.EqualFold(side, Sell.String()):
		return Sell, nil
	case strings.EqualFold(side, AnySide.String()):
		return AnySide, nil
	default:
		return Side(""), fmt.Errorf("%s not recognised as side type", side)
	}
}

// StringToOrderType converts a case insensitive order type to a real Type
func StringToOrderType(oType string) (Type, error) {
	switch {
	case strings.EqualFold(oType, Limit.String()):
		return Limit, nil
	case strings.EqualFold(oType, Market.String()):
		return Market, nil
	case strings.EqualFold(oType, AnyType.String()):
		return AnyType, nil
	default:
		return Unknown, fmt.Errorf("%s not recognised as order type", oType)
	}
}
