package coinsbit

import "encoding/json"

// Response is the reply envelope wrapping every Coinsbit API call
type Response struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// MarketData holds one tradable pair descriptor as returned by the markets
// endpoint
type MarketData struct {
	Name      string `json:"name"`
	Stock     string `json:"stock"`
	Money     string `json:"money"`
	StockPrec string `json:"stockPrec"`
	MoneyPrec string `json:"moneyPrec"`
	FeePrec   string `json:"feePrec"`
	MinAmount string `json:"minAmount"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the descriptor and retains the raw payload
func (m *MarketData) UnmarshalJSON(d []byte) error {
	type alias MarketData
	var a alias
	if err := json.Unmarshal(d, &a); err != nil {
		return err
	}
	*m = MarketData(a)
	m.Raw = append(json.RawMessage(nil), d...)
	return nil
}

// TickerData holds ticker fields common to the single and batched ticker
// endpoints. The batched endpoint reports volume under "vol", the single
// endpoint under "volume".
type TickerData struct {
	Bid    string `json:"bid"`
	Ask    string `json:"ask"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Last   string `json:"last"`
	Volume string `json:"volume"`
	Vol    string `json:"vol"`
	Deal   string `json:"deal"`
	Change string `json:"change"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the ticker and retains the raw payload
func (t *TickerData) UnmarshalJSON(d []byte) error {
	type alias TickerData
	var a alias
	if err := json.Unmarshal(d, &a); err != nil {
		return err
	}
	*t = TickerData(a)
	t.Raw = append(json.RawMessage(nil), d...)
	return nil
}

// baseVolume returns whichever volume field the endpoint populated
func (t *TickerData) baseVolume() string {
	if t.Volume != "" {
		return t.Volume
	}
	return t.Vol
}

// TickerItem wraps one entry of the batched tickers reply
type TickerItem struct {
	At     int64      `json:"at"`
	Ticker TickerData `json:"ticker"`
}

// BookOrderData holds a single order book level
type BookOrderData struct {
	ID        int64   `json:"id"`
	Side      string  `json:"side"`
	Price     string  `json:"price"`
	Amount    string  `json:"amount"`
	Left      string  `json:"left"`
	Timestamp float64 `json:"timestamp"`
}

// BookResult holds one side of the order book
type BookResult struct {
	Offset int64           `json:"offset"`
	Limit  int64           `json:"limit"`
	Total  int64           `json:"total"`
	Orders []BookOrderData `json:"orders"`
}

// OrderData holds a submitted or queried order. The order listing endpoint
// reports the identifier under "id", the placement endpoints under "orderId".
type OrderData struct {
	OrderID   int64   `json:"orderId"`
	ID        int64   `json:"id"`
	Market    string  `json:"market"`
	Price     string  `json:"price"`
	Side      string  `json:"side"`
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
	DealMoney string  `json:"dealMoney"`
	DealStock string  `json:"dealStock"`
	Amount    string  `json:"amount"`
	TakerFee  string  `json:"takerFee"`
	MakerFee  string  `json:"makerFee"`
	Left      string  `json:"left"`
	DealFee   string  `json:"dealFee"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the order and retains the raw payload
func (o *OrderData) UnmarshalJSON(d []byte) error {
	type alias OrderData
	var a alias
	if err := json.Unmarshal(d, &a); err != nil {
		return err
	}
	*o = OrderData(a)
	o.Raw = append(json.RawMessage(nil), d...)
	return nil
}

// orderID returns whichever identifier field the endpoint populated
func (o *OrderData) orderID() int64 {
	if o.OrderID != 0 {
		return o.OrderID
	}
	return o.ID
}

// OpenOrdersResult is the paginated open order listing
type OpenOrdersResult struct {
	Offset int64       `json:"offset"`
	Limit  int64       `json:"limit"`
	Total  int64       `json:"total"`
	Result []OrderData `json:"result"`
}

// TradeData holds a single execution from the public history and personal
// deal endpoints. The public endpoint reports the side under "type".
type TradeData struct {
	ID          int64   `json:"id"`
	Time        float64 `json:"time"`
	Side        string  `json:"side"`
	Type        string  `json:"type"`
	Role        int64   `json:"role"`
	Price       string  `json:"price"`
	Amount      string  `json:"amount"`
	Deal        string  `json:"deal"`
	Fee         string  `json:"fee"`
	DealOrderID int64   `json:"dealOrderId"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the trade and retains the raw payload
func (t *TradeData) UnmarshalJSON(d []byte) error {
	type alias TradeData
	var a alias
	if err := json.Unmarshal(d, &a); err != nil {
		return err
	}
	*t = TradeData(a)
	t.Raw = append(json.RawMessage(nil), d...)
	return nil
}

// side returns whichever direction field the endpoint populated
func (t *TradeData) side() string {
	if t.Side != "" {
		return t.Side
	}
	return t.Type
}

// DealsResult is the paginated personal deal listing
type DealsResult struct {
	Offset  int64       `json:"offset"`
	Limit   int64       `json:"limit"`
	Records []TradeData `json:"records"`
}

// BalanceData holds the per-currency balance fields
type BalanceData struct {
	Available string `json:"available"`
	Freeze    string `json:"freeze"`
}
