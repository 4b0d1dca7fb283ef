package coinsbit

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptoadapters/coinsbit/common"
	"github.com/cryptoadapters/coinsbit/common/convert"
	"github.com/cryptoadapters/coinsbit/config"
	"github.com/cryptoadapters/coinsbit/currency"
	"github.com/cryptoadapters/coinsbit/exchanges/account"
	"github.com/cryptoadapters/coinsbit/exchanges/market"
	"github.com/cryptoadapters/coinsbit/exchanges/order"
	"github.com/cryptoadapters/coinsbit/exchanges/orderbook"
	"github.com/cryptoadapters/coinsbit/exchanges/request"
	"github.com/cryptoadapters/coinsbit/exchanges/ticker"
	"github.com/cryptoadapters/coinsbit/exchanges/trade"
	"github.com/cryptoadapters/coinsbit/log"
)

// defaultListLimit is applied to paginated private listings when the caller
// supplies no limit
const defaultListLimit = 50

// commonCurrencyCodes maps exchange currency ids onto their unified codes
var commonCurrencyCodes = map[string]string{
	"XBT": "BTC",
}

// ActiveOrdersResponse mirrors the open order listing reply with each raw
// entry replaced by its normalised form
type ActiveOrdersResponse struct {
	Offset int64
	Limit  int64
	Total  int64
	Orders []order.Detail
}

// SetDefaults sets the basic defaults for Coinsbit
func (c *Coinsbit) SetDefaults() {
	c.Name = "Coinsbit"
	c.Enabled = true
	c.API.Endpoints.URL = coinsbitAPIURL
	c.Requester = request.New(c.Name,
		common.NewHTTPClientWithTimeout(common.DefaultHTTPTimeout),
		request.WithLimiter(request.NewRateLimit(time.Second, coinsbitRequestRate)))
}

// Setup takes in the supplied exchange configuration details and sets params
func (c *Coinsbit) Setup(exch *config.Exchange) error {
	if exch == nil {
		return common.ErrNilPointer
	}
	if !exch.Enabled {
		c.SetEnabled(false)
		return nil
	}
	return c.SetupDefaults(exch)
}

// LoadMarkets fetches and caches the tradable markets on first use.
// Subsequent calls are no-ops.
func (c *Coinsbit) LoadMarkets(ctx context.Context) error {
	c.mtx.RLock()
	loaded := c.markets != nil
	c.mtx.RUnlock()
	if loaded {
		return nil
	}

	raw, err := c.GetMarkets(ctx)
	if err != nil {
		return err
	}

	markets := make(map[string]*market.Market, len(raw))
	ids := make(map[string]string, len(raw))
	for i := range raw {
		m, err := parseMarket(&raw[i])
		if err != nil {
			log.Warnf(log.ExchangeSys, "%s skipping market %s: %v",
				c.Name, raw[i].Name, err)
			continue
		}
		markets[m.Symbol] = m
		ids[m.ID] = m.Symbol
	}

	c.mtx.Lock()
	c.markets = markets
	c.marketIDs = ids
	c.mtx.Unlock()
	return nil
}

// FetchMarkets returns the normalised tradable markets. An unreachable
// markets endpoint yields an empty set rather than an error so consumers can
// start without public connectivity.
func (c *Coinsbit) FetchMarkets(ctx context.Context) ([]market.Market, error) {
	raw, err := c.GetMarkets(ctx)
	if err != nil {
		log.Warnf(log.ExchangeSys, "%s unable to fetch markets, continuing with none: %v",
			c.Name, err)
		return nil, nil
	}

	markets := make([]market.Market, 0, len(raw))
	for i := range raw {
		m, err := parseMarket(&raw[i])
		if err != nil {
			log.Warnf(log.ExchangeSys, "%s skipping market %s: %v",
				c.Name, raw[i].Name, err)
			continue
		}
		markets = append(markets, *m)
	}
	return markets, nil
}

// FetchTicker returns the snapshot for a single unified symbol
func (c *Coinsbit) FetchTicker(ctx context.Context, symbol string) (*ticker.Price, error) {
	if err := c.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := c.market(symbol)
	if err != nil {
		return nil, err
	}
	data, err := c.GetTicker(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return c.parseTicker(m.Pair, data)
}

// FetchTickers returns snapshots for all markets, optionally filtered to the
// supplied unified symbols. Entries that fail normalisation are skipped with
// a warning so one malformed market cannot sink the whole batch.
func (c *Coinsbit) FetchTickers(ctx context.Context, symbols ...string) ([]ticker.Price, error) {
	if err := c.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	all, err := c.GetTickers(ctx)
	if err != nil {
		return nil, err
	}

	filter := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		filter[s] = true
	}

	prices := make([]ticker.Price, 0, len(all))
	for id, item := range all {
		symbol, ok := c.findSymbol(id)
		if !ok {
			continue
		}
		if len(filter) > 0 && !filter[symbol] {
			continue
		}
		m, err := c.market(symbol)
		if err != nil {
			continue
		}
		p, err := c.parseTicker(m.Pair, &item.Ticker)
		if err != nil {
			log.Warnf(log.ExchangeSys, "%s skipping ticker %s: %v", c.Name, id, err)
			continue
		}
		if item.At > 0 {
			p.LastUpdated = time.Unix(item.At, 0)
		}
		prices = append(prices, *p)
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Pair.String() < prices[j].Pair.String()
	})
	return prices, nil
}

// FetchOrderBook returns the combined order book for a unified symbol. The
// exchange serves each side from a separate call; failure of either fails the
// whole fetch.
func (c *Coinsbit) FetchOrderBook(ctx context.Context, symbol string, limit int64) (*orderbook.Base, error) {
	if err := c.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := c.market(symbol)
	if err != nil {
		return nil, err
	}

	sells, err := c.GetOrderBookSide(ctx, m.ID, "sell", 0, limit)
	if err != nil {
		return nil, err
	}
	buys, err := c.GetOrderBookSide(ctx, m.ID, "buy", 0, limit)
	if err != nil {
		return nil, err
	}

	book, err := assembleOrderBook(m.Pair, sells.Orders, buys.Orders)
	if err != nil {
		return nil, err
	}
	book.Exchange = c.Name
	if err := book.Process(); err != nil {
		return nil, err
	}
	return book, nil
}

// FetchTrades returns public executions for a unified symbol that occurred
// after the supplied trade id
func (c *Coinsbit) FetchTrades(ctx context.Context, symbol string, since, limit int64) ([]trade.Data, error) {
	if err := c.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := c.market(symbol)
	if err != nil {
		return nil, err
	}
	raw, err := c.GetTradeHistory(ctx, m.ID, since, limit)
	if err != nil {
		return nil, err
	}

	trades := make([]trade.Data, 0, len(raw))
	for i := range raw {
		t, err := c.parseTrade(&raw[i], m)
		if err != nil {
			log.Warnf(log.ExchangeSys, "%s skipping trade %d: %v",
				c.Name, raw[i].ID, err)
			continue
		}
		trades = append(trades, *t)
	}
	return trades, nil
}

// FetchMyTrades returns the account's own executions. The listing endpoint is
// account wide and carries no market field, so each record is attributed to
// the supplied unified symbol.
func (c *Coinsbit) FetchMyTrades(ctx context.Context, symbol string, offset, limit int64) ([]trade.Data, error) {
	var m *market.Market
	if symbol != "" {
		if err := c.LoadMarkets(ctx); err != nil {
			return nil, err
		}
		var err error
		if m, err = c.market(symbol); err != nil {
			return nil, err
		}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	res, err := c.GetOrderHistoryList(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	trades := make([]trade.Data, 0, len(res.Records))
	for i := range res.Records {
		t, err := c.parseTrade(&res.Records[i], m)
		if err != nil {
			log.Warnf(log.ExchangeSys, "%s skipping trade %d: %v",
				c.Name, res.Records[i].ID, err)
			continue
		}
		trades = append(trades, *t)
	}
	return trades, nil
}

// FetchBalance returns all account holdings
func (c *Coinsbit) FetchBalance(ctx context.Context) (*account.Holdings, error) {
	bals, err := c.GetBalances(ctx)
	if err != nil {
		return nil, err
	}

	h := &account.Holdings{
		Exchange:   c.Name,
		Currencies: make([]account.Balance, 0, len(bals)),
	}
	for code, b := range bals {
		free, err := parseOptionalFloat("available", b.Available)
		if err != nil {
			return nil, fmt.Errorf("%s balance %s: %w", c.Name, code, err)
		}
		used, err := parseOptionalFloat("freeze", b.Freeze)
		if err != nil {
			return nil, fmt.Errorf("%s balance %s: %w", c.Name, code, err)
		}
		h.Currencies = append(h.Currencies, account.Balance{
			Currency: currency.NewCode(safeCurrencyCode(code)),
			Free:     free,
			Used:     used,
		})
	}

	sort.Slice(h.Currencies, func(i, j int) bool {
		return h.Currencies[i].Currency.String() < h.Currencies[j].Currency.String()
	})
	if err := account.Process(h); err != nil {
		return nil, err
	}
	return h, nil
}

// CreateOrder submits a limit order for a unified symbol. Market orders are
// rejected before any network activity as the exchange does not support them.
func (c *Coinsbit) CreateOrder(ctx context.Context, symbol string, orderType order.Type, side order.Side, amount, price float64) (*order.Detail, error) {
	if orderType == order.Market {
		return nil, errMarketOrdersNotSupported
	}
	if err := c.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := c.market(symbol)
	if err != nil {
		return nil, err
	}

	sub := &order.Submit{
		Pair:   m.Pair,
		Type:   orderType,
		Side:   side,
		Price:  price,
		Amount: amount,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	data, err := c.NewOrder(ctx, m.ID,
		side.Lower(),
		toPrecision(amount, m.Precision.Amount),
		toPrecision(price, m.Precision.Price))
	if err != nil {
		return nil, err
	}
	return c.parseOrder(data)
}

// CancelOrder cancels an open order on a unified symbol and returns its final
// reported state
func (c *Coinsbit) CancelOrder(ctx context.Context, orderID, symbol string) (*order.Detail, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errInvalidOrderID, orderID)
	}
	if err := c.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := c.market(symbol)
	if err != nil {
		return nil, err
	}
	data, err := c.CancelExistingOrder(ctx, m.ID, id)
	if err != nil {
		return nil, err
	}
	return c.parseOrder(data)
}

// FetchOrders returns the open orders on a unified symbol together with the
// listing's pagination fields
func (c *Coinsbit) FetchOrders(ctx context.Context, symbol string, offset, limit int64) (*ActiveOrdersResponse, error) {
	if err := c.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := c.market(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	res, err := c.GetOpenOrders(ctx, m.ID, offset, limit)
	if err != nil {
		return nil, err
	}

	orders := make([]order.Detail, 0, len(res.Result))
	for i := range res.Result {
		d, err := c.parseOrder(&res.Result[i])
		if err != nil {
			log.Warnf(log.ExchangeSys, "%s skipping order %d: %v",
				c.Name, res.Result[i].orderID(), err)
			continue
		}
		orders = append(orders, *d)
	}
	return &ActiveOrdersResponse{
		Offset: res.Offset,
		Limit:  res.Limit,
		Total:  res.Total,
		Orders: orders,
	}, nil
}

// FetchOrder reconstructs a single order from its recorded executions. The
// deal endpoint returns an empty record set for unknown ids, which is
// reported as the order not being found.
func (c *Coinsbit) FetchOrder(ctx context.Context, orderID, symbol string) (*order.Detail, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errInvalidOrderID, orderID)
	}

	deals, err := c.GetOrderDeals(ctx, id, 0, defaultListLimit)
	if err != nil {
		return nil, err
	}
	if len(deals.Records) == 0 {
		return nil, fmt.Errorf("%w: %s", errOrderNotFound, orderID)
	}

	d := &order.Detail{
		ID:       orderID,
		Exchange: c.Name,
		Status:   order.Open,
	}
	if symbol != "" {
		if err := c.LoadMarkets(ctx); err != nil {
			return nil, err
		}
		m, err := c.market(symbol)
		if err != nil {
			return nil, err
		}
		d.Pair = m.Pair
	}

	var totalFee float64
	for i := range deals.Records {
		r := &deals.Records[i]
		price, err := parseRequiredFloat("price", r.Price)
		if err != nil {
			return nil, fmt.Errorf("%s order %s deal %d: %w", c.Name, orderID, r.ID, err)
		}
		amount, err := parseRequiredFloat("amount", r.Amount)
		if err != nil {
			return nil, fmt.Errorf("%s order %s deal %d: %w", c.Name, orderID, r.ID, err)
		}
		fee, err := parseOptionalFloat("fee", r.Fee)
		if err != nil {
			return nil, fmt.Errorf("%s order %s deal %d: %w", c.Name, orderID, r.ID, err)
		}

		ts := convert.TimeFromUnixTimestampDecimal(r.Time)
		d.Trades = append(d.Trades, order.TradeHistory{
			TID:       strconv.FormatInt(r.ID, 10),
			Timestamp: ts,
			Price:     price,
			Amount:    amount,
			Fee:       fee,
		})
		d.ExecutedAmount += amount
		d.Cost += price * amount
		totalFee += fee
		if d.Date.IsZero() || ts.Before(d.Date) {
			d.Date = ts
		}
		if ts.After(d.LastTradeTime) {
			d.LastTradeTime = ts
		}
	}
	d.Fee = order.Fee{Currency: currency.BTC, Cost: totalFee}
	return d, nil
}

// market returns the cached market for a unified symbol
func (c *Coinsbit) market(symbol string) (*market.Market, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	if m, ok := c.markets[symbol]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", errMarketNotFound, symbol)
}

// findSymbol returns the unified symbol for an exchange pair name
func (c *Coinsbit) findSymbol(marketID string) (string, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	symbol, ok := c.marketIDs[marketID]
	return symbol, ok
}

// pairForMarketID resolves a pair from the market cache, falling back to
// splitting the exchange pair name when the market is unknown
func (c *Coinsbit) pairForMarketID(marketID string) currency.Pair {
	if symbol, ok := c.findSymbol(marketID); ok {
		if m, err := c.market(symbol); err == nil {
			return m.Pair
		}
	}
	if p, err := currency.NewPairDelimiter(underscoreToSlash(marketID), "/"); err == nil {
		return p
	}
	return currency.EMPTYPAIR
}

// parseMarket normalises a raw pair descriptor
func parseMarket(d *MarketData) (*market.Market, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("market name missing")
	}
	// moneyPrec drives price, amount and cost precision alike
	prec, err := strconv.Atoi(d.MoneyPrec)
	if err != nil {
		return nil, fmt.Errorf("invalid money precision %q: %w", d.MoneyPrec, err)
	}
	minAmount, err := parseOptionalFloat("minAmount", d.MinAmount)
	if err != nil {
		return nil, err
	}

	base := safeCurrencyCode(d.Stock)
	quote := safeCurrencyCode(d.Money)
	return &market.Market{
		ID:      d.Name,
		Symbol:  base + "/" + quote,
		Pair:    currency.NewPairWithDelimiter(base, quote, "/"),
		BaseID:  d.Stock,
		QuoteID: d.Money,
		Active:  true,
		Precision: market.Precision{
			Price:  prec,
			Amount: prec,
			Cost:   prec,
		},
		Limits: market.Limits{
			Amount: market.MinMax{Min: minAmount, Max: 999999},
		},
		Info: d.Raw,
	}, nil
}

// parseTicker normalises a raw ticker. Bid, ask and last are required;
// remaining fields default to zero when the endpoint omits them. Derived
// fields are only computed when an opening price is present.
func (c *Coinsbit) parseTicker(pair currency.Pair, t *TickerData) (*ticker.Price, error) {
	bid, err := parseRequiredFloat("bid", t.Bid)
	if err != nil {
		return nil, err
	}
	ask, err := parseRequiredFloat("ask", t.Ask)
	if err != nil {
		return nil, err
	}
	last, err := parseRequiredFloat("last", t.Last)
	if err != nil {
		return nil, err
	}
	open, err := parseOptionalFloat("open", t.Open)
	if err != nil {
		return nil, err
	}
	high, err := parseOptionalFloat("high", t.High)
	if err != nil {
		return nil, err
	}
	low, err := parseOptionalFloat("low", t.Low)
	if err != nil {
		return nil, err
	}
	volume, err := parseOptionalFloat("volume", t.baseVolume())
	if err != nil {
		return nil, err
	}

	p := &ticker.Price{
		Pair:         pair,
		Bid:          bid,
		Ask:          ask,
		Last:         last,
		Close:        last,
		Open:         open,
		High:         high,
		Low:          low,
		BaseVolume:   volume,
		QuoteVolume:  volume * last,
		ExchangeName: c.Name,
		Info:         t.Raw,
	}
	if open > 0 {
		p.Change = last - open
		p.Percentage = p.Change / open * 100
		p.Average = (last + open) / 2
	}
	return p, nil
}

// parseOrder normalises a raw order. The exchange only ever reports orders it
// still considers open, so the status is fixed rather than inferred from the
// filled amount.
func (c *Coinsbit) parseOrder(d *OrderData) (*order.Detail, error) {
	side, err := order.StringToOrderSide(d.Side)
	if err != nil {
		return nil, err
	}
	oType, err := order.StringToOrderType(d.Type)
	if err != nil {
		return nil, err
	}
	price, err := parseRequiredFloat("price", d.Price)
	if err != nil {
		return nil, err
	}
	amount, err := parseRequiredFloat("amount", d.Amount)
	if err != nil {
		return nil, err
	}
	left, err := parseRequiredFloat("left", d.Left)
	if err != nil {
		return nil, err
	}
	dealFee, err := parseOptionalFloat("dealFee", d.DealFee)
	if err != nil {
		return nil, err
	}
	takerFee, err := parseOptionalFloat("takerFee", d.TakerFee)
	if err != nil {
		return nil, err
	}

	filled := amount - left
	return &order.Detail{
		ID:              strconv.FormatInt(d.orderID(), 10),
		Exchange:        c.Name,
		Date:            convert.TimeFromUnixTimestampDecimal(d.Timestamp),
		Status:          order.Open,
		Pair:            c.pairForMarketID(d.Market),
		Type:            oType,
		Side:            side,
		Price:           price,
		Amount:          amount,
		ExecutedAmount:  filled,
		RemainingAmount: left,
		Cost:            filled * price,
		// Fee currency is not reported by the exchange
		Fee: order.Fee{
			Currency: currency.BTC,
			Cost:     dealFee,
			Rate:     takerFee,
		},
		Info: d.Raw,
	}, nil
}

// parseTrade normalises a raw execution record. The market may be nil when
// the source endpoint carries no pair information.
func (c *Coinsbit) parseTrade(t *TradeData, m *market.Market) (*trade.Data, error) {
	price, err := parseRequiredFloat("price", t.Price)
	if err != nil {
		return nil, err
	}
	amount, err := parseRequiredFloat("amount", t.Amount)
	if err != nil {
		return nil, err
	}

	d := &trade.Data{
		TID:      strconv.FormatInt(t.ID, 10),
		Exchange: c.Name,
		Type:     order.Unknown,
		Price:    price,
		Amount:   amount,
		Info:     t.Raw,
	}
	if s := t.side(); s != "" {
		side, err := order.StringToOrderSide(s)
		if err != nil {
			return nil, err
		}
		d.Side = side
	}
	if t.Time > 0 {
		d.Timestamp = convert.TimeFromUnixTimestampDecimal(t.Time)
	}
	if t.DealOrderID != 0 {
		d.OrderID = strconv.FormatInt(t.DealOrderID, 10)
	}
	if m != nil {
		d.CurrencyPair = m.Pair
	}
	return d, nil
}

// assembleOrderBook converts the two raw book sides into an unsorted unified
// book
func assembleOrderBook(pair currency.Pair, sells, buys []BookOrderData) (*orderbook.Base, error) {
	book := &orderbook.Base{
		Pair: pair,
		Asks: make([]orderbook.Item, 0, len(sells)),
		Bids: make([]orderbook.Item, 0, len(buys)),
	}
	for i := range sells {
		item, err := bookItem(&sells[i])
		if err != nil {
			return nil, fmt.Errorf("ask level %d: %w", i, err)
		}
		book.Asks = append(book.Asks, item)
	}
	for i := range buys {
		item, err := bookItem(&buys[i])
		if err != nil {
			return nil, fmt.Errorf("bid level %d: %w", i, err)
		}
		book.Bids = append(book.Bids, item)
	}
	return book, nil
}

func bookItem(d *BookOrderData) (orderbook.Item, error) {
	price, err := parseRequiredFloat("price", d.Price)
	if err != nil {
		return orderbook.Item{}, err
	}
	amount, err := parseRequiredFloat("amount", d.Amount)
	if err != nil {
		return orderbook.Item{}, err
	}
	return orderbook.Item{Price: price, Amount: amount}, nil
}

// toPrecision renders a value truncated to the market's accepted number of
// decimal places
func toPrecision(value float64, places int) string {
	return decimal.NewFromFloat(value).Truncate(int32(places)).String()
}

// safeCurrencyCode maps an exchange currency id onto its unified uppercase
// code
func safeCurrencyCode(id string) string {
	upper := strings.ToUpper(id)
	if mapped, ok := commonCurrencyCodes[upper]; ok {
		return mapped
	}
	return upper
}

// underscoreToSlash converts an exchange pair name such as ETH_BTC into its
// unified ETH/BTC form. A name without a quote part is returned as the bare
// base code.
func underscoreToSlash(name string) string {
	parts := strings.SplitN(name, "_", 2)
	base := safeCurrencyCode(parts[0])
	if len(parts) < 2 || parts[1] == "" {
		return base
	}
	return base + "/" + safeCurrencyCode(parts[1])
}

func parseRequiredFloat(field, value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("required field %s missing", field)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return f, nil
}

func parseOptionalFloat(field, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return f, nil
}
