// Package coinsbit implements an adapter for the Coinsbit REST API
package coinsbit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/cryptoadapters/coinsbit/common"
	"github.com/cryptoadapters/coinsbit/common/crypto"
	exchange "github.com/cryptoadapters/coinsbit/exchanges"
	"github.com/cryptoadapters/coinsbit/exchanges/market"
	"github.com/cryptoadapters/coinsbit/exchanges/nonce"
	"github.com/cryptoadapters/coinsbit/exchanges/request"
)

const (
	coinsbitAPIURL     = "https://coinsbit.io/"
	coinsbitAPIVersion = "api/v1"

	// API groups
	coinsbitAPIPublic  = "public"
	coinsbitAPIOrder   = "order"
	coinsbitAPIAccount = "account"

	// Public endpoints
	coinsbitMarkets       = "markets"
	coinsbitTickers       = "tickers"
	coinsbitTicker        = "ticker"
	coinsbitBook          = "book"
	coinsbitHistoryResult = "history/result"

	// Order endpoints
	coinsbitNewOrder    = "new"
	coinsbitCancelOrder = "cancel"
	coinsbitOpenOrders  = "orders"

	// Account endpoints
	coinsbitBalances         = "balances"
	coinsbitOrderDeals       = "order"
	coinsbitOrderHistoryList = "order_history_list"

	coinsbitRequestRate = 10
)

var (
	errMarketNotFound           = errors.New("market not found")
	errOrderNotFound            = errors.New("order not found")
	errInvalidOrderID           = errors.New("order id must be an integer")
	errMarketOrdersNotSupported = fmt.Errorf("%w: market orders", common.ErrFunctionNotSupported)
)

// Coinsbit is the overarching type across this package
type Coinsbit struct {
	exchange.Base
	nonce nonce.Nonce

	mtx       sync.RWMutex
	markets   map[string]*market.Market
	marketIDs map[string]string
}

// requestPath returns the URL path for an API group and endpoint. The open
// order listing is the one private endpoint served from the API root rather
// than its group.
func requestPath(api, endpoint string) string {
	if api == coinsbitAPIOrder && endpoint == coinsbitOpenOrders {
		return coinsbitAPIVersion + "/" + coinsbitOpenOrders
	}
	return coinsbitAPIVersion + "/" + api + "/" + endpoint
}

// GetMarkets returns the full set of tradable pair descriptors
func (c *Coinsbit) GetMarkets(ctx context.Context) ([]MarketData, error) {
	var resp []MarketData
	return resp, c.SendHTTPRequest(ctx, coinsbitMarkets, nil, &resp)
}

// GetTickers returns snapshots for every market keyed by exchange pair name
func (c *Coinsbit) GetTickers(ctx context.Context) (map[string]TickerItem, error) {
	var resp map[string]TickerItem
	return resp, c.SendHTTPRequest(ctx, coinsbitTickers, nil, &resp)
}

// GetTicker returns the snapshot for a single exchange pair name
func (c *Coinsbit) GetTicker(ctx context.Context, marketName string) (*TickerData, error) {
	vals := url.Values{}
	vals.Set("market", marketName)
	var resp TickerData
	return &resp, c.SendHTTPRequest(ctx, coinsbitTicker, vals, &resp)
}

// GetOrderBookSide returns one side of the order book for an exchange pair
// name. Side is "buy" or "sell".
func (c *Coinsbit) GetOrderBookSide(ctx context.Context, marketName, side string, offset, limit int64) (*BookResult, error) {
	vals := url.Values{}
	vals.Set("market", marketName)
	vals.Set("side", side)
	vals.Set("offset", strconv.FormatInt(offset, 10))
	if limit > 0 {
		vals.Set("limit", strconv.FormatInt(limit, 10))
	}
	var resp BookResult
	return &resp, c.SendHTTPRequest(ctx, coinsbitBook, vals, &resp)
}

// GetTradeHistory returns public executions for an exchange pair name that
// occurred after the supplied trade id
func (c *Coinsbit) GetTradeHistory(ctx context.Context, marketName string, since, limit int64) ([]TradeData, error) {
	vals := url.Values{}
	vals.Set("market", marketName)
	vals.Set("since", strconv.FormatInt(since, 10))
	if limit > 0 {
		vals.Set("limit", strconv.FormatInt(limit, 10))
	}
	var resp []TradeData
	return resp, c.SendHTTPRequest(ctx, coinsbitHistoryResult, vals, &resp)
}

// NewOrder submits a limit order. Side is "buy" or "sell"; amount and price
// are already rendered at market precision.
func (c *Coinsbit) NewOrder(ctx context.Context, marketName, side, amount, price string) (*OrderData, error) {
	params := map[string]interface{}{
		"market": marketName,
		"side":   side,
		"amount": amount,
		"price":  price,
	}
	var resp OrderData
	return &resp, c.SendAuthenticatedHTTPRequest(ctx, coinsbitAPIOrder, coinsbitNewOrder, params, &resp)
}

// CancelExistingOrder cancels an open order on a market
func (c *Coinsbit) CancelExistingOrder(ctx context.Context, marketName string, orderID int64) (*OrderData, error) {
	params := map[string]interface{}{
		"market":  marketName,
		"orderId": orderID,
	}
	var resp OrderData
	return &resp, c.SendAuthenticatedHTTPRequest(ctx, coinsbitAPIOrder, coinsbitCancelOrder, params, &resp)
}

// GetOpenOrders returns the paginated open orders for a market
func (c *Coinsbit) GetOpenOrders(ctx context.Context, marketName string, offset, limit int64) (*OpenOrdersResult, error) {
	params := map[string]interface{}{
		"market": marketName,
		"offset": offset,
		"limit":  limit,
	}
	var resp OpenOrdersResult
	return &resp, c.SendAuthenticatedHTTPRequest(ctx, coinsbitAPIOrder, coinsbitOpenOrders, params, &resp)
}

// GetBalances returns all account balances keyed by currency id
func (c *Coinsbit) GetBalances(ctx context.Context) (map[string]BalanceData, error) {
	var resp map[string]BalanceData
	return resp, c.SendAuthenticatedHTTPRequest(ctx, coinsbitAPIAccount, coinsbitBalances, map[string]interface{}{}, &resp)
}

// GetOrderDeals returns the executions recorded against a single order
func (c *Coinsbit) GetOrderDeals(ctx context.Context, orderID, offset, limit int64) (*DealsResult, error) {
	params := map[string]interface{}{
		"orderId": orderID,
		"offset":  offset,
		"limit":   limit,
	}
	var resp DealsResult
	return &resp, c.SendAuthenticatedHTTPRequest(ctx, coinsbitAPIAccount, coinsbitOrderDeals, params, &resp)
}

// GetOrderHistoryList returns the paginated personal execution history across
// all markets
func (c *Coinsbit) GetOrderHistoryList(ctx context.Context, offset, limit int64) (*DealsResult, error) {
	params := map[string]interface{}{
		"offset": offset,
		"limit":  limit,
	}
	var resp DealsResult
	return &resp, c.SendAuthenticatedHTTPRequest(ctx, coinsbitAPIAccount, coinsbitOrderHistoryList, params, &resp)
}

// SendHTTPRequest sends an unauthenticated request to a public endpoint and
// decodes the envelope result into result
func (c *Coinsbit) SendHTTPRequest(ctx context.Context, endpoint string, vals url.Values, result interface{}) error {
	path := common.EncodeURLValues(
		c.API.Endpoints.URL+requestPath(coinsbitAPIPublic, endpoint), vals)
	var resp Response
	err := c.SendPayload(ctx, &request.Item{
		Method:  http.MethodGet,
		Path:    path,
		Result:  &resp,
		Verbose: c.Verbose,
	})
	if err != nil {
		return err
	}
	return c.unpackResponse(&resp, result)
}

// SendAuthenticatedHTTPRequest sends a signed request to a private endpoint
// and decodes the envelope result into result
func (c *Coinsbit) SendAuthenticatedHTTPRequest(ctx context.Context, api, endpoint string, params map[string]interface{}, result interface{}) error {
	if !c.AllowAuthenticatedRequest() {
		return fmt.Errorf(exchange.WarningAuthenticatedRequestWithoutCredentialsSet, c.Name)
	}

	rPath := requestPath(api, endpoint)
	body, payload, signature, err := c.signRequest(rPath, c.nonce.GetMilli().String(), params)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"Content-type":    "application/json",
		"X-TXC-APIKEY":    c.API.Credentials.Key,
		"X-TXC-PAYLOAD":   payload,
		"X-TXC-SIGNATURE": signature,
	}

	var resp Response
	err = c.SendPayload(ctx, &request.Item{
		Method:      http.MethodPost,
		Path:        c.API.Endpoints.URL + rPath,
		Headers:     headers,
		Body:        bytes.NewBuffer(body),
		Result:      &resp,
		AuthRequest: true,
		Verbose:     c.Verbose,
	})
	if err != nil {
		return err
	}
	return c.unpackResponse(&resp, result)
}

// signRequest builds the signed request body for a private endpoint. The body
// is the supplied parameters merged with the request path and nonce; the
// payload is its base64 form and the signature an HMAC-SHA512 of the payload
// keyed with the API secret.
func (c *Coinsbit) signRequest(path, nonceValue string, params map[string]interface{}) (body []byte, payload, signature string, err error) {
	auth := make(map[string]interface{}, len(params)+2)
	for k, v := range params {
		auth[k] = v
	}
	auth["request"] = "/" + path
	auth["nonce"] = nonceValue

	body, err = json.Marshal(auth)
	if err != nil {
		return nil, "", "", err
	}
	payload = crypto.Base64Encode(body)
	hmac := crypto.GetHMAC(crypto.HashSHA512,
		[]byte(payload),
		[]byte(c.API.Credentials.Secret))
	return body, payload, crypto.HexEncodeToString(hmac), nil
}

// unpackResponse validates the reply envelope and decodes its result
func (c *Coinsbit) unpackResponse(resp *Response, result interface{}) error {
	if !resp.Success {
		return fmt.Errorf("%s request failed: %s", c.Name, messageString(resp.Message))
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}

// messageString renders the envelope message field, which may arrive as a
// plain string or a list of validation failures
func messageString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "unknown error"
		}
		return s
	}
	return string(raw)
}
