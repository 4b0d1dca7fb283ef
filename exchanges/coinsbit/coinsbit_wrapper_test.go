package coinsbit

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoadapters/coinsbit/common"
	"github.com/cryptoadapters/coinsbit/config"
	"github.com/cryptoadapters/coinsbit/currency"
	"github.com/cryptoadapters/coinsbit/exchanges/order"
)

const testMarketsResult = `[
	{"name":"ETH_BTC","stock":"ETH","money":"BTC","stockPrec":"6","moneyPrec":"8","feePrec":"8","minAmount":"0.001"},
	{"name":"LTC_USDT","stock":"LTC","money":"USDT","stockPrec":"4","moneyPrec":"2","feePrec":"4","minAmount":"0.01"}
]`

// marketsHandler registers the canned markets endpoint on a mux
func marketsHandler(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/public/markets", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, testMarketsResult)
	})
}

func TestUnderscoreToSlash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ETH/BTC", underscoreToSlash("ETH_BTC"))
	assert.Equal(t, "ETH/USDT", underscoreToSlash("eth_usdt"))
	assert.Equal(t, "BTC/USD", underscoreToSlash("XBT_USD"))
	assert.Equal(t, "ETH", underscoreToSlash("ETH"))
	assert.Equal(t, "ETH", underscoreToSlash("ETH_"))
}

func TestSafeCurrencyCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ETH", safeCurrencyCode("eth"))
	assert.Equal(t, "BTC", safeCurrencyCode("XBT"))
}

func TestToPrecision(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.123456", toPrecision(0.123456789, 6))
	assert.Equal(t, "0.1234", toPrecision(0.123456789, 4))
	assert.Equal(t, "10", toPrecision(10, 2))
	assert.Equal(t, "0.001", toPrecision(0.0019, 3))
}

func TestParseMarket(t *testing.T) {
	t.Parallel()
	var d MarketData
	require.NoError(t, json.Unmarshal(
		[]byte(`{"name":"ETH_BTC","stock":"ETH","money":"BTC","stockPrec":"6","moneyPrec":"8","feePrec":"8","minAmount":"0.001"}`),
		&d))

	m, err := parseMarket(&d)
	require.NoError(t, err)
	assert.Equal(t, "ETH_BTC", m.ID)
	assert.Equal(t, "ETH/BTC", m.Symbol)
	assert.Equal(t, currency.NewPairWithDelimiter("ETH", "BTC", "/"), m.Pair)
	assert.Equal(t, "ETH", m.BaseID)
	assert.Equal(t, "BTC", m.QuoteID)
	assert.True(t, m.Active)
	// moneyPrec feeds every precision dimension; stockPrec plays no part
	assert.Equal(t, 8, m.Precision.Amount)
	assert.Equal(t, 8, m.Precision.Price)
	assert.Equal(t, 8, m.Precision.Cost)
	assert.Equal(t, 0.001, m.Limits.Amount.Min)
	assert.NotEmpty(t, m.Info)
}

func TestParseTickerDerivedFields(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()

	var d TickerData
	require.NoError(t, json.Unmarshal(
		[]byte(`{"bid":"1","ask":"2","last":"10","open":"8","high":"12","low":"7","volume":"100","deal":"915.86"}`),
		&d))

	pair := currency.NewPairWithDelimiter("ETH", "BTC", "/")
	p, err := c.parseTicker(pair, &d)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Bid)
	assert.Equal(t, 2.0, p.Ask)
	assert.Equal(t, 10.0, p.Last)
	assert.Equal(t, 10.0, p.Close)
	assert.Equal(t, 2.0, p.Change)
	assert.Equal(t, 25.0, p.Percentage)
	assert.Equal(t, 9.0, p.Average)
	assert.Equal(t, 100.0, p.BaseVolume)
	assert.Equal(t, 1000.0, p.QuoteVolume)
	assert.Equal(t, "Coinsbit", p.ExchangeName)
	assert.NotEmpty(t, p.Info)
}

func TestParseTickerMissingRequiredField(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()

	var d TickerData
	require.NoError(t, json.Unmarshal([]byte(`{"bid":"1","ask":"2"}`), &d))

	_, err := c.parseTicker(currency.NewPairWithDelimiter("ETH", "BTC", "/"), &d)
	assert.Error(t, err)
}

func TestParseTickerVolAlias(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()

	var d TickerData
	require.NoError(t, json.Unmarshal(
		[]byte(`{"bid":"1","ask":"2","last":"10","vol":"100"}`), &d))

	p, err := c.parseTicker(currency.NewPairWithDelimiter("ETH", "BTC", "/"), &d)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.BaseVolume)
	// No opening price means no derived fields
	assert.Zero(t, p.Change)
	assert.Zero(t, p.Percentage)
	assert.Zero(t, p.Average)
}

func TestAssembleOrderBook(t *testing.T) {
	t.Parallel()
	sells := []BookOrderData{{Price: "10", Amount: "1"}}
	buys := []BookOrderData{{Price: "9", Amount: "2"}}

	book, err := assembleOrderBook(currency.NewPairWithDelimiter("ETH", "BTC", "/"), sells, buys)
	require.NoError(t, err)
	require.Len(t, book.Asks, 1)
	require.Len(t, book.Bids, 1)
	assert.Equal(t, 10.0, book.Asks[0].Price)
	assert.Equal(t, 1.0, book.Asks[0].Amount)
	assert.Equal(t, 9.0, book.Bids[0].Price)
	assert.Equal(t, 2.0, book.Bids[0].Amount)
}

func TestFetchOrderBook(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/public/book", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("side") {
		case "sell":
			writeResult(w, `{"offset":0,"limit":50,"total":2,"orders":[{"price":"11","amount":"1"},{"price":"10","amount":"3"}]}`)
		case "buy":
			writeResult(w, `{"offset":0,"limit":50,"total":2,"orders":[{"price":"8","amount":"2"},{"price":"9","amount":"1"}]}`)
		default:
			http.Error(w, "bad side", http.StatusBadRequest)
		}
	})
	c := testInstance(t, mux)

	book, err := c.FetchOrderBook(context.Background(), "ETH/BTC", 50)
	require.NoError(t, err)
	require.Len(t, book.Asks, 2)
	require.Len(t, book.Bids, 2)
	// Asks ascending, bids descending after processing
	assert.Equal(t, 10.0, book.Asks[0].Price)
	assert.Equal(t, 11.0, book.Asks[1].Price)
	assert.Equal(t, 9.0, book.Bids[0].Price)
	assert.Equal(t, 8.0, book.Bids[1].Price)
	assert.Equal(t, "Coinsbit", book.Exchange)
	assert.False(t, book.LastUpdated.IsZero())
}

func TestFetchOrderBookSideFailure(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/public/book", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("side") == "buy" {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		writeResult(w, `{"offset":0,"limit":50,"total":1,"orders":[{"price":"11","amount":"1"}]}`)
	})
	c := testInstance(t, mux)

	_, err := c.FetchOrderBook(context.Background(), "ETH/BTC", 50)
	assert.Error(t, err)
}

func TestFetchMarketsTransportFailure(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/public/markets", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	})
	c := testInstance(t, mux)

	markets, err := c.FetchMarkets(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, markets)
}

func TestFetchTicker(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/public/ticker", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ETH_BTC", r.URL.Query().Get("market"))
		writeResult(w, `{"bid":"1","ask":"2","last":"10","open":"8","high":"12","low":"7","volume":"100","deal":"915.86"}`)
	})
	c := testInstance(t, mux)

	p, err := c.FetchTicker(context.Background(), "ETH/BTC")
	require.NoError(t, err)
	assert.Equal(t, "ETH/BTC", p.Pair.String())
	assert.Equal(t, 10.0, p.Last)
}

func TestFetchTickersSkipsMalformedEntries(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/public/tickers", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, `{
			"ETH_BTC":{"at":1588587984,"ticker":{"bid":"1","ask":"2","last":"10","vol":"100"}},
			"LTC_USDT":{"at":1588587984,"ticker":{"bid":"1","ask":"2","vol":"100"}},
			"UNKNOWN_PAIR":{"at":1588587984,"ticker":{"bid":"1","ask":"2","last":"3","vol":"1"}}
		}`)
	})
	c := testInstance(t, mux)

	prices, err := c.FetchTickers(context.Background())
	require.NoError(t, err)
	// LTC_USDT lacks a last price, UNKNOWN_PAIR is not a listed market
	require.Len(t, prices, 1)
	assert.Equal(t, "ETH/BTC", prices[0].Pair.String())
	assert.Equal(t, time.Unix(1588587984, 0), prices[0].LastUpdated)
}

func TestCreateOrderRejectsMarketType(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()
	// No test server is wired up; the rejection must happen before any
	// network activity
	_, err := c.CreateOrder(context.Background(), "ETH/BTC", order.Market, order.Buy, 1, 0.05)
	assert.ErrorIs(t, err, errMarketOrdersNotSupported)
	assert.ErrorIs(t, err, common.ErrFunctionNotSupported)
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/order/new", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ETH_BTC", body["market"])
		assert.Equal(t, "buy", body["side"])
		assert.Equal(t, "0.12345678", body["amount"])
		assert.Equal(t, "0.05", body["price"])
		writeResult(w, `{"orderId":25749,"market":"ETH_BTC","price":"0.05","side":"buy","type":"limit",
			"timestamp":1537535284.828868,"dealMoney":"0","dealStock":"0","amount":"0.12345678",
			"takerFee":"0.002","makerFee":"0.002","left":"0.12345678","dealFee":"0"}`)
	})
	c := testInstance(t, mux)

	d, err := c.CreateOrder(context.Background(), "ETH/BTC", order.Limit, order.Buy, 0.123456789, 0.05)
	require.NoError(t, err)
	assert.Equal(t, "25749", d.ID)
	assert.Equal(t, "Coinsbit", d.Exchange)
	assert.Equal(t, order.Open, d.Status)
	assert.Equal(t, order.Limit, d.Type)
	assert.Equal(t, order.Buy, d.Side)
	assert.Equal(t, "ETH/BTC", d.Pair.String())
	assert.Equal(t, 0.12345678, d.Amount)
	assert.Zero(t, d.ExecutedAmount)
	assert.Equal(t, 0.12345678, d.RemainingAmount)
	assert.Equal(t, currency.BTC, d.Fee.Currency)
	assert.Equal(t, 0.002, d.Fee.Rate)
	assert.Equal(t, time.Unix(0, int64(1537535284.828868*float64(time.Second))), d.Date)
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/order/cancel", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ETH_BTC", body["market"])
		assert.Equal(t, float64(25749), body["orderId"])
		writeResult(w, `{"orderId":25749,"market":"ETH_BTC","price":"0.05","side":"buy","type":"limit",
			"timestamp":1537535284.828868,"dealMoney":"0.001","dealStock":"0.02","amount":"0.1",
			"takerFee":"0.002","makerFee":"0.002","left":"0.08","dealFee":"0.000002"}`)
	})
	c := testInstance(t, mux)

	d, err := c.CancelOrder(context.Background(), "25749", "ETH/BTC")
	require.NoError(t, err)
	assert.Equal(t, "25749", d.ID)
	assert.InDelta(t, 0.02, d.ExecutedAmount, 1e-9)
	assert.Equal(t, 0.08, d.RemainingAmount)
	assert.InDelta(t, 0.001, d.Cost, 1e-9)
}

func TestCancelOrderInvalidID(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()
	_, err := c.CancelOrder(context.Background(), "not-a-number", "ETH/BTC")
	assert.ErrorIs(t, err, errInvalidOrderID)
}

func TestFetchOrdersDefaultLimit(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(defaultListLimit), body["limit"])
		writeResult(w, `{"offset":0,"limit":50,"total":1,"result":[
			{"id":3900714,"market":"ETH_BTC","price":"0.05","side":"sell","type":"limit",
			"timestamp":1537535284.828868,"dealMoney":"0","dealStock":"0","amount":"0.1",
			"takerFee":"0.002","makerFee":"0.002","left":"0.1","dealFee":"0"}]}`)
	})
	c := testInstance(t, mux)

	res, err := c.FetchOrders(context.Background(), "ETH/BTC", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "3900714", res.Orders[0].ID)
	assert.Equal(t, order.Sell, res.Orders[0].Side)
	assert.Equal(t, order.Open, res.Orders[0].Status)
}

func TestFetchOrder(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/account/order", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, `{"offset":0,"limit":50,"records":[
			{"id":6,"time":1533310924.935978,"fee":"0.00000001","price":"0.05","amount":"0.02","dealOrderId":25749,"role":2,"deal":"0.001"},
			{"id":7,"time":1533310925.935978,"fee":"0.00000002","price":"0.05","amount":"0.03","dealOrderId":25749,"role":2,"deal":"0.0015"}]}`)
	})
	c := testInstance(t, mux)

	d, err := c.FetchOrder(context.Background(), "25749", "")
	require.NoError(t, err)
	assert.Equal(t, "25749", d.ID)
	assert.Equal(t, order.Open, d.Status)
	require.Len(t, d.Trades, 2)
	assert.InDelta(t, 0.05, d.ExecutedAmount, 1e-9)
	assert.InDelta(t, 0.0025, d.Cost, 1e-9)
	assert.InDelta(t, 0.00000003, d.Fee.Cost, 1e-12)
	assert.True(t, d.LastTradeTime.After(d.Date))
}

func TestFetchOrderNotFound(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/account/order", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, `{"offset":0,"limit":50,"records":[]}`)
	})
	c := testInstance(t, mux)

	_, err := c.FetchOrder(context.Background(), "404404", "")
	assert.ErrorIs(t, err, errOrderNotFound)
}

func TestFetchTrades(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/public/history/result", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, `[{"id":4,"type":"sell","time":1533310924.935978,"amount":"0.9","price":"0.001"}]`)
	})
	c := testInstance(t, mux)

	trades, err := c.FetchTrades(context.Background(), "ETH/BTC", 0, 0)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "4", trades[0].TID)
	assert.Equal(t, order.Sell, trades[0].Side)
	assert.Equal(t, 0.001, trades[0].Price)
	assert.Equal(t, 0.9, trades[0].Amount)
	assert.Equal(t, "ETH/BTC", trades[0].CurrencyPair.String())
	assert.Equal(t, time.Unix(0, int64(1533310924.935978*float64(time.Second))), trades[0].Timestamp)
}

func TestFetchMyTrades(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	mux.HandleFunc("/api/v1/account/order_history_list", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, `{"offset":0,"limit":50,"records":[
			{"id":6,"time":1533310924.935978,"side":"buy","fee":"0.00000001","price":"0.05","amount":"0.02","dealOrderId":25749,"role":2,"deal":"0.001"}]}`)
	})
	c := testInstance(t, mux)

	trades, err := c.FetchMyTrades(context.Background(), "ETH/BTC", 0, 0)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "6", trades[0].TID)
	assert.Equal(t, "25749", trades[0].OrderID)
	assert.Equal(t, order.Buy, trades[0].Side)
	assert.Equal(t, "ETH/BTC", trades[0].CurrencyPair.String())
}

func TestFetchBalance(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/account/balances", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, `{"BTC":{"available":"2","freeze":"1"},"ETH":{"available":"0.5","freeze":"0"}}`)
	})
	c := testInstance(t, mux)

	h, err := c.FetchBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Coinsbit", h.Exchange)
	require.Len(t, h.Currencies, 2)

	btc, ok := h.GetBalance(currency.BTC)
	require.True(t, ok)
	assert.Equal(t, 2.0, btc.Free)
	assert.Equal(t, 1.0, btc.Used)
	assert.Equal(t, 3.0, btc.Total)
}

func TestMarketLookupUnknownSymbol(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	marketsHandler(mux)
	c := testInstance(t, mux)

	_, err := c.FetchTicker(context.Background(), "DOGE/BTC")
	assert.ErrorIs(t, err, errMarketNotFound)
}

func TestLoadMarketsCachesFirstResult(t *testing.T) {
	t.Parallel()
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/public/markets", func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeResult(w, testMarketsResult)
	})
	c := testInstance(t, mux)

	require.NoError(t, c.LoadMarkets(context.Background()))
	require.NoError(t, c.LoadMarkets(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestSetupDisabled(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()
	require.True(t, c.Enabled)

	err := c.Setup(nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Enabled = false
	require.NoError(t, c.Setup(cfg))
	assert.False(t, c.Enabled)
}

func TestSetupCredentials(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()

	require.NoError(t, c.Setup(testConfig()))
	assert.True(t, c.AllowAuthenticatedRequest())
	assert.Equal(t, testAPIKey, c.API.Credentials.Key)
}

func TestParseOrderBadSide(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()

	var d OrderData
	require.NoError(t, json.Unmarshal(
		[]byte(`{"orderId":1,"market":"ETH_BTC","price":"1","side":"hold","type":"limit","amount":"1","left":"1"}`),
		&d))
	_, err := c.parseOrder(&d)
	assert.Error(t, err)
}

func TestPairForMarketIDFallback(t *testing.T) {
	t.Parallel()
	c := new(Coinsbit)
	c.SetDefaults()

	p := c.pairForMarketID("DOGE_USDT")
	assert.Equal(t, "DOGE/USDT", p.String())
	assert.True(t, c.pairForMarketID("DOGE").IsEmpty())
}

func testConfig() *config.Exchange {
	return &config.Exchange{
		Name:    "Coinsbit",
		Enabled: true,
		API: config.APIConfig{
			AuthenticatedSupport: true,
			Credentials: config.APICredentialsConfig{
				Key:    testAPIKey,
				Secret: testAPISecret,
			},
		},
	}
}
