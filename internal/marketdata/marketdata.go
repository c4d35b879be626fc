// Package marketdata fetches stock quotes, crypto quotes and exchange rates.
// Crypto prices fall back to a fixed simulated table when no CoinMarketCap key is
// configured or the call fails.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"

	"financeapi/internal/config"
	"financeapi/internal/logger"
	"financeapi/internal/model"
)

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrQuoteUnavailable = errors.New("quote unavailable")
)

// Kind selects the quote source.
type Kind string

const (
	KindStock  Kind = "stock"
	KindCrypto Kind = "crypto"
)

func (k Kind) Valid() bool {
	return k == KindStock || k == KindCrypto
}

// Quote is the latest price of one symbol.
type Quote struct {
	Symbol    string            `json:"symbol"`
	Kind      Kind              `json:"kind"`
	Price     decimal.Decimal   `json:"price"`
	Currency  model.Currency    `json:"currency"`
	Source    model.PriceSource `json:"source"`
	Simulated bool              `json:"simulated"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Rate is the price of one unit of From expressed in To.
type Rate struct {
	From      model.Currency  `json:"from"`
	To        model.Currency  `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Provider is the market data use case.
type Provider interface {
	Quote(ctx context.Context, kind Kind, symbol string, currency model.Currency) (*Quote, error)
	Rate(ctx context.Context, from, to model.Currency) (*Rate, error)
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,20}$`)

// simulatedCrypto is quoted in USD.
var simulatedCrypto = map[string]string{
	"BTC":   "45000",
	"ETH":   "3000",
	"ADA":   "0.5",
	"DOT":   "20",
	"LINK":  "15",
	"UNI":   "8",
	"AAVE":  "120",
	"MATIC": "1.2",
}

const simulatedDefault = "100"

// Client talks to Yahoo Finance, CoinMarketCap and exchangerate-api.
type Client struct {
	cfg   config.MarketDataConfig
	http  *http.Client
	cache *cache.Cache
	now   func() time.Time
}

var _ Provider = (*Client)(nil)

// New builds a client with an instrumented transport and a cookie jar. Yahoo
// hands out session cookies on the first request and expects them back.
func New(cfg config.MarketDataConfig) *Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("failed to create cookie jar", "error", err)
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Jar:       jar,
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cache: cache.New(ttl, 2*ttl),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeSymbol upper-cases and checks a ticker.
func NormalizeSymbol(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	return s, nil
}

// Quote returns the latest price of symbol. currency is the conversion target for
// crypto quotes; stock quotes are reported in their listing currency.
func (c *Client) Quote(ctx context.Context, kind Kind, symbol string, currency model.Currency) (*Quote, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = model.CurrencyUSD
	}
	key := fmt.Sprintf("quote:%s:%s:%s", kind, symbol, currency)
	if v, ok := c.cache.Get(key); ok {
		q := v.(Quote)
		return &q, nil
	}

	var q *Quote
	switch kind {
	case KindStock:
		q, err = c.yahooQuote(ctx, symbol)
	case KindCrypto:
		q, err = c.cryptoQuote(ctx, symbol, currency)
	default:
		return nil, fmt.Errorf("unknown quote kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	if !q.Simulated {
		c.cache.Set(key, *q, cache.DefaultExpiration)
	}
	return q, nil
}

func (c *Client) yahooQuote(ctx context.Context, symbol string) (*Quote, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&range=1d", strings.TrimRight(c.cfg.YahooBaseURL, "/"), url.PathEscape(symbol))
	doc, err := c.getJSON(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrQuoteUnavailable, symbol, err)
	}
	price, err := decimalAt(doc, "$.chart.result[0].meta.regularMarketPrice")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrQuoteUnavailable, symbol, err)
	}
	cur := model.CurrencyUSD
	if v, err := jsonpath.Get("$.chart.result[0].meta.currency", doc); err == nil {
		if s, ok := v.(string); ok && s != "" {
			cur = model.Currency(strings.ToUpper(s))
		}
	}
	return &Quote{
		Symbol:    symbol,
		Kind:      KindStock,
		Price:     price,
		Currency:  cur,
		Source:    model.PriceYahoo,
		FetchedAt: c.now(),
	}, nil
}

func (c *Client) cryptoQuote(ctx context.Context, symbol string, currency model.Currency) (*Quote, error) {
	if c.cfg.CoinMarketCapKey == "" {
		return c.simulated(symbol), nil
	}
	u := fmt.Sprintf("%s/cryptocurrency/quotes/latest?symbol=%s&convert=%s",
		strings.TrimRight(c.cfg.CoinMarketCapBaseURL, "/"), url.QueryEscape(symbol), url.QueryEscape(string(currency)))
	doc, err := c.getJSON(ctx, u, map[string]string{"X-CMC_PRO_API_KEY": c.cfg.CoinMarketCapKey})
	if err == nil {
		var price decimal.Decimal
		price, err = decimalAt(doc, fmt.Sprintf(`$.data["%s"].quote["%s"].price`, symbol, currency))
		if err == nil {
			return &Quote{
				Symbol:    symbol,
				Kind:      KindCrypto,
				Price:     price,
				Currency:  currency,
				Source:    model.PriceCoinMarketCap,
				FetchedAt: c.now(),
			}, nil
		}
	}
	logger.FromContext(ctx).Warn("coinmarketcap quote failed, using simulated price", "symbol", symbol, "error", err)
	return c.simulated(symbol), nil
}

// SimulatedPrice is the fixed USD price used when live crypto quotes are unavailable.
func SimulatedPrice(symbol string) decimal.Decimal {
	p, ok := simulatedCrypto[strings.ToUpper(symbol)]
	if !ok {
		p = simulatedDefault
	}
	return decimal.RequireFromString(p)
}

func (c *Client) simulated(symbol string) *Quote {
	return &Quote{
		Symbol:    symbol,
		Kind:      KindCrypto,
		Price:     SimulatedPrice(symbol),
		Currency:  model.CurrencyUSD,
		Source:    model.PriceCoinMarketCap,
		Simulated: true,
		FetchedAt: c.now(),
	}
}

// Rate returns the exchange rate from -> to. Identical currencies yield 1.
func (c *Client) Rate(ctx context.Context, from, to model.Currency) (*Rate, error) {
	if from == to {
		return &Rate{From: from, To: to, Rate: decimal.NewFromInt(1), FetchedAt: c.now()}, nil
	}
	key := fmt.Sprintf("rate:%s:%s", from, to)
	if v, ok := c.cache.Get(key); ok {
		r := v.(Rate)
		return &r, nil
	}
	u := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.ExchangeRateBaseURL, "/"), url.PathEscape(string(from)))
	doc, err := c.getJSON(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrQuoteUnavailable, from, to, err)
	}
	rate, err := decimalAt(doc, fmt.Sprintf(`$.rates["%s"]`, to))
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrQuoteUnavailable, from, to, err)
	}
	r := Rate{From: from, To: to, Rate: rate, FetchedAt: c.now()}
	c.cache.Set(key, r, cache.DefaultExpiration)
	return &r, nil
}

func (c *Client) getJSON(ctx context.Context, u string, headers map[string]string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "financeapi/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	var doc any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

// decimalAt extracts a number at path. jsonpath may wrap single answers in a list.
func decimalAt(doc any, path string) (decimal.Decimal, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", path, err)
	}
	if list, ok := v.([]any); ok && len(list) > 0 {
		v = list[0]
	}
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, fmt.Errorf("parse %q: not a number: %v", path, v)
	}
}
