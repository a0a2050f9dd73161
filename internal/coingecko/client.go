package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coindash/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// FetchError is the tagged failure every client call surfaces instead of a
// bare transport error. Status is zero when the request never got a response.
type FetchError struct {
	Status int
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client wraps the public price API. All methods return a *FetchError on any
// transport, HTTP or decode failure.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *logrus.Logger
}

func New(baseURL string, log *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	c.log.Debugf("GET %s", u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Status: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{URL: u, Err: err}
	}
	return nil
}

// Markets lists coins ordered by market cap descending. When ids is non-empty
// the listing is restricted to those coin ids.
func (c *Client) Markets(ctx context.Context, currency string, ids []string) ([]Market, error) {
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", "50")
	q.Set("page", "1")
	q.Set("sparkline", "true")
	q.Set("price_change_percentage", "1h,24h,7d")
	if len(ids) > 0 {
		q.Set("ids", strings.Join(ids, ","))
	}
	var out []Market
	if err := c.get(ctx, "/coins/markets", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CoinList returns the catalog as minimal refs, in market-cap order.
func (c *Client) CoinList(ctx context.Context, currency string) ([]models.CoinRef, error) {
	markets, err := c.Markets(ctx, currency, nil)
	if err != nil {
		return nil, err
	}
	refs := make([]models.CoinRef, 0, len(markets))
	for _, m := range markets {
		refs = append(refs, models.CoinRef{ID: m.ID, Symbol: m.Symbol, Name: m.Name})
	}
	return refs, nil
}

// SimplePrice looks up current quotes for a batch of coin ids. Coins the API
// has no quote for are simply absent from the returned map.
func (c *Client) SimplePrice(ctx context.Context, ids []string, currency string) (models.PriceMap, error) {
	if len(ids) == 0 {
		return models.PriceMap{}, nil
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", currency)
	var raw map[string]map[string]float64
	if err := c.get(ctx, "/simple/price", q, &raw); err != nil {
		return nil, err
	}
	prices := make(models.PriceMap, len(raw))
	for id, byCurrency := range raw {
		if v, ok := byCurrency[currency]; ok {
			prices[id] = decimal.NewFromFloat(v)
		}
	}
	return prices, nil
}

// Trending returns the ids of currently trending coins.
func (c *Client) Trending(ctx context.Context) ([]string, error) {
	var raw trendingResponse
	if err := c.get(ctx, "/search/trending", nil, &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw.Coins))
	for _, tc := range raw.Coins {
		ids = append(ids, tc.Item.ID)
	}
	return ids, nil
}

// TrendingMarkets resolves trending ids and fetches their market rows in one
// call, mirroring the two-step lookup the dashboard does.
func (c *Client) TrendingMarkets(ctx context.Context, currency string) ([]Market, error) {
	ids, err := c.Trending(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Market{}, nil
	}
	return c.Markets(ctx, currency, ids)
}

// CoinDetail fetches the detail record for one coin.
func (c *Client) CoinDetail(ctx context.Context, id string) (*CoinDetail, error) {
	var out CoinDetail
	if err := c.get(ctx, "/coins/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarketChart fetches (timestamp, price) history for a coin. When daily is
// set the API buckets the series to one point per day.
func (c *Client) MarketChart(ctx context.Context, id, currency string, days int, daily bool) (*MarketChart, error) {
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("days", strconv.Itoa(days))
	if daily {
		q.Set("interval", "daily")
	}
	var out MarketChart
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
