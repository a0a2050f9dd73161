package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, logrus.New())
}

func TestMarkets(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("vs_currency") != "usd" {
			t.Fatalf("expected vs_currency=usd, got %s", q.Get("vs_currency"))
		}
		if q.Get("order") != "market_cap_desc" {
			t.Fatalf("expected market_cap_desc order, got %s", q.Get("order"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000,
			 "market_cap_rank":1,"price_change_percentage_24h":1.5,
			 "sparkline_in_7d":{"price":[49000,50000]}},
			{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":2000,"market_cap_rank":2,
			 "price_change_percentage_24h":-0.3}
		]`))
	})

	markets, err := c.Markets(context.Background(), "usd", nil)
	if err != nil {
		t.Fatalf("markets failed: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(markets))
	}
	if markets[0].ID != "bitcoin" || markets[0].CurrentPrice != 50000 {
		t.Fatalf("unexpected first market: %+v", markets[0])
	}
	if markets[0].Sparkline == nil || len(markets[0].Sparkline.Price) != 2 {
		t.Fatalf("expected sparkline data, got %+v", markets[0].Sparkline)
	}
	if markets[1].Sparkline != nil {
		t.Fatalf("expected no sparkline for second market")
	}
}

func TestSimplePrice(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ids") != "bitcoin,ethereum" {
			t.Fatalf("unexpected ids %s", r.URL.Query().Get("ids"))
		}
		w.Write([]byte(`{"bitcoin":{"usd":50000},"ethereum":{"usd":2000.5}}`))
	})

	prices, err := c.SimplePrice(context.Background(), []string{"bitcoin", "ethereum"}, "usd")
	if err != nil {
		t.Fatalf("simple price failed: %v", err)
	}
	if !prices["bitcoin"].Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected bitcoin 50000, got %s", prices["bitcoin"])
	}
	if !prices["ethereum"].Equal(decimal.NewFromFloat(2000.5)) {
		t.Fatalf("expected ethereum 2000.5, got %s", prices["ethereum"])
	}
}

func TestSimplePrice_EmptyIDs(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty id set")
	})
	prices, err := c.SimplePrice(context.Background(), nil, "usd")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("expected empty price map, got %v", prices)
	}
}

func TestSimplePrice_MissingQuote(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":50000}}`))
	})
	prices, err := c.SimplePrice(context.Background(), []string{"bitcoin", "unknowncoin"}, "usd")
	if err != nil {
		t.Fatalf("simple price failed: %v", err)
	}
	if _, ok := prices["unknowncoin"]; ok {
		t.Fatal("expected unknowncoin to be absent from the price map")
	}
}

func TestTrendingMarkets(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/trending":
			w.Write([]byte(`{"coins":[{"item":{"id":"pepe"}},{"item":{"id":"bonk"}}]}`))
		case "/coins/markets":
			if r.URL.Query().Get("ids") != "pepe,bonk" {
				t.Fatalf("expected trending ids, got %s", r.URL.Query().Get("ids"))
			}
			w.Write([]byte(`[{"id":"pepe","symbol":"pepe","name":"Pepe","current_price":0.00001,"price_change_percentage_24h":12}]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	markets, err := c.TrendingMarkets(context.Background(), "usd")
	if err != nil {
		t.Fatalf("trending markets failed: %v", err)
	}
	if len(markets) != 1 || markets[0].ID != "pepe" {
		t.Fatalf("unexpected trending markets: %+v", markets)
	}
}

func TestMarketChart(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin/market_chart" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("days") != "30" || q.Get("interval") != "daily" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"prices":[[1700000000000,37000.5],[1700086400000,37500.25]]}`))
	})

	chart, err := c.MarketChart(context.Background(), "bitcoin", "usd", 30, true)
	if err != nil {
		t.Fatalf("market chart failed: %v", err)
	}
	if len(chart.Prices) != 2 {
		t.Fatalf("expected 2 points, got %d", len(chart.Prices))
	}
	if chart.Prices[0][1] != 37000.5 {
		t.Fatalf("expected first price 37000.5, got %v", chart.Prices[0][1])
	}
}

func TestFetchError_HTTPStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Markets(context.Background(), "usd", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Status != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", fe.Status)
	}
}

func TestFetchError_BadJSON(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := c.CoinDetail(context.Background(), "bitcoin")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T (%v)", err, err)
	}
	if fe.Err == nil {
		t.Fatal("expected a wrapped cause")
	}
}

func TestFetchError_Network(t *testing.T) {
	c := New("http://127.0.0.1:1", logrus.New())
	_, err := c.Trending(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Status != 0 {
		t.Fatalf("expected zero status for transport failure, got %d", fe.Status)
	}
}
