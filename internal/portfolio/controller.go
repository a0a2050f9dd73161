package portfolio

import (
	"context"
	"encoding/json"
	"sync"

	"coindash/internal/models"
	"coindash/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MarketClient is the slice of the market-data client the controller needs.
type MarketClient interface {
	SimplePrice(ctx context.Context, ids []string, currency string) (models.PriceMap, error)
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	Holdings         []models.DerivedHolding `json:"holdings"`
	TotalValue       decimal.Decimal         `json:"total_value"`
	TotalMarketValue decimal.Decimal         `json:"total_market_value"`
	SelectedCoin     *models.CoinRef         `json:"selected_coin,omitempty"`
	SearchTerm       string                  `json:"search_term"`
	EditingCoinID    string                  `json:"editing_coin_id,omitempty"`
	Loading          bool                    `json:"loading"`
	Error            string                  `json:"error,omitempty"`
}

// Controller owns the portfolio state. All mutations are atomic under one
// lock; price refreshes carry a sequence number so a slow response started
// earlier can never clobber the result of a later one.
type Controller struct {
	mu       sync.Mutex
	holdings []models.Holding
	derived  []models.DerivedHolding
	prices   models.PriceMap
	selected *models.CoinRef
	search   string
	editing  string
	loading  bool
	lastErr  string
	seq      uint64

	currency string
	store    store.Store
	market   MarketClient
	log      *logrus.Logger
}

func NewController(st store.Store, market MarketClient, log *logrus.Logger) *Controller {
	return &Controller{
		prices:   models.PriceMap{},
		currency: "usd",
		store:    st,
		market:   market,
		log:      log,
	}
}

// Initialize hydrates holdings and the selected coin from the store, then
// fetches quotes for whatever was loaded. A corrupt or missing record starts
// the portfolio empty; only a warning is logged.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if raw, ok, err := c.store.Get(store.KeyHoldings); err != nil {
		c.log.Warnf("load holdings: %v", err)
	} else if ok {
		var hs []models.Holding
		if err := json.Unmarshal([]byte(raw), &hs); err != nil {
			c.log.Warnf("failed to parse stored holdings, starting empty: %v", err)
		} else {
			c.holdings = hs
		}
	}
	if raw, ok, err := c.store.Get(store.KeySelectedCoin); err != nil {
		c.log.Warnf("load selected coin: %v", err)
	} else if ok {
		var coin models.CoinRef
		if err := json.Unmarshal([]byte(raw), &coin); err != nil {
			c.log.Warnf("failed to parse stored selected coin: %v", err)
		} else {
			c.selected = &coin
			c.search = coin.Name
		}
	}
	c.derived = Derive(c.holdings, c.prices)
	c.mu.Unlock()

	c.RefreshPrices(ctx)
}

// AddHolding appends a new position. The amount must be positive and the coin
// must not already be held; on success the pending selection and search term
// are consumed and a price refresh runs for the grown set.
func (c *Controller) AddHolding(ctx context.Context, coin models.CoinRef, investedUSD decimal.Decimal) error {
	c.mu.Lock()
	if coin.ID == "" {
		c.mu.Unlock()
		return &models.ValidationError{Field: "coin_id", Msg: "a coin must be selected"}
	}
	if !investedUSD.IsPositive() {
		c.mu.Unlock()
		return &models.ValidationError{Field: "invested_usd", Msg: "amount must be a positive number"}
	}
	for _, h := range c.holdings {
		if h.CoinID == coin.ID {
			c.mu.Unlock()
			return &models.ValidationError{Field: "coin_id", Msg: "coin already in portfolio, update the amount instead"}
		}
	}
	c.holdings = append(c.holdings, models.Holding{CoinID: coin.ID, InvestedUSD: investedUSD})
	c.selected = nil
	c.search = ""
	c.derived = Derive(c.holdings, c.prices)
	c.persistHoldingsLocked()
	c.persistSelectedLocked()
	c.mu.Unlock()

	c.RefreshPrices(ctx)
	return nil
}

// EditHolding replaces the invested amount of an existing position and
// re-derives against the last known quotes; no re-fetch is forced.
func (c *Controller) EditHolding(coinID string, investedUSD decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !investedUSD.IsPositive() {
		return &models.ValidationError{Field: "invested_usd", Msg: "amount must be a positive number"}
	}
	found := false
	for i := range c.holdings {
		if c.holdings[i].CoinID == coinID {
			c.holdings[i].InvestedUSD = investedUSD
			found = true
			break
		}
	}
	if !found {
		return models.ErrNotFound
	}
	if c.editing == coinID {
		c.editing = ""
	}
	c.derived = Derive(c.holdings, c.prices)
	c.persistHoldingsLocked()
	return nil
}

// DeleteHolding removes a position and exits any in-progress edit on it.
// Deleting a coin that is not held is a no-op. Confirmation is the
// presentation layer's job.
func (c *Controller) DeleteHolding(coinID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.holdings[:0]
	for _, h := range c.holdings {
		if h.CoinID != coinID {
			kept = append(kept, h)
		}
	}
	c.holdings = kept
	if c.editing == coinID {
		c.editing = ""
	}
	c.derived = Derive(c.holdings, c.prices)
	c.persistHoldingsLocked()
}

// RefreshPrices fetches quotes for the currently held coins and re-derives.
// Overlapping calls are resolved last-started-wins: a response belonging to a
// superseded request is discarded. Fetch failure keeps the previous derived
// data and raises the error flag instead of returning an error.
func (c *Controller) RefreshPrices(ctx context.Context) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.holdings))
	for _, h := range c.holdings {
		ids = append(ids, h.CoinID)
	}
	c.seq++
	seq := c.seq
	c.loading = true
	currency := c.currency
	c.mu.Unlock()

	prices, err := c.market.SimplePrice(ctx, ids, currency)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// a newer refresh was started while this one was in flight
		return
	}
	c.loading = false
	if err != nil {
		c.log.Warnf("price refresh failed: %v", err)
		c.lastErr = "failed to fetch prices"
		return
	}
	c.lastErr = ""
	c.prices = prices
	c.derived = Derive(c.holdings, prices)
}

// ResolvePendingCoinSelection consumes a navigation-supplied coin id: on a
// match in availableCoins the coin becomes the pending selection, otherwise
// ErrNotFound surfaces a "coin not found" state. The caller owns clearing the
// parameter so it is applied at most once.
func (c *Controller) ResolvePendingCoinSelection(coinID string, availableCoins []models.CoinRef) error {
	for _, coin := range availableCoins {
		if coin.ID == coinID {
			c.SelectCoin(coin)
			return nil
		}
	}
	return models.ErrNotFound
}

// SelectCoin sets the pending selection (a search match picked by the user)
// and persists it as the last-selected coin.
func (c *Controller) SelectCoin(coin models.CoinRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &coin
	c.search = coin.Name
	c.persistSelectedLocked()
}

// SetSearchTerm updates the pending search term. Typing clears the current
// selection; clearing the term does too.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
	c.selected = nil
	c.persistSelectedLocked()
}

// StartEdit marks one row as being edited. Starting an edit on another row
// implicitly cancels the previous one.
func (c *Controller) StartEdit(coinID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range c.holdings {
		if h.CoinID == coinID {
			c.editing = coinID
			return nil
		}
	}
	return models.ErrNotFound
}

// CancelEdit discards the in-progress edit, if any.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = ""
}

// Snapshot returns a copy of the state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	derived := make([]models.DerivedHolding, len(c.derived))
	copy(derived, c.derived)
	var selected *models.CoinRef
	if c.selected != nil {
		cp := *c.selected
		selected = &cp
	}
	return Snapshot{
		Holdings:         derived,
		TotalValue:       TotalValue(derived),
		TotalMarketValue: TotalMarketValue(derived),
		SelectedCoin:     selected,
		SearchTerm:       c.search,
		EditingCoinID:    c.editing,
		Loading:          c.loading,
		Error:            c.lastErr,
	}
}

func (c *Controller) persistHoldingsLocked() {
	b, err := json.Marshal(c.holdings)
	if err != nil {
		c.log.Warnf("marshal holdings: %v", err)
		return
	}
	if err := c.store.Set(store.KeyHoldings, string(b)); err != nil {
		c.log.Warnf("persist holdings: %v", err)
	}
}

func (c *Controller) persistSelectedLocked() {
	if c.selected == nil {
		if err := c.store.Remove(store.KeySelectedCoin); err != nil {
			c.log.Warnf("clear selected coin: %v", err)
		}
		return
	}
	b, err := json.Marshal(c.selected)
	if err != nil {
		c.log.Warnf("marshal selected coin: %v", err)
		return
	}
	if err := c.store.Set(store.KeySelectedCoin, string(b)); err != nil {
		c.log.Warnf("persist selected coin: %v", err)
	}
}
