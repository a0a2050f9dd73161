package models

import "github.com/shopspring/decimal"

// CoinRef is the minimal identifying record for a coin from the external
// catalog. Refreshed on every coin-list fetch, never persisted except as the
// user's last selection.
type CoinRef struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Holding is a user-declared position: a coin id plus the USD amount put in.
// Only CoinID and InvestedUSD are persisted.
type Holding struct {
	CoinID      string          `json:"coin_id"`
	InvestedUSD decimal.Decimal `json:"invested_usd"`
}

// PriceMap is the latest batch of quotes keyed by coin id. A missing key
// means the price service had no quote for that coin.
type PriceMap map[string]decimal.Decimal

// DerivedHolding is a Holding plus fields computed against a PriceMap.
// TotalValue reports the invested amount (cost basis); MarketValue is the
// mark-to-market figure (coin amount times current price).
type DerivedHolding struct {
	Holding
	Price       decimal.Decimal `json:"price"`
	CoinAmount  decimal.Decimal `json:"coin_amount"`
	TotalValue  decimal.Decimal `json:"total_value"`
	MarketValue decimal.Decimal `json:"market_value"`
}
