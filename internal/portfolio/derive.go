// Package portfolio holds the derivation engine and the controller that own
// the simulated holdings: how declared positions, coin metadata and live
// quotes are combined, kept consistent and persisted.
package portfolio

import (
	"coindash/internal/models"
	"github.com/shopspring/decimal"
)

// Derive computes the per-holding view against a batch of quotes. It is pure:
// one output per input holding, input order preserved, no network or storage.
//
// A coin with no quote (or a zero quote) derives a zero coin amount rather
// than dividing by zero. TotalValue reports the invested amount: the
// dashboard has always tracked value at cost basis, so the mark-to-market
// figure is carried separately as MarketValue.
func Derive(holdings []models.Holding, prices models.PriceMap) []models.DerivedHolding {
	derived := make([]models.DerivedHolding, 0, len(holdings))
	for _, h := range holdings {
		price := prices[h.CoinID] // zero value when absent
		coinAmount := decimal.Zero
		if price.IsPositive() {
			coinAmount = h.InvestedUSD.Div(price)
		}
		derived = append(derived, models.DerivedHolding{
			Holding:     h,
			Price:       price,
			CoinAmount:  coinAmount,
			TotalValue:  h.InvestedUSD,
			MarketValue: coinAmount.Mul(price),
		})
	}
	return derived
}

// TotalValue sums the cost-basis value over a derived set.
func TotalValue(derived []models.DerivedHolding) decimal.Decimal {
	total := decimal.Zero
	for _, d := range derived {
		total = total.Add(d.TotalValue)
	}
	return total
}

// TotalMarketValue sums the mark-to-market value over a derived set.
func TotalMarketValue(derived []models.DerivedHolding) decimal.Decimal {
	total := decimal.Zero
	for _, d := range derived {
		total = total.Add(d.MarketValue)
	}
	return total
}
