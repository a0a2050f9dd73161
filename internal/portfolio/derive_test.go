package portfolio

import (
	"testing"

	"coindash/internal/models"
	"github.com/shopspring/decimal"
)

func TestDerive_Basic(t *testing.T) {
	holdings := []models.Holding{
		{CoinID: "bitcoin", InvestedUSD: decimal.NewFromInt(1000)},
	}
	prices := models.PriceMap{"bitcoin": decimal.NewFromInt(50000)}

	derived := Derive(holdings, prices)
	if len(derived) != 1 {
		t.Fatalf("expected 1 derived holding, got %d", len(derived))
	}
	d := derived[0]
	if !d.Price.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected price 50000, got %s", d.Price)
	}
	if !d.CoinAmount.Equal(decimal.NewFromFloat(0.02)) {
		t.Fatalf("expected coin amount 0.02, got %s", d.CoinAmount)
	}
	if !d.TotalValue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected total value 1000, got %s", d.TotalValue)
	}
	if !d.MarketValue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected market value 1000, got %s", d.MarketValue)
	}
	if !TotalValue(derived).Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected aggregate 1000, got %s", TotalValue(derived))
	}
}

func TestDerive_MissingPrice(t *testing.T) {
	holdings := []models.Holding{
		{CoinID: "bitcoin", InvestedUSD: decimal.NewFromInt(1000)},
	}

	derived := Derive(holdings, models.PriceMap{})
	if len(derived) != 1 {
		t.Fatalf("expected 1 derived holding, got %d", len(derived))
	}
	if !derived[0].CoinAmount.IsZero() {
		t.Fatalf("expected zero coin amount for unquoted coin, got %s", derived[0].CoinAmount)
	}
	if !derived[0].TotalValue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected total value 1000, got %s", derived[0].TotalValue)
	}
	if !derived[0].MarketValue.IsZero() {
		t.Fatalf("expected zero market value, got %s", derived[0].MarketValue)
	}
}

func TestDerive_ZeroPrice(t *testing.T) {
	holdings := []models.Holding{
		{CoinID: "deadcoin", InvestedUSD: decimal.NewFromInt(50)},
	}
	prices := models.PriceMap{"deadcoin": decimal.Zero}

	derived := Derive(holdings, prices)
	if !derived[0].CoinAmount.IsZero() {
		t.Fatalf("expected zero coin amount at zero price, got %s", derived[0].CoinAmount)
	}
}

func TestDerive_OrderPreserved(t *testing.T) {
	holdings := []models.Holding{
		{CoinID: "bitcoin", InvestedUSD: decimal.NewFromInt(100)},
		{CoinID: "ethereum", InvestedUSD: decimal.NewFromInt(200)},
		{CoinID: "solana", InvestedUSD: decimal.NewFromInt(300)},
	}
	prices := models.PriceMap{
		"ethereum": decimal.NewFromInt(2000),
		"bitcoin":  decimal.NewFromInt(40000),
	}

	derived := Derive(holdings, prices)
	if len(derived) != len(holdings) {
		t.Fatalf("expected %d derived holdings, got %d", len(holdings), len(derived))
	}
	for i, h := range holdings {
		if derived[i].CoinID != h.CoinID {
			t.Fatalf("order not preserved at %d: expected %s, got %s", i, h.CoinID, derived[i].CoinID)
		}
	}
	if !TotalValue(derived).Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected aggregate 600, got %s", TotalValue(derived))
	}
}

func TestDerive_Empty(t *testing.T) {
	derived := Derive(nil, models.PriceMap{"bitcoin": decimal.NewFromInt(1)})
	if len(derived) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(derived))
	}
	if !TotalValue(derived).IsZero() {
		t.Fatalf("expected zero aggregate, got %s", TotalValue(derived))
	}
}
