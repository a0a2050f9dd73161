package coingecko

// Market is one row of the /coins/markets response. Field set follows what
// the dashboard tables render; everything else the API returns is dropped.
type Market struct {
	ID                       string     `json:"id"`
	Symbol                   string     `json:"symbol"`
	Name                     string     `json:"name"`
	Image                    string     `json:"image"`
	CurrentPrice             float64    `json:"current_price"`
	MarketCap                float64    `json:"market_cap"`
	MarketCapRank            int        `json:"market_cap_rank"`
	TotalVolume              float64    `json:"total_volume"`
	CirculatingSupply        float64    `json:"circulating_supply"`
	PriceChangePercentage1h  *float64   `json:"price_change_percentage_1h_in_currency,omitempty"`
	PriceChangePercentage24h float64    `json:"price_change_percentage_24h"`
	PriceChangePercentage7d  *float64   `json:"price_change_percentage_7d_in_currency,omitempty"`
	Sparkline                *Sparkline `json:"sparkline_in_7d,omitempty"`
}

type Sparkline struct {
	Price []float64 `json:"price"`
}

// CoinDetail is the subset of /coins/{id} the detail view needs.
type CoinDetail struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Image       struct {
		Large string `json:"large"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice      map[string]float64 `json:"current_price"`
		MarketCap         map[string]float64 `json:"market_cap"`
		TotalVolume       map[string]float64 `json:"total_volume"`
		CirculatingSupply float64            `json:"circulating_supply"`
	} `json:"market_data"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
}

// MarketChart is the /coins/{id}/market_chart response: ordered
// (unix-millis, price) pairs.
type MarketChart struct {
	Prices [][2]float64 `json:"prices"`
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
	} `json:"coins"`
}
