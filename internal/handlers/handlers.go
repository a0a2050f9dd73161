package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"coindash/internal/cache"
	"coindash/internal/coingecko"
	"coindash/internal/models"
	"coindash/internal/portfolio"
	"coindash/internal/prefs"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MarketAPI is the slice of the market-data client the handlers call.
type MarketAPI interface {
	Markets(ctx context.Context, currency string, ids []string) ([]coingecko.Market, error)
	CoinList(ctx context.Context, currency string) ([]models.CoinRef, error)
	TrendingMarkets(ctx context.Context, currency string) ([]coingecko.Market, error)
	CoinDetail(ctx context.Context, id string) (*coingecko.CoinDetail, error)
	MarketChart(ctx context.Context, id, currency string, days int, daily bool) (*coingecko.MarketChart, error)
}

type Handler struct {
	market MarketAPI
	ctrl   *portfolio.Controller
	prefs  *prefs.Container
	cache  *cache.MarketCache
	log    *logrus.Logger
}

func NewHandler(market MarketAPI, ctrl *portfolio.Controller, pc *prefs.Container, mc *cache.MarketCache, log *logrus.Logger) *Handler {
	return &Handler{market: market, ctrl: ctrl, prefs: pc, cache: mc, log: log}
}

// Register wires all routes onto the router.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.GET("/coins", h.GetCoins)
	r.GET("/coins/:id", h.GetCoinDetail)
	r.GET("/coins/:id/history", h.GetCoinHistory)
	r.GET("/trending", h.GetTrending)

	r.GET("/portfolio", h.GetPortfolio)
	r.POST("/portfolio/holdings", h.PostHolding)
	r.PUT("/portfolio/holdings/:coinId", h.PutHolding)
	r.DELETE("/portfolio/holdings/:coinId", h.DeleteHolding)
	r.POST("/portfolio/holdings/:coinId/edit", h.StartEdit)
	r.POST("/portfolio/edit/cancel", h.CancelEdit)
	r.POST("/portfolio/refresh", h.PostRefresh)
	r.POST("/portfolio/select", h.PostSelect)
	r.PUT("/portfolio/search", h.PutSearch)

	r.GET("/prefs", h.GetPrefs)
	r.PUT("/prefs/currency", h.PutCurrency)
	r.POST("/prefs/darkmode", h.ToggleDarkMode)
}

func (h *Handler) currency(c *gin.Context) string {
	if cur := c.Query("currency"); cur != "" {
		return strings.ToLower(cur)
	}
	return h.prefs.Get().Currency
}

// GetCoins serves the top-50 market table, optionally filtered by a search
// term matching name or symbol.
func (h *Handler) GetCoins(c *gin.Context) {
	currency := h.currency(c)
	ctx := context.Background()

	var markets []coingecko.Market
	if !h.cache.Get(ctx, "markets:"+currency, &markets) {
		var err error
		markets, err = h.market.Markets(ctx, currency, nil)
		if err != nil {
			h.log.Errorf("fetch markets failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load coin list"})
			return
		}
		h.cache.Set(ctx, "markets:"+currency, markets)
	}

	if q := strings.ToLower(c.Query("q")); q != "" {
		filtered := []coingecko.Market{}
		for _, m := range markets {
			if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.Symbol), q) {
				filtered = append(filtered, m)
			}
		}
		markets = filtered
	}
	c.JSON(http.StatusOK, markets)
}

func (h *Handler) GetTrending(c *gin.Context) {
	currency := h.currency(c)
	ctx := context.Background()

	var markets []coingecko.Market
	if !h.cache.Get(ctx, "trending:"+currency, &markets) {
		var err error
		markets, err = h.market.TrendingMarkets(ctx, currency)
		if err != nil {
			h.log.Errorf("fetch trending failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load trending coins"})
			return
		}
		h.cache.Set(ctx, "trending:"+currency, markets)
	}
	c.JSON(http.StatusOK, markets)
}

func (h *Handler) GetCoinDetail(c *gin.Context) {
	detail, err := h.market.CoinDetail(context.Background(), c.Param("id"))
	if err != nil {
		var fe *coingecko.FetchError
		if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "coin not found"})
			return
		}
		h.log.Errorf("fetch coin detail failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load coin"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) GetCoinHistory(c *gin.Context) {
	days := 30
	if v := c.Query("days"); v != "" {
		iv, err := strconv.Atoi(v)
		if err != nil || iv <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = iv
	}
	daily := c.Query("interval") == "daily"
	chart, err := h.market.MarketChart(context.Background(), c.Param("id"), h.currency(c), days, daily)
	if err != nil {
		h.log.Errorf("fetch market chart failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load price history"})
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

type holdingRequest struct {
	CoinID      string `json:"coin_id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	InvestedUSD string `json:"invested_usd" binding:"required"`
}

// PostHolding adds a position. The coin may be named explicitly in the body
// or left empty to use the pending selection.
func (h *Handler) PostHolding(c *gin.Context) {
	var req holdingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid post body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.InvestedUSD)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount format"})
		return
	}

	coin := models.CoinRef{ID: req.CoinID, Symbol: req.Symbol, Name: req.Name}
	if coin.ID == "" {
		if selected := h.ctrl.Snapshot().SelectedCoin; selected != nil {
			coin = *selected
		}
	}

	if err := h.ctrl.AddHolding(context.Background(), coin, amount); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.ctrl.Snapshot())
}

type amountRequest struct {
	InvestedUSD string `json:"invested_usd" binding:"required"`
}

func (h *Handler) PutHolding(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.InvestedUSD)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount format"})
		return
	}
	if err := h.ctrl.EditHolding(c.Param("coinId"), amount); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handler) DeleteHolding(c *gin.Context) {
	h.ctrl.DeleteHolding(c.Param("coinId"))
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handler) StartEdit(c *gin.Context) {
	if err := h.ctrl.StartEdit(c.Param("coinId")); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handler) CancelEdit(c *gin.Context) {
	h.ctrl.CancelEdit()
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handler) PostRefresh(c *gin.Context) {
	h.ctrl.RefreshPrices(context.Background())
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

type selectRequest struct {
	CoinID string `json:"coin_id" binding:"required"`
}

// PostSelect resolves a coin id carried in from navigation against the
// current coin list. The id is consumed here whether or not it matches.
func (h *Handler) PostSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := context.Background()
	coins, err := h.market.CoinList(ctx, h.prefs.Get().Currency)
	if err != nil {
		h.log.Errorf("fetch coin list failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load coin list"})
		return
	}
	if err := h.ctrl.ResolvePendingCoinSelection(req.CoinID, coins); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

type searchRequest struct {
	Term string `json:"term"`
}

func (h *Handler) PutSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.ctrl.SetSearchTerm(req.Term)
	c.JSON(http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handler) GetPrefs(c *gin.Context) {
	c.JSON(http.StatusOK, h.prefs.Get())
}

type currencyRequest struct {
	Currency string `json:"currency" binding:"required"`
}

func (h *Handler) PutCurrency(c *gin.Context) {
	var req currencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.prefs.SetCurrency(strings.ToLower(req.Currency))
	c.JSON(http.StatusOK, h.prefs.Get())
}

func (h *Handler) ToggleDarkMode(c *gin.Context) {
	dark := h.prefs.ToggleDarkMode()
	c.JSON(http.StatusOK, gin.H{"dark_mode": dark})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case models.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "coin not found"})
	default:
		h.log.Errorf("portfolio operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
