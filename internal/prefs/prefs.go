// Package prefs holds the display preferences that used to live in ambient
// UI state: the quote currency and the dark-mode flag. The container is an
// explicit dependency with its own load/update contract, persisted through
// the same store as the portfolio.
package prefs

import (
	"encoding/json"
	"sync"

	"coindash/internal/store"
	"github.com/sirupsen/logrus"
)

const DefaultCurrency = "usd"

type Prefs struct {
	Currency string `json:"currency"`
	DarkMode bool   `json:"dark_mode"`
}

// Container guards a Prefs value and keeps the store in sync on update.
type Container struct {
	mu    sync.Mutex
	prefs Prefs
	store store.Store
	log   *logrus.Logger
}

func NewContainer(st store.Store, log *logrus.Logger) *Container {
	return &Container{prefs: Prefs{Currency: DefaultCurrency}, store: st, log: log}
}

// Load hydrates from the store. A missing or corrupt record keeps defaults.
func (c *Container) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok, err := c.store.Get(store.KeyPrefs)
	if err != nil {
		c.log.Warnf("load prefs: %v", err)
		return
	}
	if !ok {
		return
	}
	var p Prefs
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		c.log.Warnf("failed to parse stored prefs, keeping defaults: %v", err)
		return
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	c.prefs = p
}

func (c *Container) Get() Prefs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// SetCurrency switches the quote currency and persists.
func (c *Container) SetCurrency(currency string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if currency == "" {
		currency = DefaultCurrency
	}
	c.prefs.Currency = currency
	c.persistLocked()
}

// ToggleDarkMode flips the flag, persists and returns the new value.
func (c *Container) ToggleDarkMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs.DarkMode = !c.prefs.DarkMode
	c.persistLocked()
	return c.prefs.DarkMode
}

func (c *Container) persistLocked() {
	b, err := json.Marshal(c.prefs)
	if err != nil {
		c.log.Warnf("marshal prefs: %v", err)
		return
	}
	if err := c.store.Set(store.KeyPrefs, string(b)); err != nil {
		c.log.Warnf("persist prefs: %v", err)
	}
}
