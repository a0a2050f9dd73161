// Package store is the persistence boundary: a small keyed get/set/remove
// surface over whichever local store the deployment has. The portfolio layer
// only ever reads and writes whole JSON-encoded records under fixed keys.
package store

// Keys used by the portfolio layer.
const (
	KeyHoldings     = "holdings"
	KeySelectedCoin = "selectedCoin"
	KeyPrefs        = "prefs"
)

// Store is a keyed string store. Get reports absence via the bool; parse or
// transport problems come back as errors and callers downgrade them.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}
