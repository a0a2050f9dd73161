package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Refreshable is what the periodic task drives; the portfolio controller
// satisfies it.
type Refreshable interface {
	RefreshPrices(ctx context.Context)
}

// Refresher re-fetches quotes for held coins on a fixed interval. It is tied
// to the lifetime of the context passed to Start: cancel the context and the
// task stops. There is no free-running timer.
type Refresher struct {
	target Refreshable
	log    *logrus.Logger
}

func NewRefresher(target Refreshable, log *logrus.Logger) *Refresher {
	return &Refresher{target: target, log: log}
}

func (r *Refresher) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.log.Info("price refresher stopping")
				return
			case <-ticker.C:
				r.target.RefreshPrices(ctx)
			}
		}
	}()
}
