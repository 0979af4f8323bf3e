package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/twindex/internal/common"
	"github.com/bobmcallan/twindex/internal/interfaces"
	"github.com/bobmcallan/twindex/internal/services/quote"
)

// runUpdater refreshes the snapshot forever, independent of readers. The
// interval tracks the market state: tight while the session is trading,
// relaxed otherwise. The loop only exits on context cancellation; a fault
// escaping a refresh attempt is logged and followed by a short backoff.
func runUpdater(ctx context.Context, svc interfaces.QuoteService, logger *common.Logger) {
	for {
		interval := quote.UpdateIntervalClosed
		if quote.MarketOpen(time.Now()) {
			interval = quote.UpdateIntervalOpen
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("Index updater: stopped")
			return
		case <-time.After(interval):
		}

		if !attemptRefresh(ctx, svc, logger) {
			select {
			case <-ctx.Done():
				logger.Info().Msg("Index updater: stopped")
				return
			case <-time.After(quote.UpdateErrorBackoff):
			}
		}
	}
}

// attemptRefresh runs one refresh and absorbs any panic so the updater loop
// never dies. Normal fetch/parse failures are already handled inside the
// service's fallback path; this guard is for logic faults only.
func attemptRefresh(ctx context.Context, svc interfaces.QuoteService, logger *common.Logger) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Str("panic", fmt.Sprintf("%v", rec)).Msg("Index updater: refresh panicked")
			ok = false
		}
	}()

	svc.Refresh(ctx)
	return true
}
