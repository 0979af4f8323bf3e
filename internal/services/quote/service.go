package quote

import (
	"context"
	"time"

	"github.com/bobmcallan/twindex/internal/common"
	"github.com/bobmcallan/twindex/internal/interfaces"
	"github.com/bobmcallan/twindex/internal/models"
)

// Refresh policy windows. Read staleness is measured against the scheduling
// clock; the validity window is measured against the snapshot's own capture
// time.
const (
	StaleOpenThreshold   = 20 * time.Second // re-fetch cadence while trading
	StaleClosedThreshold = 5 * time.Minute  // re-fetch cadence off-session
	ValidityWindow       = 5 * time.Minute  // failed refreshes may reuse data this old

	UpdateIntervalOpen   = 10 * time.Second // background updater, market open
	UpdateIntervalClosed = 60 * time.Second // background updater, market closed
	UpdateErrorBackoff   = 5 * time.Second  // pause after a fault escaping a refresh
)

// Default snapshot published when a refresh fails and no reusable snapshot
// exists. The price is already on a quarter boundary.
const (
	defaultPrice     = 1637.5
	defaultChange    = -68.3
	defaultChangePct = -4.0
)

// Service coordinates fetching, validation, and publication of index
// snapshots. Concurrent refreshes are permitted and race with last-writer-wins
// semantics; the store guarantees readers never see a torn snapshot.
type Service struct {
	source interfaces.IndexSource
	store  *Store
	logger *common.Logger

	now func() time.Time
}

var _ interfaces.QuoteService = (*Service)(nil)

// NewService creates a quote service backed by the given source.
func NewService(source interfaces.IndexSource, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		source: source,
		store:  NewStore(),
		logger: logger,
		now:    time.Now,
	}
}

// Current returns the current snapshot. When the snapshot is stale a
// best-effort background refresh is spawned and the stale snapshot is
// returned immediately; the refresh may be superseded by a concurrent one.
// Before the first fetch completes this blocks on a refresh.
func (s *Service) Current(ctx context.Context) models.IndexSnapshot {
	if snap, ok := s.store.Current(); ok {
		if s.Stale() {
			s.logger.Debug().Msg("Snapshot stale, refreshing in background")
			go s.Refresh(context.WithoutCancel(ctx))
		}
		return snap
	}

	s.logger.Info().Msg("No snapshot yet, performing initial fetch")
	return s.Refresh(ctx)
}

// Refresh performs one fetch attempt and publishes the outcome: a live
// snapshot on success, the fallback path on any failure.
func (s *Service) Refresh(ctx context.Context) models.IndexSnapshot {
	quote, err := s.source.IndexQuote(ctx)
	if err != nil {
		return s.fallback(err)
	}

	snap := s.buildSnapshot(quote)
	s.store.Publish(snap)

	s.logger.Info().
		Float64("price", snap.Price).
		Float64("change", snap.Change).
		Float64("change_percent", snap.ChangePct).
		Float64("futures_price", snap.FuturesPrice).
		Float64("futures_offset", snap.FuturesOffset).
		Bool("market_open", snap.MarketOpen).
		Msg("Snapshot updated")

	return snap
}

// Stale reports whether the scheduling clock has fallen behind the
// market-state-dependent threshold.
func (s *Service) Stale() bool {
	now := s.now()

	threshold := StaleClosedThreshold
	if MarketOpen(now) {
		threshold = StaleOpenThreshold
	}

	return now.Sub(s.store.LastAttempt()) > threshold
}

// buildSnapshot assembles a live snapshot from extracted fields. The price is
// quantized first and the futures values derive from that same quantized
// price, never from a different fetch.
func (s *Service) buildSnapshot(quote *models.IndexQuote) models.IndexSnapshot {
	now := s.now()
	price := RoundToQuarter(quote.Price)

	return models.IndexSnapshot{
		Code:          models.IndexCode,
		Name:          models.IndexName,
		Price:         price,
		Change:        quote.Change,
		ChangePct:     quote.ChangePct,
		FuturesPrice:  FuturesPrice(price),
		FuturesOffset: FuturesOffset(price),
		Timestamp:     now.Unix(),
		TaipeiTime:    now.In(taipei).Format("2006-01-02 15:04:05"),
		Source:        models.SourceHiStock,
		MarketOpen:    MarketOpen(now),
	}
}

// fallback handles a failed refresh: reuse the current snapshot with the
// error stamped on when it is still within the validity window, otherwise
// publish the fixed default.
func (s *Service) fallback(err error) models.IndexSnapshot {
	msg := err.Error()

	if snap, ok := s.store.Reuse(msg, ValidityWindow); ok {
		s.logger.Warn().Err(err).Msg("Refresh failed, reusing last valid snapshot")
		return snap
	}

	snap := s.defaultSnapshot(msg)
	s.store.Publish(snap)

	s.logger.Error().Err(err).Float64("price", snap.Price).Msg("Refresh failed, publishing default snapshot")
	return snap
}

func (s *Service) defaultSnapshot(errMsg string) models.IndexSnapshot {
	now := s.now()

	return models.IndexSnapshot{
		Code:          models.IndexCode,
		Name:          models.IndexName,
		Price:         defaultPrice,
		Change:        defaultChange,
		ChangePct:     defaultChangePct,
		FuturesPrice:  FuturesPrice(defaultPrice),
		FuturesOffset: FuturesOffset(defaultPrice),
		Timestamp:     now.Unix(),
		TaipeiTime:    now.In(taipei).Format("2006-01-02 15:04:05"),
		Source:        models.SourceFallback,
		MarketOpen:    MarketOpen(now),
		Error:         errMsg,
	}
}
