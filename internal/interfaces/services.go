package interfaces

import (
	"context"

	"github.com/bobmcallan/twindex/internal/models"
)

// QuoteService maintains the current index snapshot and its refresh policy.
// After the first startup fetch callers always get a snapshot back: fresh
// data, recent data annotated with an error, or the fixed default.
type QuoteService interface {
	// Current returns the current snapshot. A stale snapshot is returned
	// immediately while a background refresh is kicked off; only the very
	// first call (no snapshot yet) blocks on a fetch.
	Current(ctx context.Context) models.IndexSnapshot

	// Refresh performs a blocking fetch-parse-publish cycle and returns the
	// resulting snapshot (live on success, reused or default on failure).
	Refresh(ctx context.Context) models.IndexSnapshot

	// Stale reports whether the scheduling clock has exceeded the
	// market-state-dependent refresh threshold.
	Stale() bool
}
