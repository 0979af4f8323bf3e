// Package interfaces defines the contracts between Twindex components
package interfaces

import (
	"context"

	"github.com/bobmcallan/twindex/internal/models"
)

// IndexSource fetches and parses the tracked index from an upstream page.
// Implementations own the HTTP plumbing and the markup extraction; callers
// only see raw numeric fields or an error.
type IndexSource interface {
	// IndexQuote retrieves the current price, change, and percent change.
	IndexQuote(ctx context.Context) (*models.IndexQuote, error)
}
