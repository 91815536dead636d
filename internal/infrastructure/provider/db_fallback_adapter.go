package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/acquisition"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"go.uber.org/zap"
)

// DatabaseFallbackAdapter serves previously synced listings from local
// storage. It is the terminal tier of a fallback chain: when every live
// provider is down, readers still get the last known data instead of
// nothing. It never fetches prices; those are already persisted.
type DatabaseFallbackAdapter struct {
	repository listing.Repository
	source     listing.Source
	logger     *zap.Logger
}

// NewDatabaseFallbackAdapter creates a storage-backed fallback adapter
func NewDatabaseFallbackAdapter(repository listing.Repository, source listing.Source, logger *zap.Logger) *DatabaseFallbackAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatabaseFallbackAdapter{
		repository: repository,
		source:     source,
		logger:     logger.Named("db-fallback"),
	}
}

// SourceName returns the adapter's name for logging and result tagging
func (a *DatabaseFallbackAdapter) SourceName() string {
	return "database-fallback"
}

// Fetch returns stored listings for the area opening on or after date
func (a *DatabaseFallbackAdapter) Fetch(ctx context.Context, area string, date time.Time) ([]listing.Listing, error) {
	listings, err := a.FetchAll(ctx, area)
	if err != nil {
		return nil, err
	}

	filtered := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		if !l.ReceiptStartDate.Before(date) {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

// FetchAll returns every stored listing of the adapter's program family
// within the area
func (a *DatabaseFallbackAdapter) FetchAll(ctx context.Context, area string) ([]listing.Listing, error) {
	listings, err := a.repository.FindBySourceAndArea(ctx, a.source, area)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", acquisition.ErrSourceUnavailable, err)
	}

	if len(listings) > 0 {
		a.logger.Info("serving listings from local storage",
			zap.String("area", area),
			zap.Int("count", len(listings)))
	}
	return listings, nil
}

// Ensure DatabaseFallbackAdapter implements acquisition.Provider
var _ acquisition.Provider = (*DatabaseFallbackAdapter)(nil)
