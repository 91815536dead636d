package acquisition

import (
	"context"
	"errors"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
)

var (
	// ErrSourceUnavailable indicates a provider could not be reached or
	// returned an unusable response. The orchestrator recovers from it by
	// advancing to the next fallback tier.
	ErrSourceUnavailable = errors.New("acquisition: source unavailable")

	// ErrInvalidResponse indicates a provider response could not be parsed
	ErrInvalidResponse = errors.New("acquisition: invalid provider response")
)

// Provider is one data-provider adapter for a logical source. Adapters
// signal failure by returning an error or an empty slice; callers must not
// assume any richer failure contract.
type Provider interface {
	// Fetch returns listings announced for the area on or after the date
	Fetch(ctx context.Context, area string, date time.Time) ([]listing.Listing, error)

	// FetchAll returns the full listing set the provider knows for the area
	FetchAll(ctx context.Context, area string) ([]listing.Listing, error)

	// SourceName returns the adapter's name for logging and result tagging
	SourceName() string
}
