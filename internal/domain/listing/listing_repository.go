package listing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
)

// Repository defines the interface for listing persistence
type Repository interface {
	// FindByID finds a listing by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)

	// FindByBusinessKey finds a listing by its business key
	FindByBusinessKey(ctx context.Context, source Source, houseName string, receiptStart time.Time) (*Listing, error)

	// FindByArea finds listings for an area name, newest receipt start first
	FindByArea(ctx context.Context, areaName string, filter shared.Filter) ([]Listing, error)

	// FindBySourceAndArea finds listings of one program family within an area
	FindBySourceAndArea(ctx context.Context, source Source, areaName string) ([]Listing, error)

	// FindAll finds all listings matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Listing, error)

	// Save creates a listing
	Save(ctx context.Context, l *Listing) error

	// Update persists the current state of an existing listing
	Update(ctx context.Context, l *Listing) error

	// DeleteReceiptStartBefore deletes listings whose receipt start date is
	// older than the cutoff and returns the number of deleted rows
	DeleteReceiptStartBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Count counts listings matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
