package market

import "context"

// RegionCodeRepository defines the interface for the region code reference table
type RegionCodeRepository interface {
	// FindByExact finds a region code by exact province and district names
	FindByExact(ctx context.Context, province, district string) (*RegionCode, error)

	// FindByContaining finds the first region code whose district name
	// contains the partial name
	FindByContaining(ctx context.Context, partial string) (*RegionCode, error)

	// SaveBatch seeds reference entries, skipping codes that already exist
	SaveBatch(ctx context.Context, codes []*RegionCode) error
}
