package listing

import "context"

// DeclaredPriceRepository defines the interface for declared price persistence
type DeclaredPriceRepository interface {
	// FindByHouseManageNo finds all declared prices for a listing's manage number
	FindByHouseManageNo(ctx context.Context, houseManageNo string) ([]DeclaredPrice, error)

	// SaveBatch inserts declared prices, silently skipping entries that
	// already exist. Declared prices are immutable once fetched.
	SaveBatch(ctx context.Context, prices []*DeclaredPrice) error
}
