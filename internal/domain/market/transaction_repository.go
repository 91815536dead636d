package market

import "context"

// TransactionRepository defines the interface for the transaction cache store
type TransactionRepository interface {
	// FindByRegionCode finds all cached transactions for a region code
	FindByRegionCode(ctx context.Context, regionCode string) ([]TransactionRecord, error)

	// ReplaceForRegion supersedes the cached set for a region with a
	// freshly fetched one
	ReplaceForRegion(ctx context.Context, regionCode string, records []*TransactionRecord) error
}

// TransactionReader serves recent transactions for a region. The production
// implementation is a read-through cache over TransactionRepository and
// TransactionSource.
type TransactionReader interface {
	RecentByRegion(ctx context.Context, regionCode string) ([]TransactionRecord, error)
}

// TransactionSource fetches recent transactions from the upstream
// market-data API, going back the given number of months
type TransactionSource interface {
	FetchRecent(ctx context.Context, regionCode string, months int) ([]TransactionRecord, error)
}
