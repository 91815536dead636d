package cache

import (
	"context"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"go.uber.org/zap"
)

// TransactionCache is a read-through cache over the transaction store.
// The database is the cache: records carry their fetch time, and a region
// whose newest record is older than the TTL is re-fetched from the
// upstream source and re-stored. An upstream failure serves the stale set
// instead of failing the read.
type TransactionCache struct {
	store  market.TransactionRepository
	source market.TransactionSource
	ttl    time.Duration
	months int
	now    func() time.Time
	logger *zap.Logger
}

// NewTransactionCache creates a read-through TransactionCache
func NewTransactionCache(
	store market.TransactionRepository,
	source market.TransactionSource,
	ttl time.Duration,
	months int,
	logger *zap.Logger,
) *TransactionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionCache{
		store:  store,
		source: source,
		ttl:    ttl,
		months: months,
		now:    time.Now,
		logger: logger.Named("txcache"),
	}
}

// WithClock overrides the cache clock for deterministic tests
func (c *TransactionCache) WithClock(now func() time.Time) *TransactionCache {
	c.now = now
	return c
}

// RecentByRegion returns the cached transactions for a region, refreshing
// from upstream when the cached set is stale or empty
func (c *TransactionCache) RecentByRegion(ctx context.Context, regionCode string) ([]market.TransactionRecord, error) {
	cached, err := c.store.FindByRegionCode(ctx, regionCode)
	if err != nil {
		return nil, err
	}

	if len(cached) > 0 && c.isFresh(cached) {
		return cached, nil
	}

	fetched, err := c.source.FetchRecent(ctx, regionCode, c.months)
	if err != nil {
		if len(cached) > 0 {
			c.logger.Warn("upstream fetch failed, serving stale transactions",
				zap.String("region_code", regionCode),
				zap.Int("stale_count", len(cached)),
				zap.Error(err))
			return cached, nil
		}
		return nil, err
	}

	now := c.now()
	records := make([]*market.TransactionRecord, len(fetched))
	for i := range fetched {
		fetched[i].FetchedAt = now
		records[i] = &fetched[i]
	}

	if err := c.store.ReplaceForRegion(ctx, regionCode, records); err != nil {
		// The fetched data is still good; a failed store write only costs
		// the next reader another upstream call.
		c.logger.Warn("transaction cache store failed",
			zap.String("region_code", regionCode), zap.Error(err))
	}

	c.logger.Info("transaction cache refreshed",
		zap.String("region_code", regionCode),
		zap.Int("count", len(fetched)))
	return fetched, nil
}

// isFresh reports whether the newest cached record is within the TTL
func (c *TransactionCache) isFresh(records []market.TransactionRecord) bool {
	newest := records[0].FetchedAt
	for _, r := range records[1:] {
		if r.FetchedAt.After(newest) {
			newest = r.FetchedAt
		}
	}
	return c.now().Sub(newest) < c.ttl
}

// Ensure TransactionCache implements market.TransactionReader
var _ market.TransactionReader = (*TransactionCache)(nil)
