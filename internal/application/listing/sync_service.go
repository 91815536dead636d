package listing

import (
	"context"
	"errors"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/acquisition"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
	"go.uber.org/zap"
)

// SyncProvider pairs a provider adapter with the program family its
// listings belong to
type SyncProvider struct {
	Source   listing.Source
	Provider acquisition.Provider
}

// SyncService merges freshly fetched listings into the store without
// duplication. One sync invocation is expected to run at a time; the
// loops are sequential and hold no internal locks.
type SyncService struct {
	providers   []SyncProvider
	targetAreas []string
	listings    listing.Repository
	prices      listing.DeclaredPriceRepository
	retention   time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	providers []SyncProvider,
	targetAreas []string,
	listings listing.Repository,
	prices listing.DeclaredPriceRepository,
	retention time.Duration,
	logger *zap.Logger,
) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		providers:   providers,
		targetAreas: targetAreas,
		listings:    listings,
		prices:      prices,
		retention:   retention,
		now:         time.Now,
		logger:      logger.Named("sync"),
	}
}

// WithClock overrides the service clock. Used by tests to make retention
// math deterministic.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

// Sync fetches the full listing set for every target area and provider and
// reconciles it into the store by business key. A failing provider/area
// pair is logged and skipped; it never aborts the remaining work. All
// partial results are merged into one total.
func (s *SyncService) Sync(ctx context.Context) SyncResult {
	var total SyncResult

	for _, area := range s.targetAreas {
		for _, sp := range s.providers {
			fetched, err := sp.Provider.FetchAll(ctx, area)
			if err != nil {
				s.logger.Warn("provider sync fetch failed, skipping",
					zap.String("provider", sp.Provider.SourceName()),
					zap.String("area", area),
					zap.Error(err))
				total.Failed++
				continue
			}

			partial := s.reconcile(ctx, sp.Source, fetched)
			total = total.Merge(partial)
		}
	}

	s.logger.Info("sync completed",
		zap.Int("inserted", total.Inserted),
		zap.Int("updated", total.Updated),
		zap.Int("skipped", total.Skipped),
		zap.Int("failed", total.Failed))
	return total
}

// reconcile upserts one fetched batch by business key
func (s *SyncService) reconcile(ctx context.Context, source listing.Source, fetched []listing.Listing) SyncResult {
	var result SyncResult

	for i := range fetched {
		l := fetched[i]
		l.Source = source

		existing, err := s.listings.FindByBusinessKey(ctx, l.Source, l.HouseName, l.ReceiptStartDate)
		switch {
		case err == nil:
			existing.ApplyFetched(&l)
			if err := s.listings.Update(ctx, existing); err != nil {
				s.logger.Warn("listing update failed",
					zap.String("key", l.Key().String()), zap.Error(err))
				result.Skipped++
				continue
			}
			result.Updated++

		case errors.Is(err, shared.ErrNotFound):
			if err := s.listings.Save(ctx, &l); err != nil {
				s.logger.Warn("listing insert failed",
					zap.String("key", l.Key().String()), zap.Error(err))
				result.Skipped++
				continue
			}
			result.Inserted++

		default:
			s.logger.Warn("listing lookup failed",
				zap.String("key", l.Key().String()), zap.Error(err))
			result.Skipped++
			continue
		}

		s.savePrices(ctx, &l)
	}

	return result
}

// savePrices persists declared prices fetched with the announcement.
// Existing entries are left untouched: declared prices are immutable.
func (s *SyncService) savePrices(ctx context.Context, l *listing.Listing) {
	if !l.HasExternalID() || len(l.Prices) == 0 {
		return
	}

	batch := make([]*listing.DeclaredPrice, 0, len(l.Prices))
	for i := range l.Prices {
		batch = append(batch, &l.Prices[i])
	}
	if err := s.prices.SaveBatch(ctx, batch); err != nil {
		s.logger.Warn("declared price save failed",
			zap.String("house_manage_no", l.HouseManageNo), zap.Error(err))
	}
}

// Cleanup deletes listings whose receipt start date is older than the
// configured retention window and returns the deleted count
func (s *SyncService) Cleanup(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	count, err := s.listings.DeleteReceiptStartBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cleanup completed",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", count))
	return count, nil
}
