package analysis

import (
	"context"

	"github.com/google/uuid"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/region"
	"go.uber.org/zap"
)

// AnalysisResult is the full market analysis for one listing
type AnalysisResult struct {
	ListingID    uuid.UUID                    `json:"listing_id"`
	HouseName    string                       `json:"house_name"`
	Address      string                       `json:"address"`
	RegionCode   *string                      `json:"region_code"`   // nil when the address did not resolve
	Neighborhood *string                      `json:"neighborhood"`  // nil when no neighborhood token was found
	Transactions []market.TransactionRecord   `json:"transactions"`  // neighborhood-filtered comparables
	Comparisons  []market.HouseTypeComparison `json:"comparisons"`
	Summary      *market.MarketSummary        `json:"summary"` // nil when no comparables exist
	Badge        Badge                        `json:"badge"`
}

// Service orchestrates region resolution, market lookup and comparison
// building for a listing. Apart from an unknown listing id, every failure
// mode degrades to absent fields rather than an error.
type Service struct {
	listings     listing.Repository
	prices       listing.DeclaredPriceRepository
	resolver     *region.Resolver
	transactions market.TransactionReader
	classifier   *Classifier
	logger       *zap.Logger
}

// NewService creates a new analysis Service
func NewService(
	listings listing.Repository,
	prices listing.DeclaredPriceRepository,
	resolver *region.Resolver,
	transactions market.TransactionReader,
	classifier *Classifier,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		listings:     listings,
		prices:       prices,
		resolver:     resolver,
		transactions: transactions,
		classifier:   classifier,
		logger:       logger.Named("analysis"),
	}
}

// Analyze builds the full analysis for a listing. Returns
// shared.ErrNotFound when the listing id is unknown; analysis cannot
// proceed without a subject.
func (s *Service) Analyze(ctx context.Context, id uuid.UUID) (*AnalysisResult, error) {
	l, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		ListingID:    l.ID,
		HouseName:    l.HouseName,
		Address:      l.Address,
		Transactions: []market.TransactionRecord{},
		Comparisons:  []market.HouseTypeComparison{},
	}

	var records []market.TransactionRecord
	if code, ok := s.resolver.ResolveRegionCode(ctx, l.Address); ok {
		result.RegionCode = &code
		records, err = s.transactions.RecentByRegion(ctx, code)
		if err != nil {
			s.logger.Warn("transaction lookup failed",
				zap.String("region_code", code), zap.Error(err))
			records = nil
		}
	}

	neighborhood := ""
	if name, ok := region.ResolveNeighborhood(l.Address); ok {
		result.Neighborhood = &name
		neighborhood = name
	}
	records = region.FilterByNeighborhood(records, neighborhood)
	if records != nil {
		result.Transactions = records
	}

	if l.HasExternalID() {
		prices, err := s.prices.FindByHouseManageNo(ctx, l.HouseManageNo)
		if err != nil {
			s.logger.Warn("declared price lookup failed",
				zap.String("house_manage_no", l.HouseManageNo), zap.Error(err))
		} else {
			result.Comparisons = market.BuildComparisons(prices, records)
		}
	}

	result.Summary = market.Summarize(records)
	result.Badge = s.classifier.ComputeBadge(ctx, l)

	return result, nil
}

// BadgeForListing computes just the price badge for a listing id. Returns
// shared.ErrNotFound for an unknown id.
func (s *Service) BadgeForListing(ctx context.Context, id uuid.UUID) (Badge, error) {
	l, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return BadgeUnknown, err
	}
	return s.classifier.ComputeBadge(ctx, l), nil
}
