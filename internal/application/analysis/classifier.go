package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/region"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Badge is the three-way classification of a listing's declared price
// against the local market
type Badge string

const (
	BadgeCheap     Badge = "CHEAP"
	BadgeExpensive Badge = "EXPENSIVE"
	BadgeUnknown   Badge = "UNKNOWN"
)

// referenceAreaSqm is the most common subscription unit size; the
// representative price is the one coded closest to it
const referenceAreaSqm = 84

// ClassifierConfig holds the tunable classification parameters
type ClassifierConfig struct {
	// AcceptDistanceSqm is the maximum distance from the reference area
	// for a unit type to be accepted as representative
	AcceptDistanceSqm int
	// MaxBuildingAgeYears bounds how old a building may be for its deals
	// to count as comparable
	MaxBuildingAgeYears int
	// CheapRatio and ExpensiveRatio are the median multipliers bounding
	// the unknown band
	CheapRatio     decimal.Decimal
	ExpensiveRatio decimal.Decimal
}

// DefaultClassifierConfig returns the default classification parameters
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		AcceptDistanceSqm:   12,
		MaxBuildingAgeYears: 10,
		CheapRatio:          decimal.RequireFromString("0.95"),
		ExpensiveRatio:      decimal.RequireFromString("1.05"),
	}
}

// Classifier derives the price badge for a listing by comparing its
// representative declared price against the median of recent deals for
// similarly sized units in the same region. Every missing precondition
// degrades to UNKNOWN; classification never fails.
type Classifier struct {
	prices       listing.DeclaredPriceRepository
	resolver     *region.Resolver
	transactions market.TransactionReader
	cfg          ClassifierConfig
	now          func() time.Time
	logger       *zap.Logger
}

// NewClassifier creates a new Classifier
func NewClassifier(
	prices listing.DeclaredPriceRepository,
	resolver *region.Resolver,
	transactions market.TransactionReader,
	cfg ClassifierConfig,
	logger *zap.Logger,
) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		prices:       prices,
		resolver:     resolver,
		transactions: transactions,
		cfg:          cfg,
		now:          time.Now,
		logger:       logger.Named("classifier"),
	}
}

// WithClock overrides the classifier clock for deterministic tests
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	c.now = now
	return c
}

// ComputeBadge classifies the listing's declared price as cheap, expensive
// or unknown
func (c *Classifier) ComputeBadge(ctx context.Context, l *listing.Listing) Badge {
	if l.IsMarketComparisonExempt() {
		return BadgeUnknown
	}
	if !l.HasExternalID() {
		return BadgeUnknown
	}

	prices, err := c.prices.FindByHouseManageNo(ctx, l.HouseManageNo)
	if err != nil || len(prices) == 0 {
		return BadgeUnknown
	}

	representative := c.selectRepresentative(prices)
	if representative == nil {
		return BadgeUnknown
	}
	area, ok := market.ParseAreaFromUnitCode(representative.UnitTypeCode)
	if !ok {
		return BadgeUnknown
	}

	code, ok := c.resolver.ResolveRegionCode(ctx, l.Address)
	if !ok {
		return BadgeUnknown
	}

	records, err := c.transactions.RecentByRegion(ctx, code)
	if err != nil {
		c.logger.Warn("transaction lookup failed",
			zap.String("region_code", code), zap.Error(err))
		return BadgeUnknown
	}

	now := c.now()
	recent := records[:0:0]
	for _, r := range records {
		if r.IsRecentlyBuilt(c.cfg.MaxBuildingAgeYears, now) {
			recent = append(recent, r)
		}
	}
	if len(recent) == 0 {
		return BadgeUnknown
	}

	band := market.SimilarTransactions(recent, area)
	if len(band) == 0 {
		return BadgeUnknown
	}

	median := medianAmount(band)
	declared := representative.TopAmount
	switch {
	case declared.LessThan(median.Mul(c.cfg.CheapRatio)):
		return BadgeCheap
	case declared.GreaterThan(median.Mul(c.cfg.ExpensiveRatio)):
		return BadgeExpensive
	default:
		return BadgeUnknown
	}
}

// selectRepresentative picks the declared price whose coded area is
// closest to the reference size, provided it falls within the acceptance
// distance; otherwise the entry with the largest declared supply count.
// Returns nil for empty input.
func (c *Classifier) selectRepresentative(prices []listing.DeclaredPrice) *listing.DeclaredPrice {
	if len(prices) == 0 {
		return nil
	}

	var closest *listing.DeclaredPrice
	closestDist := 0
	for i := range prices {
		area, ok := market.ParseAreaFromUnitCode(prices[i].UnitTypeCode)
		if !ok {
			continue
		}
		dist := area - referenceAreaSqm
		if dist < 0 {
			dist = -dist
		}
		if closest == nil || dist < closestDist {
			closest = &prices[i]
			closestDist = dist
		}
	}
	if closest != nil && closestDist <= c.cfg.AcceptDistanceSqm {
		return closest
	}

	largest := &prices[0]
	for i := range prices {
		if prices[i].SupplyCount > largest.SupplyCount {
			largest = &prices[i]
		}
	}
	return largest
}

// medianAmount returns the median deal amount; for an even count, the
// mean of the two middle sorted values
func medianAmount(records []market.TransactionRecord) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(records))
	for i, r := range records {
		amounts[i] = r.DealAmount
	}
	sort.Slice(amounts, func(i, j int) bool {
		return amounts[i].LessThan(amounts[j])
	})

	mid := len(amounts) / 2
	if len(amounts)%2 == 1 {
		return amounts[mid]
	}
	return amounts[mid-1].Add(amounts[mid]).Div(decimal.NewFromInt(2))
}
