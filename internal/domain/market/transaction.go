package market

import (
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionRecord is one cached real-estate transaction for a region.
// Records are append-only: they are never mutated, only superseded when
// the region is re-fetched.
type TransactionRecord struct {
	shared.BaseEntity
	RegionCode    string          `gorm:"type:varchar(5);not null;index"`
	YearMonth     string          `gorm:"type:varchar(6);not null"` // deal month bucket, e.g. "202508"
	BuildingName  string          `gorm:"type:varchar(200)"`
	DealAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // unit: 10,000 KRW
	ExclusiveArea *float64        // square meters, absent on some records
	Floor         int             `gorm:"not null;default:0"`
	BuildYear     int             `gorm:"not null;default:0"`
	DealDate      time.Time       `gorm:"type:date;not null"`
	Neighborhood  string          `gorm:"type:varchar(50)"` // legal neighborhood name
	FetchedAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TransactionRecord) TableName() string {
	return "transaction_records"
}

// PricePerArea returns the deal amount per square meter.
// The second return value is false when the exclusive area is absent,
// in which case no per-area price is computable.
func (t *TransactionRecord) PricePerArea() (decimal.Decimal, bool) {
	if t.ExclusiveArea == nil || *t.ExclusiveArea <= 0 {
		return decimal.Zero, false
	}
	return t.DealAmount.Div(decimal.NewFromFloat(*t.ExclusiveArea)), true
}

// IsRecentlyBuilt returns true if the building's construction year falls
// within maxAgeYears of now. Records without a construction year never match.
func (t *TransactionRecord) IsRecentlyBuilt(maxAgeYears int, now time.Time) bool {
	if t.BuildYear <= 0 {
		return false
	}
	return now.Year()-t.BuildYear <= maxAgeYears
}
