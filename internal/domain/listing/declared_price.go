package listing

import (
	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DeclaredPrice is the published top price for one unit type within a
// listing, linked to the listing through its external manage number.
// Declared prices are immutable once fetched.
type DeclaredPrice struct {
	shared.BaseEntity
	HouseManageNo string          `gorm:"type:varchar(40);not null;uniqueIndex:idx_declared_prices_unit,priority:1"`
	UnitTypeCode  string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_declared_prices_unit,priority:2"` // e.g. "084.9543T"
	TopAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`                                               // unit: 10,000 KRW
	SupplyCount   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DeclaredPrice) TableName() string {
	return "declared_prices"
}

// NewDeclaredPrice creates a declared price entry for one unit type
func NewDeclaredPrice(houseManageNo, unitTypeCode string, topAmount decimal.Decimal, supplyCount int) (*DeclaredPrice, error) {
	if houseManageNo == "" {
		return nil, shared.NewDomainError("INVALID_MANAGE_NO", "House manage number cannot be empty")
	}
	if unitTypeCode == "" {
		return nil, shared.NewDomainError("INVALID_UNIT_TYPE", "Unit type code cannot be empty")
	}
	if topAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Declared price cannot be negative")
	}

	return &DeclaredPrice{
		BaseEntity:    shared.NewBaseEntity(),
		HouseManageNo: houseManageNo,
		UnitTypeCode:  unitTypeCode,
		TopAmount:     topAmount,
		SupplyCount:   supplyCount,
	}, nil
}
