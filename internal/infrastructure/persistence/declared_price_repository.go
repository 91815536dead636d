package persistence

import (
	"context"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDeclaredPriceRepository implements listing.DeclaredPriceRepository using GORM
type GormDeclaredPriceRepository struct {
	db *gorm.DB
}

// NewGormDeclaredPriceRepository creates a new GormDeclaredPriceRepository
func NewGormDeclaredPriceRepository(db *gorm.DB) *GormDeclaredPriceRepository {
	return &GormDeclaredPriceRepository{db: db}
}

// FindByHouseManageNo finds all declared prices for a listing's manage number
func (r *GormDeclaredPriceRepository) FindByHouseManageNo(ctx context.Context, houseManageNo string) ([]listing.DeclaredPrice, error) {
	var prices []listing.DeclaredPrice
	if err := r.db.WithContext(ctx).
		Where("house_manage_no = ?", houseManageNo).
		Order("unit_type_code ASC").
		Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// SaveBatch inserts declared prices, silently skipping entries that already
// exist. The conflict target is the (manage number, unit type) pair, which
// keeps prices immutable once fetched.
func (r *GormDeclaredPriceRepository) SaveBatch(ctx context.Context, prices []*listing.DeclaredPrice) error {
	if len(prices) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "house_manage_no"}, {Name: "unit_type_code"}},
			DoNothing: true,
		}).
		Create(prices).Error
}

// Ensure GormDeclaredPriceRepository implements listing.DeclaredPriceRepository
var _ listing.DeclaredPriceRepository = (*GormDeclaredPriceRepository)(nil)
