package persistence

import (
	"context"
	"errors"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRegionCodeRepository implements market.RegionCodeRepository using GORM
type GormRegionCodeRepository struct {
	db *gorm.DB
}

// NewGormRegionCodeRepository creates a new GormRegionCodeRepository
func NewGormRegionCodeRepository(db *gorm.DB) *GormRegionCodeRepository {
	return &GormRegionCodeRepository{db: db}
}

// FindByExact finds a region code by exact province and district names
func (r *GormRegionCodeRepository) FindByExact(ctx context.Context, province, district string) (*market.RegionCode, error) {
	var code market.RegionCode
	if err := r.db.WithContext(ctx).
		Where("province = ? AND district = ?", province, district).
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

// FindByContaining finds the first region code whose district name contains
// the partial name. Ordered by code so repeated lookups stay deterministic.
func (r *GormRegionCodeRepository) FindByContaining(ctx context.Context, partial string) (*market.RegionCode, error) {
	var code market.RegionCode
	if err := r.db.WithContext(ctx).
		Where("district LIKE ?", "%"+partial+"%").
		Order("code ASC").
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

// SaveBatch seeds reference entries, skipping codes that already exist
func (r *GormRegionCodeRepository) SaveBatch(ctx context.Context, codes []*market.RegionCode) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(codes).Error
}

// Ensure GormRegionCodeRepository implements market.RegionCodeRepository
var _ market.RegionCodeRepository = (*GormRegionCodeRepository)(nil)
