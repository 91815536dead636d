package persistence

import (
	"context"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"gorm.io/gorm"
)

// GormTransactionRepository implements market.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByRegionCode finds all cached transactions for a region code
func (r *GormTransactionRepository) FindByRegionCode(ctx context.Context, regionCode string) ([]market.TransactionRecord, error) {
	var records []market.TransactionRecord
	if err := r.db.WithContext(ctx).
		Where("region_code = ?", regionCode).
		Order("deal_date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceForRegion supersedes the cached set for a region with a freshly
// fetched one. Delete and insert run in one transaction so readers never
// observe a half-replaced region.
func (r *GormTransactionRepository) ReplaceForRegion(ctx context.Context, regionCode string, records []*market.TransactionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("region_code = ?", regionCode).
			Delete(&market.TransactionRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(records).Error
	})
}

// Ensure GormTransactionRepository implements market.TransactionRepository
var _ market.TransactionRepository = (*GormTransactionRepository)(nil)
