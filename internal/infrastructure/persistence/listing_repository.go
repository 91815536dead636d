package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
	"gorm.io/gorm"
)

// GormListingRepository implements listing.Repository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID finds a listing by its ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	var l listing.Listing
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByBusinessKey finds a listing by its business key
func (r *GormListingRepository) FindByBusinessKey(ctx context.Context, source listing.Source, houseName string, receiptStart time.Time) (*listing.Listing, error) {
	var l listing.Listing
	if err := r.db.WithContext(ctx).
		Where("source = ? AND house_name = ? AND receipt_start_date = ?", source, houseName, receiptStart).
		First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByArea finds listings for an area name, newest receipt start first
func (r *GormListingRepository) FindByArea(ctx context.Context, areaName string, filter shared.Filter) ([]listing.Listing, error) {
	var results []listing.Listing
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&listing.Listing{}).Where("area_name = ?", areaName),
		filter,
	)

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindBySourceAndArea finds listings of one program family within an area
func (r *GormListingRepository) FindBySourceAndArea(ctx context.Context, source listing.Source, areaName string) ([]listing.Listing, error) {
	var results []listing.Listing
	if err := r.db.WithContext(ctx).
		Where("source = ? AND area_name = ?", source, areaName).
		Order("receipt_start_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindAll finds all listings matching the filter
func (r *GormListingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]listing.Listing, error) {
	var results []listing.Listing
	query := r.applyFilter(r.db.WithContext(ctx).Model(&listing.Listing{}), filter)

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Save creates a listing
func (r *GormListingRepository) Save(ctx context.Context, l *listing.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// Update persists the current state of an existing listing
func (r *GormListingRepository) Update(ctx context.Context, l *listing.Listing) error {
	result := r.db.WithContext(ctx).Save(l)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteReceiptStartBefore deletes listings whose receipt start date is
// older than the cutoff and returns the number of deleted rows
func (r *GormListingRepository) DeleteReceiptStartBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("receipt_start_date < ?", cutoff).
		Delete(&listing.Listing{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Count counts listings matching the filter
func (r *GormListingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&listing.Listing{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormListingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, ListingSortFields, "receipt_start_date")
		orderDir := ValidateSortOrder(filter.OrderDir)
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("receipt_start_date DESC, house_name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormListingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("house_name ILIKE ? OR address ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "source":
			query = query.Where("source = ?", value)
		case "area_name":
			query = query.Where("area_name = ?", value)
		case "house_section":
			query = query.Where("house_section = ?", value)
		}
	}

	return query
}

// Ensure GormListingRepository implements listing.Repository
var _ listing.Repository = (*GormListingRepository)(nil)
