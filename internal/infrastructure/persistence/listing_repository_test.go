package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockListingRepo(t *testing.T) (*GormListingRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormListingRepository(gormDB), mock, mockDB
}

func TestGormListingRepository_FindByID(t *testing.T) {
	t.Run("finds existing listing", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepo(t)
		defer mockDB.Close()

		id := uuid.New()
		receiptStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "source", "house_name", "receipt_start_date", "house_section"}).
			AddRow(id, "APT", "래미안 원베일리", receiptStart, "APT")

		mock.ExpectQuery(`SELECT \* FROM "listings" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		l, err := repo.FindByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, l.ID)
		assert.Equal(t, listing.SourceApartment, l.Source)
		assert.Equal(t, "래미안 원베일리", l.HouseName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepo(t)
		defer mockDB.Close()

		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "listings" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		l, err := repo.FindByID(context.Background(), id)

		assert.Nil(t, l)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormListingRepository_FindByBusinessKey(t *testing.T) {
	t.Run("finds listing by key", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepo(t)
		defer mockDB.Close()

		id := uuid.New()
		receiptStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "source", "house_name", "receipt_start_date"}).
			AddRow(id, "APT", "단지A", receiptStart)

		mock.ExpectQuery(`SELECT \* FROM "listings" WHERE source = \$1 AND house_name = \$2 AND receipt_start_date = \$3 ORDER BY .* LIMIT .*`).
			WithArgs("APT", "단지A", receiptStart, 1).
			WillReturnRows(rows)

		l, err := repo.FindByBusinessKey(context.Background(), listing.SourceApartment, "단지A", receiptStart)

		require.NoError(t, err)
		assert.Equal(t, id, l.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for absent key", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepo(t)
		defer mockDB.Close()

		receiptStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "listings" WHERE source = \$1 AND house_name = \$2 AND receipt_start_date = \$3 ORDER BY .* LIMIT .*`).
			WithArgs("APT", "단지A", receiptStart, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByBusinessKey(context.Background(), listing.SourceApartment, "단지A", receiptStart)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormListingRepository_DeleteReceiptStartBefore(t *testing.T) {
	repo, mock, mockDB := newMockListingRepo(t)
	defer mockDB.Close()

	cutoff := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM "listings" WHERE receipt_start_date < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.DeleteReceiptStartBefore(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormListingRepository_FindBySourceAndArea(t *testing.T) {
	repo, mock, mockDB := newMockListingRepo(t)
	defer mockDB.Close()

	receiptStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "source", "house_name", "receipt_start_date", "area_name"}).
		AddRow(uuid.New(), "APT", "단지A", receiptStart, "서울").
		AddRow(uuid.New(), "APT", "단지B", receiptStart, "서울")

	mock.ExpectQuery(`SELECT \* FROM "listings" WHERE source = \$1 AND area_name = \$2 ORDER BY receipt_start_date DESC`).
		WithArgs("APT", "서울").
		WillReturnRows(rows)

	results, err := repo.FindBySourceAndArea(context.Background(), listing.SourceApartment, "서울")

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
