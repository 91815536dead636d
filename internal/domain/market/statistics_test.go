package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, Summarize(nil))
		assert.Nil(t, Summarize([]TransactionRecord{}))
	})

	t.Run("computes average, min and max", func(t *testing.T) {
		records := []TransactionRecord{
			record(floatPtr(84.0), 60000, base),
			record(floatPtr(84.0), 70000, base),
			record(floatPtr(84.0), 80000, base),
		}

		summary := Summarize(records)
		require.NotNil(t, summary)
		assert.Equal(t, 3, summary.Count)
		assert.True(t, summary.AverageAmount.Equal(decimal.NewFromInt(70000)))
		assert.True(t, summary.MinAmount.Equal(decimal.NewFromInt(60000)))
		assert.True(t, summary.MaxAmount.Equal(decimal.NewFromInt(80000)))
	})

	t.Run("per-area average excludes records without an area", func(t *testing.T) {
		records := []TransactionRecord{
			record(floatPtr(100.0), 50000, base), // 500 per sqm
			record(floatPtr(50.0), 50000, base),  // 1000 per sqm
			record(nil, 99999, base),
		}

		summary := Summarize(records)
		require.NotNil(t, summary)
		require.NotNil(t, summary.AveragePerArea)
		assert.True(t, summary.AveragePerArea.Equal(decimal.NewFromInt(750)),
			"expected 750, got %s", summary.AveragePerArea)
	})

	t.Run("per-area average is absent when no record has an area", func(t *testing.T) {
		records := []TransactionRecord{
			record(nil, 50000, base),
			record(nil, 60000, base),
		}

		summary := Summarize(records)
		require.NotNil(t, summary)
		assert.Nil(t, summary.AveragePerArea)
		assert.Equal(t, 2, summary.Count)
	})
}

func TestTransactionRecordPricePerArea(t *testing.T) {
	r := record(floatPtr(84.0), 84000, time.Now())
	perArea, ok := r.PricePerArea()
	require.True(t, ok)
	assert.True(t, perArea.Equal(decimal.NewFromInt(1000)))

	r = record(nil, 84000, time.Now())
	_, ok = r.PricePerArea()
	assert.False(t, ok)

	r = record(floatPtr(0), 84000, time.Now())
	_, ok = r.PricePerArea()
	assert.False(t, ok)
}

func TestTransactionRecordIsRecentlyBuilt(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	r := TransactionRecord{BuildYear: 2020}
	assert.True(t, r.IsRecentlyBuilt(10, now))

	r = TransactionRecord{BuildYear: 2016}
	assert.True(t, r.IsRecentlyBuilt(10, now))

	r = TransactionRecord{BuildYear: 2015}
	assert.False(t, r.IsRecentlyBuilt(10, now))

	r = TransactionRecord{BuildYear: 0}
	assert.False(t, r.IsRecentlyBuilt(10, now))
}
