package market

import "github.com/shopspring/decimal"

// MarketSummary aggregates a transaction set into summary statistics.
// Derived on demand, never persisted.
type MarketSummary struct {
	AverageAmount  decimal.Decimal  `json:"average_amount"`
	MinAmount      decimal.Decimal  `json:"min_amount"`
	MaxAmount      decimal.Decimal  `json:"max_amount"`
	AveragePerArea *decimal.Decimal `json:"average_per_area"` // nil when no record has an area
	Count          int              `json:"count"`
}

// Summarize computes summary statistics over a transaction set.
// Returns nil for an empty input. The per-area average is computed only
// over records whose per-unit price is derivable: records without an
// exclusive area are excluded from both numerator and denominator.
func Summarize(records []TransactionRecord) *MarketSummary {
	if len(records) == 0 {
		return nil
	}

	sum := decimal.Zero
	minAmount := records[0].DealAmount
	maxAmount := records[0].DealAmount

	perAreaSum := decimal.Zero
	perAreaCount := 0

	for _, r := range records {
		sum = sum.Add(r.DealAmount)
		if r.DealAmount.LessThan(minAmount) {
			minAmount = r.DealAmount
		}
		if r.DealAmount.GreaterThan(maxAmount) {
			maxAmount = r.DealAmount
		}

		if perArea, ok := r.PricePerArea(); ok {
			perAreaSum = perAreaSum.Add(perArea)
			perAreaCount++
		}
	}

	summary := &MarketSummary{
		AverageAmount: sum.Div(decimal.NewFromInt(int64(len(records)))),
		MinAmount:     minAmount,
		MaxAmount:     maxAmount,
		Count:         len(records),
	}

	if perAreaCount > 0 {
		avg := perAreaSum.Div(decimal.NewFromInt(int64(perAreaCount)))
		summary.AveragePerArea = &avg
	}

	return summary
}
