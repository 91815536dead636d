package market

import (
	"sort"
	"strings"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/shopspring/decimal"
)

const (
	// areaToleranceSqm is the matching band around a declared unit area
	areaToleranceSqm = 5.0
	// maxSimilarTransactions caps how many recent deals back a comparison
	maxSimilarTransactions = 5
)

// HouseTypeComparison is the derived market comparison for one declared
// unit type. It is constructed fresh on every analysis call and never
// persisted.
type HouseTypeComparison struct {
	UnitTypeCode    string              `json:"unit_type_code"`
	Area            int                 `json:"area"`
	DeclaredAmount  decimal.Decimal     `json:"declared_amount"`
	MarketAmount    *decimal.Decimal    `json:"market_amount"`    // nil when no similar transaction exists
	EstimatedProfit *decimal.Decimal    `json:"estimated_profit"` // nil unless both amounts are known
	Matched         []TransactionRecord `json:"matched"`
}

// ParseAreaFromUnitCode extracts the floor area encoded in a unit type
// code's leading digit run, e.g. "084.9543T" -> 84. The second return
// value is false when the code has no leading digits.
func ParseAreaFromUnitCode(code string) (int, bool) {
	i := 0
	for i < len(code) && code[i] >= '0' && code[i] <= '9' {
		i++
	}
	digits := strings.TrimLeft(code[:i], "0")
	if i == 0 {
		return 0, false
	}
	if digits == "" {
		// all zeros, e.g. "000.0000Z"
		return 0, true
	}
	area := 0
	for _, r := range digits {
		area = area*10 + int(r-'0')
	}
	return area, true
}

// SimilarTransactions selects deals whose exclusive area lies within the
// tolerance band around area, newest deal first, capped at the most
// recent few. Records without an exclusive area never match.
func SimilarTransactions(records []TransactionRecord, area int) []TransactionRecord {
	matched := make([]TransactionRecord, 0, maxSimilarTransactions)
	for _, r := range records {
		if r.ExclusiveArea == nil {
			continue
		}
		diff := *r.ExclusiveArea - float64(area)
		if diff < 0 {
			diff = -diff
		}
		if diff <= areaToleranceSqm {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].DealDate.After(matched[j].DealDate)
	})

	if len(matched) > maxSimilarTransactions {
		matched = matched[:maxSimilarTransactions]
	}
	return matched
}

// BuildComparisons builds one comparison per declared price by matching it
// against transactions of similar size. Prices whose unit type code encodes
// no parsable area are skipped. Runs in O(prices x transactions); both sets
// are small in practice (a handful of unit types, a few dozen cached deals).
func BuildComparisons(prices []listing.DeclaredPrice, records []TransactionRecord) []HouseTypeComparison {
	comparisons := make([]HouseTypeComparison, 0, len(prices))

	for _, price := range prices {
		area, ok := ParseAreaFromUnitCode(price.UnitTypeCode)
		if !ok {
			continue
		}

		matched := SimilarTransactions(records, area)
		comparison := HouseTypeComparison{
			UnitTypeCode:   price.UnitTypeCode,
			Area:           area,
			DeclaredAmount: price.TopAmount,
			Matched:        matched,
		}

		if len(matched) > 0 {
			sum := decimal.Zero
			for _, r := range matched {
				sum = sum.Add(r.DealAmount)
			}
			market := sum.Div(decimal.NewFromInt(int64(len(matched))))
			profit := market.Sub(price.TopAmount)
			comparison.MarketAmount = &market
			comparison.EstimatedProfit = &profit
		}

		comparisons = append(comparisons, comparison)
	}

	return comparisons
}
