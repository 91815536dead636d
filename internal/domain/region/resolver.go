package region

import (
	"context"
	"regexp"
	"strings"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
)

// CodeLookup is the reference-table lookup the resolver needs.
// market.RegionCodeRepository satisfies it.
type CodeLookup interface {
	FindByExact(ctx context.Context, province, district string) (*market.RegionCode, error)
	FindByContaining(ctx context.Context, partial string) (*market.RegionCode, error)
}

var (
	// compoundPattern matches "{province} {city}시 {district}구", e.g.
	// "경기도 용인시 수지구". Nested city+district addresses resolve here.
	compoundPattern = regexp.MustCompile(`([가-힣]+)\s+([가-힣]+시)\s+([가-힣]+구)`)

	// simplePattern matches "{province} {unit}" where the unit ends in
	// 시, 군 or 구, e.g. "서울특별시 강남구".
	simplePattern = regexp.MustCompile(`([가-힣]+)\s+([가-힣]+[시군구])`)

	// parenPattern captures parenthesized address annotations, which often
	// carry the legal neighborhood separate from the street address
	parenPattern = regexp.MustCompile(`\(([^)]+)\)`)

	// neighborhoodPattern matches a legal neighborhood token, with the
	// optional administrative sub-number, e.g. "역삼동" or "역삼1동"
	neighborhoodPattern = regexp.MustCompile(`[가-힣]+\d*동`)

	// subNumberPattern matches the administrative sub-number suffix,
	// e.g. the "1동" in "역삼1동"
	subNumberPattern = regexp.MustCompile(`\d+동$`)
)

// Resolver turns free-text addresses into region codes and neighborhood
// names. Pattern matching uses the first occurrence in the string, so
// trailing detail (lot numbers, building names) does not break resolution.
type Resolver struct {
	codes CodeLookup
}

// NewResolver creates a new Resolver backed by the given reference lookup
func NewResolver(codes CodeLookup) *Resolver {
	return &Resolver{codes: codes}
}

// ResolveRegionCode resolves an address to a 5-digit region code.
// Returns false when the address is blank or neither pattern yields a
// known code; an unresolved region is not an error, downstream analysis
// simply becomes unavailable.
func (r *Resolver) ResolveRegionCode(ctx context.Context, address string) (string, bool) {
	if strings.TrimSpace(address) == "" {
		return "", false
	}

	parsers := []func(ctx context.Context, address string) (string, bool){
		r.parseCompound,
		r.parseSimple,
	}
	for _, parse := range parsers {
		if code, ok := parse(ctx, address); ok {
			return code, true
		}
	}
	return "", false
}

// parseCompound handles nested city+district addresses. The city and
// district names are joined and looked up by containment because the
// reference table stores them as one district column.
func (r *Resolver) parseCompound(ctx context.Context, address string) (string, bool) {
	m := compoundPattern.FindStringSubmatch(address)
	if m == nil {
		return "", false
	}

	district := m[2] + " " + m[3]
	code, err := r.codes.FindByContaining(ctx, district)
	if err != nil || code == nil {
		return "", false
	}
	return code.Code, true
}

// parseSimple handles "{province} {unit}" addresses with an exact lookup,
// retried as a containment match on the unit alone when absent.
func (r *Resolver) parseSimple(ctx context.Context, address string) (string, bool) {
	m := simplePattern.FindStringSubmatch(address)
	if m == nil {
		return "", false
	}

	province, unit := m[1], m[2]
	if code, err := r.codes.FindByExact(ctx, province, unit); err == nil && code != nil {
		return code.Code, true
	}
	if code, err := r.codes.FindByContaining(ctx, unit); err == nil && code != nil {
		return code.Code, true
	}
	return "", false
}

// ResolveNeighborhood extracts the legal neighborhood name from an address.
// A token inside parentheses is preferred: it usually annotates the legal
// neighborhood separate from the colloquial street address. Returns false
// when no neighborhood token is found.
func ResolveNeighborhood(address string) (string, bool) {
	for _, m := range parenPattern.FindAllStringSubmatch(address, -1) {
		if name := neighborhoodPattern.FindString(m[1]); name != "" {
			return name, true
		}
	}
	if name := neighborhoodPattern.FindString(address); name != "" {
		return name, true
	}
	return "", false
}

// NormalizeNeighborhood strips the administrative sub-number from a
// neighborhood name ("역삼1동" -> "역삼동") so it can be compared against
// the legal neighborhood names stored on transaction records.
func NormalizeNeighborhood(name string) string {
	return subNumberPattern.ReplaceAllString(name, "동")
}

// FilterByNeighborhood keeps only transactions in the named neighborhood,
// comparing normalized names on both sides. When the name is empty or the
// input is empty the input is returned unchanged: with an unknown
// neighborhood it is better not to filter at all than to over-filter.
func FilterByNeighborhood(records []market.TransactionRecord, name string) []market.TransactionRecord {
	if name == "" || len(records) == 0 {
		return records
	}

	want := NormalizeNeighborhood(name)
	filtered := make([]market.TransactionRecord, 0, len(records))
	for _, r := range records {
		if NormalizeNeighborhood(r.Neighborhood) == want {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
