package dto

import (
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/shopspring/decimal"
)

// ListListingsRequest represents the listing list query parameters
type ListListingsRequest struct {
	ListRequest
	Area         string `form:"area"`
	Source       string `form:"source" binding:"omitempty,oneof=APT PUBLIC_RENTAL"`
	IncludeBadge bool   `form:"include_badge"`
}

// CollectRequest represents an ad-hoc collection query
type CollectRequest struct {
	Area string `form:"area" binding:"required"`
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ListingResponse represents a subscription listing in the response
type ListingResponse struct {
	ID                 string                  `json:"id"`
	Source             string                  `json:"source"`
	HouseName          string                  `json:"house_name"`
	HouseSection       string                  `json:"house_section"`
	HouseManageNo      string                  `json:"house_manage_no,omitempty"`
	Address            string                  `json:"address"`
	AreaName           string                  `json:"area_name"`
	AnnounceDate       *string                 `json:"announce_date"`
	ReceiptStartDate   string                  `json:"receipt_start_date"`
	ReceiptEndDate     *string                 `json:"receipt_end_date"`
	WinnerAnnounceDate *string                 `json:"winner_announce_date"`
	TotalSupplyCount   int                     `json:"total_supply_count"`
	ContactNumber      string                  `json:"contact_number,omitempty"`
	DetailURL          string                  `json:"detail_url,omitempty"`
	FetchedVia         string                  `json:"fetched_via,omitempty"`
	Badge              string                  `json:"badge,omitempty"`
	Prices             []DeclaredPriceResponse `json:"prices,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// DeclaredPriceResponse represents one declared unit-type price
type DeclaredPriceResponse struct {
	HouseManageNo string          `json:"house_manage_no"`
	UnitTypeCode  string          `json:"unit_type_code"`
	TopAmount     decimal.Decimal `json:"top_amount"`
	SupplyCount   int             `json:"supply_count"`
}

// SyncResultResponse represents the outcome of one sync run
type SyncResultResponse struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// CleanupResponse represents the outcome of one retention cleanup
type CleanupResponse struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff,omitempty"`
}

// BadgeResponse represents the price badge of one listing
type BadgeResponse struct {
	ListingID string `json:"listing_id"`
	Badge     string `json:"badge"`
}

const responseDateLayout = "2006-01-02"

// FromListing converts a domain listing to its response representation
func FromListing(l *listing.Listing) ListingResponse {
	resp := ListingResponse{
		ID:                 l.ID.String(),
		Source:             string(l.Source),
		HouseName:          l.HouseName,
		HouseSection:       string(l.HouseSection),
		HouseManageNo:      l.HouseManageNo,
		Address:            l.Address,
		AreaName:           l.AreaName,
		ReceiptStartDate:   l.ReceiptStartDate.Format(responseDateLayout),
		AnnounceDate:       formatDate(l.AnnounceDate),
		ReceiptEndDate:     formatDate(l.ReceiptEndDate),
		WinnerAnnounceDate: formatDate(l.WinnerAnnounceDate),
		TotalSupplyCount:   l.TotalSupplyCount,
		ContactNumber:      l.ContactNumber,
		DetailURL:          l.DetailURL,
		FetchedVia:         l.FetchedVia,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}

	for _, p := range l.Prices {
		resp.Prices = append(resp.Prices, DeclaredPriceResponse{
			HouseManageNo: p.HouseManageNo,
			UnitTypeCode:  p.UnitTypeCode,
			TopAmount:     p.TopAmount,
			SupplyCount:   p.SupplyCount,
		})
	}
	return resp
}

// FromListings converts a slice of domain listings
func FromListings(listings []listing.Listing) []ListingResponse {
	responses := make([]ListingResponse, len(listings))
	for i := range listings {
		responses[i] = FromListing(&listings[i])
	}
	return responses
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(responseDateLayout)
	return &formatted
}
