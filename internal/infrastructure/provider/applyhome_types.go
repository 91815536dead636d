package provider

import (
	"encoding/json"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/shopspring/decimal"
)

// applyHomeListResponse is the paginated envelope of the announcement API
type applyHomeListResponse struct {
	Page         int                     `json:"page"`
	PerPage      int                     `json:"perPage"`
	TotalCount   int                     `json:"totalCount"`
	CurrentCount int                     `json:"currentCount"`
	Data         []applyHomeAnnouncement `json:"data"`
}

// applyHomePriceResponse is the paginated envelope of the unit-type endpoint
type applyHomePriceResponse struct {
	Page         int                  `json:"page"`
	PerPage      int                  `json:"perPage"`
	TotalCount   int                  `json:"totalCount"`
	CurrentCount int                  `json:"currentCount"`
	Data         []applyHomeUnitModel `json:"data"`
}

// applyHomeAnnouncement is one subscription announcement as published by
// the open-data portal. Numeric identifiers arrive as JSON numbers, so
// they are decoded through json.Number to keep leading digits intact.
type applyHomeAnnouncement struct {
	HouseManageNo      json.Number `json:"HOUSE_MANAGE_NO"`
	AnnouncementNo     json.Number `json:"PBLANC_NO"`
	HouseName          string      `json:"HOUSE_NM"`
	HouseSectionCode   string      `json:"HOUSE_SECD"`
	HouseSectionName   string      `json:"HOUSE_SECD_NM"`
	SupplyAddress      string      `json:"HSSPLY_ADRES"`
	SubscriptionArea   string      `json:"SUBSCRPT_AREA_CODE_NM"`
	AnnounceDate       string      `json:"RCRIT_PBLANC_DE"`
	ReceiptStartDate   string      `json:"RCEPT_BGNDE"`
	ReceiptEndDate     string      `json:"RCEPT_ENDDE"`
	WinnerAnnounceDate string      `json:"PRZWNER_PRESNATN_DE"`
	TotalSupplyCount   int         `json:"TOT_SUPLY_HSHLDCO"`
	ContactNumber      string      `json:"MDHS_TELNO"`
	DetailURL          string      `json:"PBLANC_URL"`
}

// applyHomeUnitModel is one house-type row of an announcement, carrying
// the declared top amount for that unit type
type applyHomeUnitModel struct {
	HouseManageNo json.Number `json:"HOUSE_MANAGE_NO"`
	ModelNo       json.Number `json:"MODEL_NO"`
	UnitTypeCode  string      `json:"HOUSE_TY"`
	SupplyCount   int         `json:"SUPLY_HSHLDCO"`
	TopAmount     json.Number `json:"LTTOT_TOP_AMOUNT"`
}

const applyHomeDateLayout = "2006-01-02"

// houseSectionFromCode maps the portal's section code to the domain
// program category. Unknown codes default to apartment, which keeps a
// new portal code from dropping announcements on the floor.
func houseSectionFromCode(code string) listing.HouseSection {
	switch code {
	case "09":
		return listing.HouseSectionPublicRental
	case "10":
		return listing.HouseSectionNationalRental
	case "11":
		return listing.HouseSectionHappyHouse
	default:
		return listing.HouseSectionApartment
	}
}

// toListing converts an announcement into the domain aggregate. The
// business-key fields must all be present; announcements missing any of
// them are not convertible and are skipped by the caller.
func (a applyHomeAnnouncement) toListing(source listing.Source) (*listing.Listing, error) {
	receiptStart, err := time.Parse(applyHomeDateLayout, a.ReceiptStartDate)
	if err != nil {
		return nil, err
	}

	l, err := listing.NewListing(source, a.HouseName, receiptStart)
	if err != nil {
		return nil, err
	}

	l.HouseManageNo = a.HouseManageNo.String()
	l.Address = a.SupplyAddress
	l.AreaName = a.SubscriptionArea
	l.HouseSection = houseSectionFromCode(a.HouseSectionCode)
	l.ContactNumber = a.ContactNumber
	l.DetailURL = a.DetailURL
	l.TotalSupplyCount = a.TotalSupplyCount
	l.AnnounceDate = parseOptionalDate(a.AnnounceDate)
	l.ReceiptEndDate = parseOptionalDate(a.ReceiptEndDate)
	l.WinnerAnnounceDate = parseOptionalDate(a.WinnerAnnounceDate)
	return l, nil
}

// toDeclaredPrice converts a unit-type row into a domain declared price
func (m applyHomeUnitModel) toDeclaredPrice() (*listing.DeclaredPrice, error) {
	amount, err := decimal.NewFromString(m.TopAmount.String())
	if err != nil {
		return nil, err
	}
	return listing.NewDeclaredPrice(m.HouseManageNo.String(), m.UnitTypeCode, amount, m.SupplyCount)
}

func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(applyHomeDateLayout, value)
	if err != nil {
		return nil
	}
	return &parsed
}
