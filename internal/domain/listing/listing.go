package listing

import (
	"fmt"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
)

// Source identifies the logical housing-program family a listing belongs to.
// It is stable across provider fallbacks: whichever adapter served the data,
// the listing keeps the same source so reconciliation never duplicates it.
type Source string

const (
	SourceApartment    Source = "APT"
	SourcePublicRental Source = "PUBLIC_RENTAL"
)

// IsValid returns true if the source is a known program family
func (s Source) IsValid() bool {
	switch s {
	case SourceApartment, SourcePublicRental:
		return true
	default:
		return false
	}
}

// HouseSection is the subscription program category published with a listing
type HouseSection string

const (
	HouseSectionApartment      HouseSection = "APT"
	HouseSectionPublicRental   HouseSection = "PUBLIC_RENTAL"
	HouseSectionNationalRental HouseSection = "NATIONAL_RENTAL"
	HouseSectionHappyHouse     HouseSection = "HAPPY_HOUSE"
)

// IsRental returns true for government rental-style programs.
// Rental listings have no meaningful sale price, so they are exempt
// from market comparison.
func (s HouseSection) IsRental() bool {
	switch s {
	case HouseSectionPublicRental, HouseSectionNationalRental, HouseSectionHappyHouse:
		return true
	default:
		return false
	}
}

// Key is the business key of a listing: one subscription offering is
// identified by its program family, house name and receipt start date.
type Key struct {
	Source           Source
	HouseName        string
	ReceiptStartDate time.Time
}

// String returns a loggable representation of the key
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Source, k.HouseName, k.ReceiptStartDate.Format("2006-01-02"))
}

// Listing represents one public housing subscription offering.
// It is the aggregate root for subscription-related operations.
type Listing struct {
	shared.BaseEntity
	Source             Source       `gorm:"type:varchar(30);not null;uniqueIndex:idx_listings_business_key,priority:1"`
	HouseName          string       `gorm:"type:varchar(200);not null;uniqueIndex:idx_listings_business_key,priority:2"`
	ReceiptStartDate   time.Time    `gorm:"type:date;not null;uniqueIndex:idx_listings_business_key,priority:3"`
	HouseManageNo      string       `gorm:"type:varchar(40);index"` // external identifier, may be empty
	Address            string       `gorm:"type:varchar(300)"`
	AreaName           string       `gorm:"type:varchar(50);index"`
	HouseSection       HouseSection `gorm:"type:varchar(30);not null;default:'APT'"`
	AnnounceDate       *time.Time   `gorm:"type:date"`
	ReceiptEndDate     *time.Time   `gorm:"type:date"`
	WinnerAnnounceDate *time.Time   `gorm:"type:date"`
	TotalSupplyCount   int          `gorm:"not null;default:0"`
	ContactNumber      string       `gorm:"type:varchar(30)"`
	DetailURL          string       `gorm:"type:varchar(500)"`

	// FetchedVia records which provider adapter produced this listing.
	// Observability only, never persisted.
	FetchedVia string `gorm:"-" json:"-"`

	// Prices carries the declared prices fetched with the announcement.
	// Persisted separately through DeclaredPriceRepository, keyed by the
	// manage number rather than the listing row.
	Prices []DeclaredPrice `gorm:"-" json:"-"`
}

// TableName returns the table name for GORM
func (Listing) TableName() string {
	return "listings"
}

// NewListing creates a new listing with its business key fields
func NewListing(source Source, houseName string, receiptStart time.Time) (*Listing, error) {
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown listing source")
	}
	if houseName == "" {
		return nil, shared.NewDomainError("INVALID_HOUSE_NAME", "House name cannot be empty")
	}
	if receiptStart.IsZero() {
		return nil, shared.NewDomainError("INVALID_RECEIPT_START", "Receipt start date is required")
	}

	return &Listing{
		BaseEntity:       shared.NewBaseEntity(),
		Source:           source,
		HouseName:        houseName,
		ReceiptStartDate: receiptStart,
		HouseSection:     HouseSectionApartment,
	}, nil
}

// Key returns the listing's business key
func (l *Listing) Key() Key {
	return Key{
		Source:           l.Source,
		HouseName:        l.HouseName,
		ReceiptStartDate: l.ReceiptStartDate,
	}
}

// HasExternalID returns true if the listing carries the upstream manage number
func (l *Listing) HasExternalID() bool {
	return l.HouseManageNo != ""
}

// IsMarketComparisonExempt returns true when the listing's program has no
// comparable sale price (rental programs)
func (l *Listing) IsMarketComparisonExempt() bool {
	return l.HouseSection.IsRental()
}

// ApplyFetched replaces every non-key field with the freshly fetched values.
// The business key is immutable; callers must only apply listings with the
// same key.
func (l *Listing) ApplyFetched(fetched *Listing) {
	l.HouseManageNo = fetched.HouseManageNo
	l.Address = fetched.Address
	l.AreaName = fetched.AreaName
	l.HouseSection = fetched.HouseSection
	l.AnnounceDate = fetched.AnnounceDate
	l.ReceiptEndDate = fetched.ReceiptEndDate
	l.WinnerAnnounceDate = fetched.WinnerAnnounceDate
	l.TotalSupplyCount = fetched.TotalSupplyCount
	l.ContactNumber = fetched.ContactNumber
	l.DetailURL = fetched.DetailURL
	l.UpdatedAt = time.Now()
}
