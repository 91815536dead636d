package provider

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// molitResponse is the XML envelope of the transaction-history API
type molitResponse struct {
	Header molitHeader `xml:"header"`
	Body   molitBody   `xml:"body"`
}

type molitHeader struct {
	ResultCode string `xml:"resultCode"`
	ResultMsg  string `xml:"resultMsg"`
}

type molitBody struct {
	Items      molitItems `xml:"items"`
	NumOfRows  int        `xml:"numOfRows"`
	PageNo     int        `xml:"pageNo"`
	TotalCount int        `xml:"totalCount"`
}

type molitItems struct {
	Items []molitTransaction `xml:"item"`
}

// molitTransaction is one apartment sale as published by the ministry.
// Deal amounts arrive as grouped strings ("82,500", unit 10,000 KRW) and
// the deal date is split across three numeric fields.
type molitTransaction struct {
	BuildingName  string `xml:"aptNm"`
	DealAmount    string `xml:"dealAmount"`
	ExclusiveArea string `xml:"excluUseAr"`
	Floor         int    `xml:"floor"`
	BuildYear     int    `xml:"buildYear"`
	DealYear      int    `xml:"dealYear"`
	DealMonth     int    `xml:"dealMonth"`
	DealDay       int    `xml:"dealDay"`
	Neighborhood  string `xml:"umdNm"`
}

// molitResultOK is the success code of the transaction-history API
const molitResultOK = "000"

// parseDealAmount parses a grouped amount string like "82,500"
func parseDealAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty deal amount")
	}
	return decimal.NewFromString(cleaned)
}

// toRecord converts a ministry row into a domain transaction record
func (t molitTransaction) toRecord(regionCode string) (*market.TransactionRecord, error) {
	amount, err := parseDealAmount(t.DealAmount)
	if err != nil {
		return nil, err
	}
	if t.DealYear <= 0 || t.DealMonth <= 0 {
		return nil, fmt.Errorf("missing deal date")
	}

	day := t.DealDay
	if day <= 0 {
		day = 1
	}

	record := &market.TransactionRecord{
		BaseEntity:   shared.NewBaseEntity(),
		RegionCode:   regionCode,
		YearMonth:    fmt.Sprintf("%04d%02d", t.DealYear, t.DealMonth),
		BuildingName: strings.TrimSpace(t.BuildingName),
		DealAmount:   amount,
		Floor:        t.Floor,
		BuildYear:    t.BuildYear,
		DealDate:     time.Date(t.DealYear, time.Month(t.DealMonth), day, 0, 0, 0, 0, time.UTC),
		Neighborhood: strings.TrimSpace(t.Neighborhood),
	}

	if area, err := strconv.ParseFloat(strings.TrimSpace(t.ExclusiveArea), 64); err == nil && area > 0 {
		record.ExclusiveArea = &area
	}
	return record, nil
}
