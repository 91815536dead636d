package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/acquisition"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"go.uber.org/zap"
)

const (
	// maxResponseSize limits response body reads to 10MB
	maxResponseSize = 10 * 1024 * 1024

	aptAnnouncementPath    = "/getAPTLttotPblancDetail"
	aptUnitModelPath       = "/getAPTLttotPblancMdl"
	rentalAnnouncementPath = "/getPblPvtRentLttotPblancDetail"
	rentalUnitModelPath    = "/getPblPvtRentLttotPblancMdl"
)

// ApplyHomeAdapter fetches subscription announcements from the open-data
// portal. One adapter serves one program family; the portal publishes
// apartment and rental announcements on separate endpoints.
type ApplyHomeAdapter struct {
	config     *ApplyHomeConfig
	source     listing.Source
	httpClient *http.Client
	logger     *zap.Logger
}

// NewApplyHomeAdapter creates a new announcement API adapter
func NewApplyHomeAdapter(config *ApplyHomeConfig, source listing.Source, logger *zap.Logger) (*ApplyHomeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("applyhome: unknown source %q", source)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ApplyHomeAdapter{
		config: config,
		source: source,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.Named("applyhome"),
	}, nil
}

// SourceName returns the adapter's name for logging and result tagging
func (a *ApplyHomeAdapter) SourceName() string {
	return "applyhome-api"
}

// Fetch returns listings for the area whose receipt opens on or after date
func (a *ApplyHomeAdapter) Fetch(ctx context.Context, area string, date time.Time) ([]listing.Listing, error) {
	return a.fetchAnnouncements(ctx, area, date.Format(applyHomeDateLayout))
}

// FetchAll returns every listing the portal publishes for the area
func (a *ApplyHomeAdapter) FetchAll(ctx context.Context, area string) ([]listing.Listing, error) {
	return a.fetchAnnouncements(ctx, area, "")
}

// fetchAnnouncements pages through the announcement endpoint and converts
// each row, then attaches declared prices per announcement. A price fetch
// failure degrades that listing to price-less instead of failing the batch.
func (a *ApplyHomeAdapter) fetchAnnouncements(ctx context.Context, area, fromDate string) ([]listing.Listing, error) {
	var announcements []applyHomeAnnouncement

	for page := 1; ; page++ {
		if page > 1 {
			if err := a.pause(ctx); err != nil {
				return nil, fmt.Errorf("%w: %v", acquisition.ErrSourceUnavailable, err)
			}
		}

		params := url.Values{}
		params.Set("page", fmt.Sprintf("%d", page))
		params.Set("perPage", fmt.Sprintf("%d", a.config.PageSize))
		params.Set("cond[SUBSCRPT_AREA_CODE_NM::EQ]", area)
		if fromDate != "" {
			params.Set("cond[RCEPT_BGNDE::GTE]", fromDate)
		}

		var resp applyHomeListResponse
		if err := a.doRequest(ctx, a.announcementPath(), params, &resp); err != nil {
			return nil, err
		}

		announcements = append(announcements, resp.Data...)
		if resp.CurrentCount == 0 || page*a.config.PageSize >= resp.TotalCount {
			break
		}
	}

	listings := make([]listing.Listing, 0, len(announcements))
	for _, announcement := range announcements {
		converted, err := announcement.toListing(a.source)
		if err != nil {
			a.logger.Debug("skipping unconvertible announcement",
				zap.String("house_name", announcement.HouseName),
				zap.Error(err))
			continue
		}

		if converted.HasExternalID() {
			prices, err := a.fetchPrices(ctx, converted.HouseManageNo)
			if err != nil {
				a.logger.Warn("declared price fetch failed",
					zap.String("house_manage_no", converted.HouseManageNo),
					zap.Error(err))
			} else {
				converted.Prices = prices
			}
		}

		listings = append(listings, *converted)
	}

	a.logger.Debug("announcement fetch complete",
		zap.String("area", area),
		zap.Int("count", len(listings)))
	return listings, nil
}

// fetchPrices returns the declared prices of one announcement
func (a *ApplyHomeAdapter) fetchPrices(ctx context.Context, houseManageNo string) ([]listing.DeclaredPrice, error) {
	if err := a.pause(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", acquisition.ErrSourceUnavailable, err)
	}

	params := url.Values{}
	params.Set("page", "1")
	params.Set("perPage", fmt.Sprintf("%d", a.config.PageSize))
	params.Set("cond[HOUSE_MANAGE_NO::EQ]", houseManageNo)

	var resp applyHomePriceResponse
	if err := a.doRequest(ctx, a.unitModelPath(), params, &resp); err != nil {
		return nil, err
	}

	prices := make([]listing.DeclaredPrice, 0, len(resp.Data))
	for _, model := range resp.Data {
		price, err := model.toDeclaredPrice()
		if err != nil {
			a.logger.Debug("skipping unparsable unit model",
				zap.String("house_manage_no", houseManageNo),
				zap.String("unit_type_code", model.UnitTypeCode),
				zap.Error(err))
			continue
		}
		prices = append(prices, *price)
	}
	return prices, nil
}

// doRequest performs an API request and decodes the JSON response
func (a *ApplyHomeAdapter) doRequest(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("serviceKey", a.config.ServiceKey)
	requestURL := a.config.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", acquisition.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", acquisition.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d", acquisition.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %v", acquisition.ErrSourceUnavailable, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", acquisition.ErrInvalidResponse, err)
	}
	return nil
}

// pause waits the courtesy delay between consecutive API calls
func (a *ApplyHomeAdapter) pause(ctx context.Context) error {
	if a.config.RequestDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(a.config.RequestDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (a *ApplyHomeAdapter) announcementPath() string {
	if a.source == listing.SourcePublicRental {
		return rentalAnnouncementPath
	}
	return aptAnnouncementPath
}

func (a *ApplyHomeAdapter) unitModelPath() string {
	if a.source == listing.SourcePublicRental {
		return rentalUnitModelPath
	}
	return aptUnitModelPath
}

// Ensure ApplyHomeAdapter implements acquisition.Provider
var _ acquisition.Provider = (*ApplyHomeAdapter)(nil)
