package provider

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"go.uber.org/zap"
)

// MolitConfig holds configuration for the transaction-history API
type MolitConfig struct {
	// BaseURL is the base URL of the ministry API
	BaseURL string
	// ServiceKey is the API key issued by the open-data portal
	ServiceKey string
	// PageSize bounds one page of transaction results
	PageSize int
	// RequestDelay is the pause between consecutive paginated calls
	RequestDelay time.Duration
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// Errors for transaction-history API configuration and responses
var (
	ErrMolitConfigMissingBaseURL    = errors.New("molit: base url is required")
	ErrMolitConfigMissingServiceKey = errors.New("molit: service key is required")
	ErrMolitUpstream                = errors.New("molit: upstream request failed")
	ErrMolitInvalidResponse         = errors.New("molit: invalid response")
)

// NewMolitConfig creates a new transaction-history API configuration with defaults
func NewMolitConfig(baseURL, serviceKey string) *MolitConfig {
	return &MolitConfig{
		BaseURL:      baseURL,
		ServiceKey:   serviceKey,
		PageSize:     100,
		RequestDelay: 100 * time.Millisecond,
		Timeout:      10 * time.Second,
	}
}

// Validate validates the transaction-history API configuration
func (c *MolitConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrMolitConfigMissingBaseURL
	}
	if c.ServiceKey == "" {
		return ErrMolitConfigMissingServiceKey
	}
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

// MolitAdapter fetches apartment sale transactions from the ministry's
// open-data API, one region and deal month per request
type MolitAdapter struct {
	config     *MolitConfig
	httpClient *http.Client
	now        func() time.Time
	logger     *zap.Logger
}

// NewMolitAdapter creates a new transaction-history API adapter
func NewMolitAdapter(config *MolitConfig, logger *zap.Logger) (*MolitAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MolitAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		now:    time.Now,
		logger: logger.Named("molit"),
	}, nil
}

// WithClock overrides the adapter clock for deterministic tests
func (a *MolitAdapter) WithClock(now func() time.Time) *MolitAdapter {
	a.now = now
	return a
}

// FetchRecent returns the region's transactions for the last months deal
// months, newest month first
func (a *MolitAdapter) FetchRecent(ctx context.Context, regionCode string, months int) ([]market.TransactionRecord, error) {
	if months <= 0 {
		months = 1
	}

	var records []market.TransactionRecord
	current := a.now()
	for i := 0; i < months; i++ {
		if i > 0 {
			if err := a.pause(ctx); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMolitUpstream, err)
			}
		}

		month := current.AddDate(0, -i, 0)
		dealYM := month.Format("200601")
		monthly, err := a.fetchMonth(ctx, regionCode, dealYM)
		if err != nil {
			return nil, err
		}
		records = append(records, monthly...)
	}

	a.logger.Debug("transaction fetch complete",
		zap.String("region_code", regionCode),
		zap.Int("months", months),
		zap.Int("count", len(records)))
	return records, nil
}

// fetchMonth pages through one region-month of transactions
func (a *MolitAdapter) fetchMonth(ctx context.Context, regionCode, dealYM string) ([]market.TransactionRecord, error) {
	var records []market.TransactionRecord

	for page := 1; ; page++ {
		if page > 1 {
			if err := a.pause(ctx); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMolitUpstream, err)
			}
		}

		params := url.Values{}
		params.Set("serviceKey", a.config.ServiceKey)
		params.Set("LAWD_CD", regionCode)
		params.Set("DEAL_YMD", dealYM)
		params.Set("pageNo", fmt.Sprintf("%d", page))
		params.Set("numOfRows", fmt.Sprintf("%d", a.config.PageSize))

		resp, err := a.doRequest(ctx, params)
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Body.Items.Items {
			record, err := item.toRecord(regionCode)
			if err != nil {
				a.logger.Debug("skipping unparsable transaction",
					zap.String("building_name", item.BuildingName),
					zap.String("deal_amount", item.DealAmount),
					zap.Error(err))
				continue
			}
			records = append(records, *record)
		}

		if page*a.config.PageSize >= resp.Body.TotalCount || len(resp.Body.Items.Items) == 0 {
			break
		}
	}
	return records, nil
}

// doRequest performs an API request and decodes the XML response
func (a *MolitAdapter) doRequest(ctx context.Context, params url.Values) (*molitResponse, error) {
	requestURL := a.config.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMolitUpstream, err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMolitUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrMolitUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMolitUpstream, err)
	}

	var decoded molitResponse
	if err := xml.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMolitInvalidResponse, err)
	}

	if decoded.Header.ResultCode != molitResultOK {
		return nil, fmt.Errorf("%w: %s (%s)", ErrMolitUpstream,
			decoded.Header.ResultMsg, decoded.Header.ResultCode)
	}
	return &decoded, nil
}

// pause waits the courtesy delay between consecutive API calls
func (a *MolitAdapter) pause(ctx context.Context) error {
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

// Ensure MolitAdapter implements market.TransactionSource
var _ market.TransactionSource = (*MolitAdapter)(nil)
