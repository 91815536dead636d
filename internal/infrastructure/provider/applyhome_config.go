package provider

import (
	"errors"
	"time"
)

// ApplyHomeConfig holds configuration for the subscription announcement
// open-API integration
type ApplyHomeConfig struct {
	// BaseURL is the base URL of the announcement API
	BaseURL string
	// ServiceKey is the API key issued by the open-data portal
	ServiceKey string
	// PageSize bounds one page of announcement results
	PageSize int
	// RequestDelay is the pause between consecutive paginated calls
	RequestDelay time.Duration
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// Errors for announcement API configuration
var (
	ErrApplyHomeConfigMissingBaseURL    = errors.New("applyhome: base url is required")
	ErrApplyHomeConfigMissingServiceKey = errors.New("applyhome: service key is required")
)

// NewApplyHomeConfig creates a new announcement API configuration with defaults
func NewApplyHomeConfig(baseURL, serviceKey string) *ApplyHomeConfig {
	return &ApplyHomeConfig{
		BaseURL:      baseURL,
		ServiceKey:   serviceKey,
		PageSize:     100,
		RequestDelay: 100 * time.Millisecond,
		Timeout:      10 * time.Second,
	}
}

// Validate validates the announcement API configuration
func (c *ApplyHomeConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrApplyHomeConfigMissingBaseURL
	}
	if c.ServiceKey == "" {
		return ErrApplyHomeConfigMissingServiceKey
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
