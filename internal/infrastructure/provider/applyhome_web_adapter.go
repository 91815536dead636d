package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/acquisition"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"go.uber.org/zap"
)

const defaultWebTimeout = 30 * time.Second

// extractAnnouncementsScript pulls the announcement table off the portal's
// list view. The website renders the table client-side, which is why this
// tier needs a real browser instead of a plain HTTP GET.
const extractAnnouncementsScript = `
(() => {
	const rows = document.querySelectorAll('#schTbl tbody tr');
	return Array.from(rows).map(row => {
		const cells = row.querySelectorAll('td');
		if (cells.length < 6) return null;
		const link = cells[1].querySelector('a');
		const dates = cells[4].innerText.split('~');
		return {
			houseName: cells[1].innerText.trim(),
			sectionLabel: cells[0].innerText.trim(),
			area: cells[2].innerText.trim(),
			address: cells[3].innerText.trim(),
			receiptStart: (dates[0] || '').trim(),
			receiptEnd: (dates[1] || '').trim(),
			detailUrl: link ? link.href : ''
		};
	}).filter(r => r !== null);
})()`

// ApplyHomeWebConfig holds configuration for the website fallback tier
type ApplyHomeWebConfig struct {
	// URL is the announcement list view of the portal website
	URL string
	// Timeout bounds one scrape including browser startup
	Timeout time.Duration
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
}

// ErrApplyHomeWebConfigMissingURL indicates the list view URL is unset
var ErrApplyHomeWebConfigMissingURL = errors.New("applyhome-web: url is required")

// Validate validates the website fallback configuration
func (c *ApplyHomeWebConfig) Validate() error {
	if c.URL == "" {
		return ErrApplyHomeWebConfigMissingURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultWebTimeout
	}
	return nil
}

// applyHomeWebRow is one scraped announcement row
type applyHomeWebRow struct {
	HouseName    string `json:"houseName"`
	SectionLabel string `json:"sectionLabel"`
	Area         string `json:"area"`
	Address      string `json:"address"`
	ReceiptStart string `json:"receiptStart"`
	ReceiptEnd   string `json:"receiptEnd"`
	DetailURL    string `json:"detailUrl"`
}

// ApplyHomeWebAdapter scrapes the portal website with a headless browser.
// It is the degraded tier behind the API adapter: scraped rows carry no
// manage number, so downstream price analysis is skipped for them, but
// reconciliation still works off the business key.
type ApplyHomeWebAdapter struct {
	config      *ApplyHomeWebConfig
	source      listing.Source
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// NewApplyHomeWebAdapter creates a new headless-browser fallback adapter
func NewApplyHomeWebAdapter(config *ApplyHomeWebConfig, source listing.Source, logger *zap.Logger) (*ApplyHomeWebAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("applyhome-web: unknown source %q", source)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
	)
	if config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ApplyHomeWebAdapter{
		config:      config,
		source:      source,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		logger:      logger.Named("applyhome-web"),
	}, nil
}

// SourceName returns the adapter's name for logging and result tagging
func (a *ApplyHomeWebAdapter) SourceName() string {
	return "applyhome-web"
}

// Fetch returns scraped listings for the area opening on or after date
func (a *ApplyHomeWebAdapter) Fetch(ctx context.Context, area string, date time.Time) ([]listing.Listing, error) {
	listings, err := a.scrape(ctx, area)
	if err != nil {
		return nil, err
	}

	filtered := listings[:0]
	for _, l := range listings {
		if !l.ReceiptStartDate.Before(date) {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

// FetchAll returns every scraped listing for the area
func (a *ApplyHomeWebAdapter) FetchAll(ctx context.Context, area string) ([]listing.Listing, error) {
	return a.scrape(ctx, area)
}

// scrape loads the list view and extracts the announcement table
func (a *ApplyHomeWebAdapter) scrape(ctx context.Context, area string) ([]listing.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(a.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			a.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	var rows []applyHomeWebRow
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(a.config.URL),
		chromedp.WaitVisible("#schTbl", chromedp.ByID),
		chromedp.Evaluate(extractAnnouncementsScript, &rows),
	)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: scrape timed out: %v", acquisition.ErrSourceUnavailable, err)
		default:
		}
		return nil, fmt.Errorf("%w: %v", acquisition.ErrSourceUnavailable, err)
	}

	listings := make([]listing.Listing, 0, len(rows))
	for _, row := range rows {
		if area != "" && !strings.Contains(row.Area, area) && !strings.Contains(row.Address, area) {
			continue
		}

		converted, err := row.toListing(a.source)
		if err != nil {
			a.logger.Debug("skipping unconvertible scraped row",
				zap.String("house_name", row.HouseName),
				zap.Error(err))
			continue
		}
		listings = append(listings, *converted)
	}

	a.logger.Debug("web scrape complete",
		zap.String("area", area),
		zap.Int("scraped", len(rows)),
		zap.Int("kept", len(listings)))
	return listings, nil
}

// toListing converts a scraped row into the domain aggregate. The website
// prints dates in the same layout the API uses.
func (r applyHomeWebRow) toListing(source listing.Source) (*listing.Listing, error) {
	receiptStart, err := time.Parse(applyHomeDateLayout, r.ReceiptStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", acquisition.ErrInvalidResponse, err)
	}

	l, err := listing.NewListing(source, r.HouseName, receiptStart)
	if err != nil {
		return nil, err
	}

	l.Address = r.Address
	l.AreaName = r.Area
	l.HouseSection = houseSectionFromLabel(r.SectionLabel)
	l.DetailURL = r.DetailURL
	l.ReceiptEndDate = parseOptionalDate(r.ReceiptEnd)
	return l, nil
}

// houseSectionFromLabel maps the website's human-readable section label
func houseSectionFromLabel(label string) listing.HouseSection {
	switch {
	case strings.Contains(label, "행복주택"):
		return listing.HouseSectionHappyHouse
	case strings.Contains(label, "국민임대"):
		return listing.HouseSectionNationalRental
	case strings.Contains(label, "임대"):
		return listing.HouseSectionPublicRental
	default:
		return listing.HouseSectionApartment
	}
}

// Close releases the browser allocator
func (a *ApplyHomeWebAdapter) Close() error {
	if a.allocCancel != nil {
		a.allocCancel()
	}
	return nil
}

// Ensure ApplyHomeWebAdapter implements acquisition.Provider
var _ acquisition.Provider = (*ApplyHomeWebAdapter)(nil)
