package acquisition

import (
	"context"
	"testing"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/acquisition"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a canned-response provider for testing fallback order
type stubProvider struct {
	name       string
	results    []listing.Listing
	err        error
	fetchCalls int
}

func (p *stubProvider) Fetch(ctx context.Context, area string, date time.Time) ([]listing.Listing, error) {
	p.fetchCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

func (p *stubProvider) FetchAll(ctx context.Context, area string) ([]listing.Listing, error) {
	return p.Fetch(ctx, area, time.Time{})
}

func (p *stubProvider) SourceName() string {
	return p.name
}

var _ acquisition.Provider = (*stubProvider)(nil)

func listings(n int) []listing.Listing {
	out := make([]listing.Listing, n)
	for i := range out {
		out[i].HouseName = "단지"
	}
	return out
}

func TestSourceOrchestratorFetch(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	t.Run("first provider with results wins", func(t *testing.T) {
		primary := &stubProvider{name: "api", results: listings(3)}
		secondary := &stubProvider{name: "web"}
		o := NewSourceOrchestrator(listing.SourceApartment, []acquisition.Provider{primary, secondary}, nil)

		results := o.Fetch(ctx, "서울", date)
		assert.Len(t, results, 3)
		assert.Equal(t, 1, primary.fetchCalls)
		assert.Equal(t, 0, secondary.fetchCalls)
	})

	t.Run("failing provider falls through to the next", func(t *testing.T) {
		primary := &stubProvider{name: "api", err: acquisition.ErrSourceUnavailable}
		secondary := &stubProvider{name: "web", results: listings(2)}
		o := NewSourceOrchestrator(listing.SourceApartment, []acquisition.Provider{primary, secondary}, nil)

		results := o.Fetch(ctx, "서울", date)
		assert.Len(t, results, 2)
		assert.Equal(t, 1, primary.fetchCalls)
		assert.Equal(t, 1, secondary.fetchCalls)
	})

	t.Run("empty provider falls through the same as a failing one", func(t *testing.T) {
		primary := &stubProvider{name: "api"}
		secondary := &stubProvider{name: "web", results: listings(1)}
		tertiary := &stubProvider{name: "db", results: listings(9)}
		o := NewSourceOrchestrator(listing.SourceApartment, []acquisition.Provider{primary, secondary, tertiary}, nil)

		results := o.Fetch(ctx, "서울", date)
		assert.Len(t, results, 1)
		assert.Equal(t, 1, primary.fetchCalls)
		assert.Equal(t, 1, secondary.fetchCalls)
		assert.Equal(t, 0, tertiary.fetchCalls)
	})

	t.Run("exhausted chain yields empty slice", func(t *testing.T) {
		primary := &stubProvider{name: "api", err: acquisition.ErrSourceUnavailable}
		secondary := &stubProvider{name: "web"}
		o := NewSourceOrchestrator(listing.SourceApartment, []acquisition.Provider{primary, secondary}, nil)

		results := o.Fetch(ctx, "서울", date)
		require.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("winner tags source and provider on every listing", func(t *testing.T) {
		provider := &stubProvider{name: "applyhome-web", results: listings(2)}
		o := NewSourceOrchestrator(listing.SourcePublicRental, []acquisition.Provider{provider}, nil)

		results := o.Fetch(ctx, "경기", date)
		require.Len(t, results, 2)
		for _, l := range results {
			assert.Equal(t, listing.SourcePublicRental, l.Source)
			assert.Equal(t, "applyhome-web", l.FetchedVia)
		}
	})
}

func TestCollector(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	apt := NewSourceOrchestrator(listing.SourceApartment,
		[]acquisition.Provider{&stubProvider{name: "api", results: listings(2)}}, nil)
	rental := NewSourceOrchestrator(listing.SourcePublicRental,
		[]acquisition.Provider{&stubProvider{name: "api", results: listings(3)}}, nil)

	t.Run("concatenates across orchestrators", func(t *testing.T) {
		c := NewCollector([]*SourceOrchestrator{apt, rental}, []string{"서울"}, nil)

		collected := c.CollectForArea(ctx, "서울", date)
		assert.Len(t, collected, 5)
	})

	t.Run("iterates every target area", func(t *testing.T) {
		c := NewCollector([]*SourceOrchestrator{apt, rental}, []string{"서울", "경기"}, nil)

		collected := c.CollectAllAreas(ctx, date)
		assert.Len(t, collected, 10)
	})
}
