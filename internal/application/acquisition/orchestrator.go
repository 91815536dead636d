package acquisition

import (
	"context"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/acquisition"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"go.uber.org/zap"
)

// SourceOrchestrator runs an ordered fallback chain of provider adapters
// for one logical source. Each adapter is tried in sequence and the first
// non-empty result wins; a failing adapter is treated the same as an empty
// one. The orchestrator itself never returns an error: availability beats
// completeness, and a degraded answer from a secondary tier is better than
// no answer.
type SourceOrchestrator struct {
	source    listing.Source
	providers []acquisition.Provider
	logger    *zap.Logger
}

// NewSourceOrchestrator creates an orchestrator over an ordered provider chain
func NewSourceOrchestrator(source listing.Source, providers []acquisition.Provider, logger *zap.Logger) *SourceOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceOrchestrator{
		source:    source,
		providers: providers,
		logger:    logger.Named("orchestrator").With(zap.String("source", string(source))),
	}
}

// Source returns the logical source this orchestrator serves
func (o *SourceOrchestrator) Source() listing.Source {
	return o.source
}

// Fetch tries each provider in order and returns the first non-empty
// result, tagged with the winning adapter's name. An exhausted chain
// yields an empty slice, not an error.
func (o *SourceOrchestrator) Fetch(ctx context.Context, area string, date time.Time) []listing.Listing {
	return o.run(area, func(p acquisition.Provider) ([]listing.Listing, error) {
		return p.Fetch(ctx, area, date)
	})
}

// FetchAll is Fetch over the providers' full listing sets
func (o *SourceOrchestrator) FetchAll(ctx context.Context, area string) []listing.Listing {
	return o.run(area, func(p acquisition.Provider) ([]listing.Listing, error) {
		return p.FetchAll(ctx, area)
	})
}

func (o *SourceOrchestrator) run(area string, fetch func(acquisition.Provider) ([]listing.Listing, error)) []listing.Listing {
	for _, provider := range o.providers {
		results, err := fetch(provider)
		if err != nil {
			// A broken tier and an empty tier advance the chain the same
			// way, but they are logged distinctly so the signals stay
			// separable in the logs.
			o.logger.Warn("provider fetch failed, falling back",
				zap.String("provider", provider.SourceName()),
				zap.String("area", area),
				zap.Error(err))
			continue
		}
		if len(results) == 0 {
			o.logger.Debug("provider returned no listings, falling back",
				zap.String("provider", provider.SourceName()),
				zap.String("area", area))
			continue
		}

		for i := range results {
			results[i].Source = o.source
			results[i].FetchedVia = provider.SourceName()
		}
		o.logger.Info("provider fetch succeeded",
			zap.String("provider", provider.SourceName()),
			zap.String("area", area),
			zap.Int("count", len(results)))
		return results
	}

	o.logger.Warn("all providers exhausted without results", zap.String("area", area))
	return []listing.Listing{}
}
