package acquisition

import (
	"context"
	"time"

	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"go.uber.org/zap"
)

// Collector fans a target-area list out across all registered source
// orchestrators and concatenates their outputs. No deduplication happens
// here: reconciliation deduplicates later via the listing business key.
type Collector struct {
	orchestrators []*SourceOrchestrator
	targetAreas   []string
	logger        *zap.Logger
}

// NewCollector creates a Collector over the registered orchestrators and
// the fixed target-area list
func NewCollector(orchestrators []*SourceOrchestrator, targetAreas []string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		orchestrators: orchestrators,
		targetAreas:   targetAreas,
		logger:        logger.Named("collector"),
	}
}

// TargetAreas returns the configured target-area list
func (c *Collector) TargetAreas() []string {
	return c.targetAreas
}

// CollectForArea invokes every registered orchestrator for the area and
// concatenates their outputs
func (c *Collector) CollectForArea(ctx context.Context, area string, date time.Time) []listing.Listing {
	var collected []listing.Listing
	for _, o := range c.orchestrators {
		collected = append(collected, o.Fetch(ctx, area, date)...)
	}
	c.logger.Debug("collected listings for area",
		zap.String("area", area),
		zap.Int("count", len(collected)))
	return collected
}

// CollectAllAreas iterates the target-area list and concatenates the
// per-area results
func (c *Collector) CollectAllAreas(ctx context.Context, date time.Time) []listing.Listing {
	var collected []listing.Listing
	for _, area := range c.targetAreas {
		collected = append(collected, c.CollectForArea(ctx, area, date)...)
	}
	return collected
}
