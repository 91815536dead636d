package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	acquisitionapp "github.com/leeyunbo/house-ping-sub000/internal/application/acquisition"
	analysisapp "github.com/leeyunbo/house-ping-sub000/internal/application/analysis"
	listingapp "github.com/leeyunbo/house-ping-sub000/internal/application/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/shared"
	"github.com/leeyunbo/house-ping-sub000/internal/interfaces/http/dto"
	"github.com/leeyunbo/house-ping-sub000/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// ListingHandler handles subscription listing API endpoints
type ListingHandler struct {
	BaseHandler
	listings  listing.Repository
	sync      *listingapp.SyncService
	collector *acquisitionapp.Collector
	analysis  *analysisapp.Service
	logger    *zap.Logger
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(
	listings listing.Repository,
	sync *listingapp.SyncService,
	collector *acquisitionapp.Collector,
	analysis *analysisapp.Service,
	logger *zap.Logger,
) *ListingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingHandler{
		listings:  listings,
		sync:      sync,
		collector: collector,
		analysis:  analysis,
		logger:    logger.Named("listing-handler"),
	}
}

// RegisterRoutes registers listing routes on the API group
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/listings")
	{
		listings.GET("", h.List)
		listings.POST("/sync", h.Sync)
		listings.POST("/cleanup", h.Cleanup)
		listings.GET("/:id/analysis", h.Analyze)
		listings.GET("/:id/badge", h.Badge)
	}
	rg.GET("/collect", h.Collect)
}

// List returns stored listings, filtered by area and program family
func (h *ListingHandler) List(c *gin.Context) {
	req := dto.ListListingsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.Search = req.Search
	if req.Source != "" {
		filter.Filters["source"] = req.Source
	}
	if req.Area != "" {
		filter.Filters["area_name"] = req.Area
	}

	found, err := h.listings.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.listings.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := dto.FromListings(found)
	if req.IncludeBadge {
		h.attachBadges(c, found, responses)
	}

	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// attachBadges computes the price badge per listed item. Badge computation
// is best effort; a failing item keeps an empty badge.
func (h *ListingHandler) attachBadges(c *gin.Context, found []listing.Listing, responses []dto.ListingResponse) {
	for i := range found {
		badge, err := h.analysis.BadgeForListing(c.Request.Context(), found[i].ID)
		if err != nil {
			h.logger.Warn("badge computation failed",
				zap.String("listing_id", found[i].ID.String()),
				zap.Error(err))
			continue
		}
		responses[i].Badge = string(badge)
	}
}

// Sync fetches the full listing set from every provider and reconciles it
// into the store
func (h *ListingHandler) Sync(c *gin.Context) {
	result := h.sync.Sync(c.Request.Context())
	h.Success(c, dto.SyncResultResponse{
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Skipped:  result.Skipped,
		Failed:   result.Failed,
		Total:    result.Total(),
	})
}

// Cleanup deletes listings older than the retention window
func (h *ListingHandler) Cleanup(c *gin.Context) {
	deleted, err := h.sync.Cleanup(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.CleanupResponse{Deleted: deleted})
}

// Collect performs an ad-hoc fetch for one area without persisting anything
func (h *ListingHandler) Collect(c *gin.Context) {
	var req dto.CollectRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	date := time.Now().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			h.BadRequest(c, "date must be formatted as 2006-01-02")
			return
		}
		date = parsed
	}

	collected := h.collector.CollectForArea(c.Request.Context(), req.Area, date)
	h.Success(c, dto.FromListings(collected))
}

// Analyze returns the full market analysis for one listing
func (h *ListingHandler) Analyze(c *gin.Context) {
	id, ok := h.listingID(c)
	if !ok {
		return
	}

	result, err := h.analysis.Analyze(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Badge returns just the price badge for one listing
func (h *ListingHandler) Badge(c *gin.Context) {
	id, ok := h.listingID(c)
	if !ok {
		return
	}

	badge, err := h.analysis.BadgeForListing(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.BadgeResponse{
		ListingID: id.String(),
		Badge:     string(badge),
	})
}

// listingID binds and parses the id path parameter
func (h *ListingHandler) listingID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
