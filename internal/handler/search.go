package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"roomie/internal/middleware"
	"roomie/internal/model"
	"roomie/internal/service"
)

// SearchHandler handles listing and search-related HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
	suggester     *service.Suggester
	logger        *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService, suggester *service.Suggester, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{
		searchService: searchService,
		suggester:     suggester,
		logger:        logger,
	}
}

// CreateListing handles POST /api/listings
func (h *SearchHandler) CreateListing(c *gin.Context) {
	var req model.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.searchService.CreateListing(c.Request.Context(), &req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return
		}
		h.logger.Error("create_listing_failed", "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// GetListing handles GET /api/listings/:id
func (h *SearchHandler) GetListing(c *gin.Context) {
	listing, err := h.searchService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		h.logger.Error("get_listing_failed", "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// SearchListings handles GET /api/listings
func (h *SearchHandler) SearchListings(c *gin.Context) {
	req, err := parseSearchQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.searchService.Search(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("search_failed", "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Suggest handles GET /api/search/suggest
func (h *SearchHandler) Suggest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"results": h.suggester.Suggest(c.Query("q"))})
}

// parseSearchQuery reads the filter panel parameters. Unset parameters stay
// nil so the free-text query can fill them.
func parseSearchQuery(c *gin.Context) (*model.ListingSearchRequest, error) {
	req := &model.ListingSearchRequest{
		Query:   strings.TrimSpace(c.Query("q")),
		Filters: &model.ListingFilters{},
	}
	f := req.Filters

	var err error
	if f.MinRent, err = decimalParam(c, "minRent"); err != nil {
		return nil, err
	}
	if f.MaxRent, err = decimalParam(c, "maxRent"); err != nil {
		return nil, err
	}
	if f.MaxDistance, err = decimalParam(c, "maxDistance"); err != nil {
		return nil, err
	}
	if f.AllowsPets, err = boolParam(c, "allowsPets"); err != nil {
		return nil, err
	}
	if f.IsFurnished, err = boolParam(c, "isFurnished"); err != nil {
		return nil, err
	}
	f.VibeTags = listParam(c, "vibeTags")
	f.Languages = listParam(c, "languages")

	if req.Limit, err = intParam(c, "limit"); err != nil {
		return nil, err
	}
	if req.Offset, err = intParam(c, "offset"); err != nil {
		return nil, err
	}
	return req, nil
}

func decimalParam(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}

func boolParam(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", name)
	}
	return &v, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

// listParam accepts both ?vibeTags=a,b and repeated ?vibeTags=a&vibeTags=b
func listParam(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
