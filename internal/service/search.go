package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"roomie/internal/model"
	"roomie/internal/utils"
)

const (
	titleRequired = "Title is required"

	defaultImage      = "https://images.unsplash.com/photo-1560448204-e02f11c3d0e2?w=500&h=300&fit=crop"
	defaultHostName   = "You"
	defaultUniversity = "Your University"
)

// ErrListingNotFound is returned when a listing id is unknown
var ErrListingNotFound = errors.New("listing not found")

// ListingStore persists published listings. GetListing returns nil, nil
// for an unknown id.
type ListingStore interface {
	CreateListing(ctx context.Context, listing *model.Listing) error
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	SearchListings(ctx context.Context, filters *model.ListingFilters, vibe []float32, limit, offset int) ([]model.Listing, int, error)
}

// SearchLogger is implemented by stores that keep a search history
type SearchLogger interface {
	LogSearch(ctx context.Context, query string, intent *model.QueryIntent, total int, listingIDs []string, tookMs int64) error
}

// SearchService handles listing publication and search
type SearchService struct {
	store        ListingStore
	intent       *IntentParser
	ranker       *Ranker
	defaultLimit int
	maxLimit     int
	now          func() time.Time
	logger       *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(
	store ListingStore,
	intentParser *IntentParser,
	ranker *Ranker,
	defaultLimit, maxLimit int,
	logger *slog.Logger,
) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		store:        store,
		intent:       intentParser,
		ranker:       ranker,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          time.Now,
		logger:       logger,
	}
}

// CreateListing publishes a draft. Tags are canonicalized, English is always
// spoken, and missing images or vibe tags fall back to defaults.
func (s *SearchService) CreateListing(ctx context.Context, req *model.CreateListingRequest) (*model.Listing, error) {
	if req == nil || strings.TrimSpace(req.Title) == "" {
		return nil, newValidationError(titleRequired)
	}

	draft := req.ListingDraft
	draft.Title = strings.TrimSpace(draft.Title)
	if strings.TrimSpace(draft.Address) == "" {
		draft.Address = defaultAddress
	}
	if draft.Rent.IsNegative() || draft.Utilities.IsNegative() || draft.DistanceToCampus.IsNegative() {
		return nil, newValidationError("Rent, utilities and distance must not be negative")
	}

	draft.VibeTags = utils.NormalizeTags(draft.VibeTags, utils.NormalizeVibeTag)
	if len(draft.VibeTags) == 0 {
		draft.VibeTags = append(model.JSONArray(nil), utils.DefaultVibeTags...)
	}
	draft.Languages = utils.NormalizeTags(
		append([]string{utils.BaseLanguage}, draft.Languages...),
		utils.NormalizeLanguage,
	)

	images := model.JSONArray{}
	for _, img := range req.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		images = model.JSONArray{defaultImage}
	}

	listing := &model.Listing{
		ID:           uuid.NewString(),
		ListingDraft: draft,
		Images:       images,
		Host: model.Host{
			Name:       defaultHostName,
			IsVerified: true,
			University: defaultUniversity,
		},
		VibeVector: pgvector.NewVector(utils.VibeVector(draft.VibeTags)),
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.Info("listing_created", "id", listing.ID, "title", listing.Title)
	return listing, nil
}

// GetListing retrieves a single listing by ID
func (s *SearchService) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// Search performs a complete search with query parsing, filtering, and ranking
func (s *SearchService) Search(ctx context.Context, req *model.ListingSearchRequest) (*model.ListingSearchResponse, error) {
	startTime := time.Now()

	intentResult := s.intent.Parse(req.Query)
	filters := s.mergeFilters(req.Filters, intentResult.Filters)
	limit, offset := s.clampPage(req.Limit, req.Offset)

	var vibe []float32
	if len(filters.VibeTags) > 0 {
		vibe = utils.VibeVector(filters.VibeTags)
	}

	listings, total, err := s.store.SearchListings(ctx, filters, vibe, limit, offset)
	if err != nil {
		return nil, err
	}

	results := s.ranker.RankResults(listings, intentResult.Keywords, filters)
	took := time.Since(startTime).Milliseconds()

	// Log search (non-blocking)
	if sl, ok := s.store.(SearchLogger); ok && req.Query != "" {
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.ID
		}
		go func() {
			if err := sl.LogSearch(context.Background(), req.Query, intentResult, total, ids, took); err != nil {
				s.logger.Warn("search_log_failed", "error", err)
			}
		}()
	}

	return &model.ListingSearchResponse{
		Results: results,
		Total:   total,
		HasMore: offset+len(results) < total,
		Intent:  intentResult,
		Took:    took,
	}, nil
}

func (s *SearchService) clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// mergeFilters merges explicit filters with ones parsed from the query.
// Explicit values win.
func (s *SearchService) mergeFilters(explicit, parsed *model.ListingFilters) *model.ListingFilters {
	merged := &model.ListingFilters{}
	if explicit != nil {
		*merged = *explicit
	}

	if parsed != nil {
		if merged.MinRent == nil && parsed.MinRent != nil {
			merged.MinRent = parsed.MinRent
		}
		if merged.MaxRent == nil && parsed.MaxRent != nil {
			merged.MaxRent = parsed.MaxRent
		}
		if merged.MaxDistance == nil && parsed.MaxDistance != nil {
			merged.MaxDistance = parsed.MaxDistance
		}
		if merged.AllowsPets == nil && parsed.AllowsPets != nil {
			merged.AllowsPets = parsed.AllowsPets
		}
		if merged.IsFurnished == nil && parsed.IsFurnished != nil {
			merged.IsFurnished = parsed.IsFurnished
		}
		if len(merged.VibeTags) == 0 {
			merged.VibeTags = parsed.VibeTags
		}
		if len(merged.Languages) == 0 {
			merged.Languages = parsed.Languages
		}
	}

	merged.VibeTags = utils.NormalizeTags(merged.VibeTags, utils.NormalizeVibeTag)
	merged.Languages = utils.NormalizeTags(merged.Languages, utils.NormalizeLanguage)
	if len(merged.VibeTags) == 0 {
		merged.VibeTags = nil
	}
	if len(merged.Languages) == 0 {
		merged.Languages = nil
	}

	return merged
}
