package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"roomie/internal/model"
)

const maxSearchLogs = 1000

// SearchLog is one recorded search
type SearchLog struct {
	Query       string
	Intent      *model.QueryIntent
	ResultCount int
	ListingIDs  []string
	TookMs      int64
	CreatedAt   time.Time
}

// MemoryRepository keeps listings in process memory. It is the default
// store when no database is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	listings map[string]model.Listing
	searches []SearchLog
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		listings: make(map[string]model.Listing),
	}
}

// CreateListing stores a listing; ids must be unique
func (r *MemoryRepository) CreateListing(_ context.Context, listing *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listing.ID]; ok {
		return fmt.Errorf("listing %s already exists", listing.ID)
	}
	r.listings[listing.ID] = *listing
	return nil
}

// GetListing retrieves a single listing by its ID
func (r *MemoryRepository) GetListing(_ context.Context, id string) (*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	return &listing, nil
}

// SearchListings filters listings and returns one page. With a vibe vector
// the closest listings come first, otherwise the newest.
func (r *MemoryRepository) SearchListings(
	_ context.Context,
	filters *model.ListingFilters,
	vibe []float32,
	limit, offset int,
) ([]model.Listing, int, error) {
	r.mu.RLock()
	matched := make([]model.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		if filters.Matches(&l) {
			matched = append(matched, l)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if len(vibe) > 0 {
			di := cosineDistance(vibe, matched[i].VibeVector.Slice())
			dj := cosineDistance(vibe, matched[j].VibeVector.Slice())
			if di != dj {
				return di < dj
			}
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if offset >= total {
		return []model.Listing{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// LogSearch records a search, dropping the oldest entries past the cap
func (r *MemoryRepository) LogSearch(_ context.Context, query string, intent *model.QueryIntent, total int, listingIDs []string, tookMs int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.searches = append(r.searches, SearchLog{
		Query:       query,
		Intent:      intent,
		ResultCount: total,
		ListingIDs:  listingIDs,
		TookMs:      tookMs,
		CreatedAt:   time.Now(),
	})
	if len(r.searches) > maxSearchLogs {
		r.searches = r.searches[len(r.searches)-maxSearchLogs:]
	}
	return nil
}

// Searches returns a copy of the recorded searches, oldest first
func (r *MemoryRepository) Searches() []SearchLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]SearchLog(nil), r.searches...)
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}

// cosineDistance matches pgvector's <=> operator. Zero vectors are as far
// away as possible.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
