package model

import "github.com/shopspring/decimal"

// ListingFilters mirrors the filter panel of the listings page
type ListingFilters struct {
	MinRent     *decimal.Decimal `json:"minRent,omitempty"`
	MaxRent     *decimal.Decimal `json:"maxRent,omitempty"`
	MaxDistance *decimal.Decimal `json:"maxDistance,omitempty"`
	VibeTags    []string         `json:"vibeTags,omitempty"`
	Languages   []string         `json:"languages,omitempty"`
	AllowsPets  *bool            `json:"allowsPets,omitempty"`
	IsFurnished *bool            `json:"isFurnished,omitempty"`
}

// ListingSearchRequest represents a listing search
type ListingSearchRequest struct {
	Query   string          `json:"q,omitempty"`
	Filters *ListingFilters `json:"filters,omitempty"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ListingSearchResponse represents a listing search result page
type ListingSearchResponse struct {
	Results []ListingSearchResult `json:"results"`
	Total   int                   `json:"total"`
	HasMore bool                  `json:"hasMore"`
	Intent  *QueryIntent          `json:"intent,omitempty"`
	Took    int64                 `json:"tookMs"`
}

// QueryIntent is what the query parser recovered from free text
type QueryIntent struct {
	Filters    *ListingFilters `json:"filters"`
	Keywords   []string        `json:"keywords,omitempty"`
	Confidence float64         `json:"confidence"`
}

// CreateListingRequest publishes a (possibly edited) draft
type CreateListingRequest struct {
	ListingDraft
	Images []string `json:"images,omitempty"`
}

// SearchSuggestion is one entry of the home search bar dropdown
type SearchSuggestion struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Display string `json:"display"`
}

// IsEmpty reports whether no filter is set
func (f *ListingFilters) IsEmpty() bool {
	return f == nil || (f.MinRent == nil && f.MaxRent == nil && f.MaxDistance == nil &&
		len(f.VibeTags) == 0 && len(f.Languages) == 0 && f.AllowsPets == nil && f.IsFurnished == nil)
}

// Matches applies the filters to l. Every requested vibe tag and language
// must be present on the listing.
func (f *ListingFilters) Matches(l *Listing) bool {
	if f == nil {
		return true
	}
	if f.MinRent != nil && l.Rent.LessThan(*f.MinRent) {
		return false
	}
	if f.MaxRent != nil && l.Rent.GreaterThan(*f.MaxRent) {
		return false
	}
	if f.MaxDistance != nil && l.DistanceToCampus.GreaterThan(*f.MaxDistance) {
		return false
	}
	if f.AllowsPets != nil && l.AllowsPets != *f.AllowsPets {
		return false
	}
	if f.IsFurnished != nil && l.IsFurnished != *f.IsFurnished {
		return false
	}
	for _, tag := range f.VibeTags {
		if !l.VibeTags.Contains(tag) {
			return false
		}
	}
	for _, lang := range f.Languages {
		if !l.Languages.Contains(lang) {
			return false
		}
	}
	return true
}
