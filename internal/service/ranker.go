package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"roomie/internal/model"
)

// Match reason constants
const (
	ReasonVibeMatch       = "Vibe match"
	ReasonLanguageMatch   = "Speaks your language"
	ReasonPriceMatch      = "Price within budget"
	ReasonNearCampus      = "Near campus"
	ReasonPetFriendly     = "Pet friendly"
	ReasonFurnished       = "Furnished"
	ReasonContentRelevant = "Content relevant"
	ReasonNewlyListed     = "Newly listed"
	ReasonGeneralMatch    = "General match"
)

// Ranker handles ranking and scoring of listing search results
type Ranker struct {
	weightVibe    float64
	weightPrice   float64
	weightRecency float64
	now           func() time.Time
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weightVibe, weightPrice, weightRecency float64) *Ranker {
	return &Ranker{
		weightVibe:    weightVibe,
		weightPrice:   weightPrice,
		weightRecency: weightRecency,
		now:           time.Now,
	}
}

// RankResults scores and ranks listings. Equal scores keep the newer
// listing first.
func (r *Ranker) RankResults(
	listings []model.Listing,
	keywords []string,
	filters *model.ListingFilters,
) []model.ListingSearchResult {
	results := make([]model.ListingSearchResult, 0, len(listings))
	now := r.now()

	for _, listing := range listings {
		vibeScore := r.calculateVibeScore(listing, filters)
		priceScore := r.calculatePriceScore(listing, filters)
		recencyScore := r.calculateRecencyScore(listing.CreatedAt, now)

		score := (r.weightVibe * vibeScore) +
			(r.weightPrice * priceScore) +
			(r.weightRecency * recencyScore)

		results = append(results, model.ListingSearchResult{
			Listing:        listing,
			Score:          math.Round(score*1000) / 1000,
			MatchedReasons: r.generateMatchedReasons(listing, filters, keywords, vibeScore, priceScore, now),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results
}

// calculateVibeScore is the share of requested vibe tags the listing carries
func (r *Ranker) calculateVibeScore(listing model.Listing, filters *model.ListingFilters) float64 {
	if filters == nil || len(filters.VibeTags) == 0 {
		return 0.5 // Neutral score if no vibe requested
	}
	hits := 0
	for _, tag := range filters.VibeTags {
		if listing.VibeTags.Contains(tag) {
			hits++
		}
	}
	return float64(hits) / float64(len(filters.VibeTags))
}

// calculatePriceScore calculates how well the rent matches the budget
func (r *Ranker) calculatePriceScore(listing model.Listing, filters *model.ListingFilters) float64 {
	if filters == nil || (filters.MinRent == nil && filters.MaxRent == nil) {
		return 1.0 // Full score if no price filter
	}

	rent := listing.Rent.InexactFloat64()

	if filters.MinRent != nil && filters.MaxRent != nil {
		minRent := filters.MinRent.InexactFloat64()
		maxRent := filters.MaxRent.InexactFloat64()

		if rent < minRent || rent > maxRent {
			return 0.0
		}

		midpoint := (minRent + maxRent) / 2
		priceRange := maxRent - minRent
		if priceRange == 0 {
			return 1.0
		}

		score := 1.0 - (math.Abs(rent-midpoint) / (priceRange / 2))
		if score < 0 {
			score = 0
		}
		return score
	}

	if filters.MinRent != nil {
		if rent < filters.MinRent.InexactFloat64() {
			return 0.0
		}
		return 1.0
	}

	// Only a ceiling: cheaper is better for students
	maxRent := filters.MaxRent.InexactFloat64()
	if rent > maxRent {
		return 0.0
	}
	if maxRent == 0 {
		return 1.0
	}
	return 1.0 - 0.5*(rent/maxRent)
}

// calculateRecencyScore decays exponentially with listing age
func (r *Ranker) calculateRecencyScore(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0.5 // Neutral score if no date
	}

	daysSinceListed := now.Sub(createdAt).Hours() / 24
	if daysSinceListed < 0 {
		daysSinceListed = 0
	}

	// After 30 days: ~0.74, after 60 days: ~0.55
	return math.Exp(-0.01 * daysSinceListed)
}

// generateMatchedReasons explains why a listing matched
func (r *Ranker) generateMatchedReasons(
	listing model.Listing,
	filters *model.ListingFilters,
	keywords []string,
	vibeScore float64,
	priceScore float64,
	now time.Time,
) []string {
	reasons := []string{}

	if filters != nil {
		if len(filters.VibeTags) > 0 && vibeScore > 0 {
			reasons = append(reasons, ReasonVibeMatch)
		}
		if len(filters.Languages) > 0 {
			reasons = append(reasons, ReasonLanguageMatch)
		}
		if (filters.MinRent != nil || filters.MaxRent != nil) && priceScore > 0.5 {
			reasons = append(reasons, ReasonPriceMatch)
		}
		if filters.MaxDistance != nil && listing.DistanceToCampus.LessThanOrEqual(*filters.MaxDistance) {
			reasons = append(reasons, ReasonNearCampus)
		}
		if filters.AllowsPets != nil && *filters.AllowsPets && listing.AllowsPets {
			reasons = append(reasons, ReasonPetFriendly)
		}
		if filters.IsFurnished != nil && *filters.IsFurnished && listing.IsFurnished {
			reasons = append(reasons, ReasonFurnished)
		}
	}

	if matchesKeywords(listing, keywords) {
		reasons = append(reasons, ReasonContentRelevant)
	}

	if !listing.CreatedAt.IsZero() && now.Sub(listing.CreatedAt) < 7*24*time.Hour {
		reasons = append(reasons, ReasonNewlyListed)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}

	return reasons
}

func matchesKeywords(listing model.Listing, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	text := strings.ToLower(listing.Title + " " + listing.Description + " " + listing.Address)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
