package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"
)

// ListingDraft is the structured record derived from a pasted host message.
// Money and distance fields serialize as JSON strings ("1500", "0.5").
type ListingDraft struct {
	Title            string          `json:"title" db:"title"`
	Description      string          `json:"description" db:"description"`
	Rent             decimal.Decimal `json:"rent" db:"rent"`
	Utilities        decimal.Decimal `json:"utilities" db:"utilities"`
	DistanceToCampus decimal.Decimal `json:"distanceToCampus" db:"distance_to_campus"`
	IsFurnished      bool            `json:"isFurnished" db:"is_furnished"`
	AllowsPets       bool            `json:"allowsPets" db:"allows_pets"`
	VibeTags         JSONArray       `json:"vibeTags" db:"vibe_tags"`
	Languages        JSONArray       `json:"languages" db:"languages"`
	Address          string          `json:"address" db:"address"`
}

// Listing is a draft the host confirmed and published
type Listing struct {
	ID string `json:"id" db:"id"`
	ListingDraft
	Images     JSONArray       `json:"images" db:"images"`
	Host       Host            `json:"host" db:"host"`
	VibeVector pgvector.Vector `json:"-" db:"vibe_vector"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// Host is the public profile attached to a listing
type Host struct {
	Name       string `json:"name"`
	IsVerified bool   `json:"isVerified"`
	University string `json:"university,omitempty"`
}

// Value implements driver.Valuer interface
func (h Host) Value() (driver.Value, error) {
	return json.Marshal(h)
}

// Scan implements sql.Scanner interface
func (h *Host) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*h = Host{}
		return nil
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return errors.New("host: unsupported scan type")
	}
}

// ListingSearchResult represents a search result with additional metadata
type ListingSearchResult struct {
	Listing
	Score          float64  `json:"score"`
	MatchedReasons []string `json:"matchedReasons"`
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("json array: unsupported scan type")
		}
		return json.Unmarshal([]byte(s), j)
	}
	return json.Unmarshal(bytes, j)
}

// Contains reports whether the array holds s exactly
func (j JSONArray) Contains(s string) bool {
	for _, v := range j {
		if v == s {
			return true
		}
	}
	return false
}
