package domain

import "time"

// Question categories shown on the review form.
const (
	CategorySafety      = "safety"
	CategoryNoise       = "noise"
	CategoryCommunity   = "community"
	CategoryAmenities   = "amenities"
	CategoryTransit     = "transit"
	CategoryMaintenance = "maintenance"
	CategoryGeneral     = "general"
)

// Question is one rated prompt of the review form.
type Question struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidCategories returns all known question categories.
func ValidCategories() []string {
	return []string{
		CategorySafety,
		CategoryNoise,
		CategoryCommunity,
		CategoryAmenities,
		CategoryTransit,
		CategoryMaintenance,
		CategoryGeneral,
	}
}

// IsValidCategory reports whether c is a known category.
func IsValidCategory(c string) bool {
	for _, v := range ValidCategories() {
		if v == c {
			return true
		}
	}
	return false
}
