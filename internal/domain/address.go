package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Address is a reviewed location. FormattedAddress is its unique natural key.
type Address struct {
	ID               string    `json:"id"`
	StreetAddress    string    `json:"street_address"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	ZipCode          string    `json:"zip_code"`
	FormattedAddress string    `json:"formatted_address"`
	CreatedAt        time.Time `json:"created_at"`
}

// AddressWithReviews pairs an address with its stored reviews.
type AddressWithReviews struct {
	Address
	Reviews []Review `json:"reviews"`
}

// AddressResult is an address together with its aggregated reviews.
type AddressResult struct {
	Address
	Summary
}

// AddressSuggestion is one autocomplete entry. Display keeps the original
// casing of the address parts.
type AddressSuggestion struct {
	ID          string `json:"id"`
	Display     string `json:"display"`
	ReviewCount int    `json:"review_count"`
}

// FormatAddress builds the normalised key "<street>, <city>, <state> <zip>"
// in lower case.
func FormatAddress(street, city, state, zip string) string {
	s := fmt.Sprintf("%s, %s, %s %s",
		strings.TrimSpace(street),
		strings.TrimSpace(city),
		strings.TrimSpace(state),
		strings.TrimSpace(zip),
	)
	return cases.Lower(language.Und).String(s)
}
