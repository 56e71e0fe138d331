package shared

import "strings"

// Address is a shipping address. All five fields are required, non-empty
// after trimming.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// NewAddress trims every field and rejects blanks.
func NewAddress(street, city, state, postalCode, country string) (Address, error) {
	a := Address{
		Street:     strings.TrimSpace(street),
		City:       strings.TrimSpace(city),
		State:      strings.TrimSpace(state),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.TrimSpace(country),
	}
	for field, value := range map[string]string{
		"street":      a.Street,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	} {
		if value == "" {
			return Address{}, NewValidationError(field, "is required")
		}
	}
	return a, nil
}
