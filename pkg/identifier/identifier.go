package identifier

import (
	"strings"

	"github.com/google/uuid"
)

// New generates a new opaque unique identifier (UUID v4).
func New() string {
	return uuid.New().String()
}

// TrackingNumber generates an opaque alphanumeric tracking number for
// shipments, e.g. "TRK-9F86D081884C".
func TrackingNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TRK-" + raw[:12]
}

// Parse parses an identifier back into a UUID.
func Parse(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
