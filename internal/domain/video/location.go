package video

import (
	"encoding/json"
	"strings"
)

type LocationKind string

const (
	LocationAbsent     LocationKind = "absent"
	LocationStructured LocationKind = "structured"
	LocationAddress    LocationKind = "address"
)

type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address,omitempty"`
}

func (l *Location) Kind() LocationKind {
	if l == nil {
		return LocationAbsent
	}
	if l.Latitude != nil && l.Longitude != nil {
		return LocationStructured
	}
	if l.Address != "" {
		return LocationAddress
	}
	return LocationAbsent
}

func NewCoordinates(lat, lng float64) *Location {
	return &Location{Latitude: &lat, Longitude: &lng}
}

// ParseLocation never fails. A "{"-prefixed string is decoded as JSON; any
// other string, or JSON that does not decode, becomes an address-only location.
// An empty string is absent.
func ParseLocation(raw string) *Location {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "{") {
		var loc Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil {
			return &loc
		}
	}
	return &Location{Address: raw}
}
