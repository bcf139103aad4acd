package app

import (
	"context"
	"strconv"

	"nearby_market/internal/domain"
)

// FixedLocation is the configured fallback origin.
type FixedLocation domain.Location

func (f FixedLocation) Locate(context.Context) (domain.Location, error) {
	return domain.Location(f), nil
}

// ResolveLocation prefers explicit coordinates (e.g. from query parameters)
// and fills the rest from the provider. Unparseable values are ignored.
func ResolveLocation(ctx context.Context, p domain.LocationProvider, lat, lng, distance string) domain.Location {
	var loc domain.Location
	if p != nil {
		if l, err := p.Locate(ctx); err == nil {
			loc = l
		}
	}
	la, errLat := strconv.ParseFloat(lat, 64)
	ln, errLng := strconv.ParseFloat(lng, 64)
	if errLat == nil && errLng == nil && validCoords(la, ln) {
		loc.Lat, loc.Lng, loc.Label = la, ln, ""
	}
	if d, err := strconv.ParseFloat(distance, 64); err == nil {
		loc.DistanceKm = d
	}
	return loc
}
