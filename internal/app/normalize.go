package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"nearby_market/internal/domain"
)

/********** alias registries (single source of truth) **********/

var listingAliases = map[string][]string{
	"id":       {"id", "_id", "place_id", "placeId", "providerId", "provider_id"},
	"title":    {"title", "name", "businessName", "business_name", "shopName", "shop_name", "fullName"},
	"location": {"vicinity", "locationText", "address", "location.address", "formatted_address", "fullAddress", "area"},
	"desc":     {"description", "about", "summary", "tagline"},
	"phone":    {"phone", "phoneNumber", "phone_number", "contact", "mobile", "formatted_phone_number"},
	"distance": {"distanceKm", "distance_km", "distance"},
	"rating":   {"rating", "avgRating", "average_rating", "rating.value"},
	"count":    {"user_ratings_total", "ratingCount", "rating_count", "reviewsCount", "reviews_count", "totalReviews"},
	"open":     {"opening_hours.open_now", "openNow", "open_now", "isOpen", "is_open"},
	"lat":      {"geometry.location.lat", "coordinates.lat", "location.lat", "location.latitude", "latitude", "lat"},
	"lng": {
		"geometry.location.lng", "coordinates.lng", "location.lng", "location.lon",
		"location.longitude", "longitude", "lng", "lon",
	},
	"images":    {"images", "photos", "gallery", "workImages", "image", "photo", "profilePhoto"},
	"tags":      {"tags", "badges", "labels"},
	"amenities": {"amenities", "services", "facilities", "features"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns a trimmed string at path or "". Numbers are formatted
// so numeric ids survive.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	}
	return ""
}

func firstStr(m map[string]any, key string) string {
	for _, p := range listingAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			s = strings.TrimSpace(strings.TrimSuffix(s, "km"))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return &f
			}
		}
	}
	return nil
}

func getBoolFlexible(m map[string]any, paths ...string) *bool {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			b := v
			return &b
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return &b
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {url/src/name/photo_reference}.
// A bare string value is treated as a one-element list.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		switch raw := lookupAny(m, k).(type) {
		case string:
			if s := strings.TrimSpace(raw); s != "" {
				return []string{s}
			}
		case []string:
			out := make([]string, 0, len(raw))
			for _, s := range raw {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case []any:
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					for _, f := range []string{"url", "src", "name", "label", "photo_reference"} {
						if u, ok := t[f].(string); ok && u != "" {
							out = append(out, u)
							break
						}
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

/********** input shapes **********/

// asMap coerces the loosely typed input into a generic map. Unknown shapes
// return nil and the caller falls back to defaults.
func asMap(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case json.RawMessage:
		return decodeMap(v)
	case []byte:
		return decodeMap(v)
	case string:
		return decodeMap([]byte(v))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return decodeMap(b)
	}
}

func decodeMap(b []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// RecordID returns the identifier Normalize would assign to raw.
func RecordID(raw any) string {
	m := asMap(raw)
	if m == nil {
		return ""
	}
	return firstStr(m, "id")
}

// syntheticID gives records without an id a stable key derived from content.
func syntheticID(category string, m map[string]any) string {
	sig := category + "|" + firstStr(m, "title") + "|" + firstStr(m, "location")
	sum := sha1.Sum([]byte(sig))
	return category + "_" + hex.EncodeToString(sum[:6])
}

/********** listing normalizer **********/

// Normalize maps one raw provider record into a ListingItem. Every field
// applies a fallback chain; nothing here performs I/O.
func Normalize(raw any, d domain.CategoryDefaults) domain.ListingItem {
	m := asMap(raw)
	if m == nil {
		m = map[string]any{}
	}

	item := domain.ListingItem{Category: d.Category}

	item.ID = firstStr(m, "id")
	if item.ID == "" {
		item.ID = syntheticID(d.Category, m)
	}

	item.Title = firstStr(m, "title")
	if item.Title == "" {
		item.Title = d.Title
	}

	item.Description = firstStr(m, "desc")
	if item.Description == "" {
		item.Description = d.Description
	}

	// location -> description -> literal
	item.LocationText = firstStr(m, "location")
	if item.LocationText == "" {
		item.LocationText = item.Description
	}
	if item.LocationText == "" {
		item.LocationText = "Location"
	}

	item.DistanceKm = getFloatFlexible(m, listingAliases["distance"]...)
	item.Rating = getFloatFlexible(m, listingAliases["rating"]...)
	if f := getFloatFlexible(m, listingAliases["count"]...); f != nil && *f >= 0 {
		n := int(*f)
		item.RatingCount = &n
	}
	item.OpenNow = getBoolFlexible(m, listingAliases["open"]...)

	lat := getFloatFlexible(m, listingAliases["lat"]...)
	lng := getFloatFlexible(m, listingAliases["lng"]...)
	if lat != nil && lng != nil && validCoords(*lat, *lng) {
		item.Coordinates = &domain.Coordinates{Lat: *lat, Lng: *lng}
	}

	if p := firstStr(m, "phone"); p != "" {
		item.Phone = &p
	} else if p, ok := d.Phones.Lookup(item.ID); ok {
		item.Phone = &p
	}

	item.Images = firstSliceStrings(m, listingAliases["images"]...)
	if len(item.Images) == 0 {
		item.Images = append([]string(nil), d.Images.Lookup(item.ID)...)
	}
	if item.Images == nil {
		item.Images = []string{}
	}

	item.Tags = firstSliceStrings(m, listingAliases["tags"]...)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	item.Amenities = firstSliceStrings(m, listingAliases["amenities"]...)
	if item.Amenities == nil {
		item.Amenities = []string{}
	}
	return item
}

// NormalizeAll normalizes each record independently. A record that makes
// the normalizer panic still yields a defaults-only item so one bad record
// cannot blank a grid.
func NormalizeAll(raws []json.RawMessage, d domain.CategoryDefaults) []domain.ListingItem {
	out := make([]domain.ListingItem, 0, len(raws))
	for i, r := range raws {
		out = append(out, normalizeSafe(r, d, i))
	}
	return out
}

func normalizeSafe(raw any, d domain.CategoryDefaults, idx int) (item domain.ListingItem) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("context", "normalize").
				Str("category", d.Category).
				Int("index", idx).
				Str("panic", fmt.Sprint(rec)).
				Msg("malformed provider record")
			item = Normalize(nil, d)
			item.ID = fmt.Sprintf("%s_invalid_%d", d.Category, idx)
		}
	}()
	return Normalize(raw, d)
}

func validCoords(lat, lng float64) bool {
	if lat == 0 && lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

/********** distance **********/

const earthRadiusKm = 6371.0

// haversine returns the great-circle distance between two points in km.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1 = lat1 * (math.Pi / 180.0)
	lat2 = lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithDistanceFrom fills DistanceKm from the origin when the record carried
// coordinates but no distance of its own.
func WithDistanceFrom(item domain.ListingItem, origin domain.Location) domain.ListingItem {
	if item.DistanceKm != nil || item.Coordinates == nil {
		return item
	}
	if !validCoords(origin.Lat, origin.Lng) {
		return item
	}
	d := haversine(origin.Lat, origin.Lng, item.Coordinates.Lat, item.Coordinates.Lng)
	item.DistanceKm = &d
	return item
}
