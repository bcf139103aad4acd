package domain

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ListingItem is the normalized form of one provider/place record. It is
// built once per record and never mutated afterwards.
type ListingItem struct {
	ID           string       `json:"id"`
	Category     string       `json:"category"`
	Title        string       `json:"title"`
	LocationText string       `json:"locationText"`
	Description  string       `json:"description,omitempty"`
	DistanceKm   *float64     `json:"distanceKm"`
	Coordinates  *Coordinates `json:"coordinates"`
	Phone        *string      `json:"phone"`
	Rating       *float64     `json:"rating"`
	RatingCount  *int         `json:"ratingCount"`
	OpenNow      *bool        `json:"openNow"`
	Tags         []string     `json:"tags"`
	Amenities    []string     `json:"amenities"`
	Images       []string     `json:"images"`
}

// PhoneDirectory and ImageDirectory are keyed by ListingItem.ID. A missing
// key is a normal condition.
type PhoneDirectory map[string]string

type ImageDirectory map[string][]string

func (d PhoneDirectory) Lookup(id string) (string, bool) {
	if d == nil {
		return "", false
	}
	p, ok := d[id]
	return p, ok && p != ""
}

func (d ImageDirectory) Lookup(id string) []string {
	if d == nil {
		return nil
	}
	return d[id]
}

type CategoryDefaults struct {
	Category    string
	Title       string
	Description string
	Glyph       string
	Phones      PhoneDirectory
	Images      ImageDirectory
}

// WithEntries returns a copy of d whose directories also contain entries.
// Entries win over the static directories.
func (d CategoryDefaults) WithEntries(entries map[string]DirectoryEntry) CategoryDefaults {
	if len(entries) == 0 {
		return d
	}
	phones := make(PhoneDirectory, len(d.Phones)+len(entries))
	for k, v := range d.Phones {
		phones[k] = v
	}
	images := make(ImageDirectory, len(d.Images)+len(entries))
	for k, v := range d.Images {
		images[k] = v
	}
	for id, e := range entries {
		if e.Phone != "" {
			phones[id] = e.Phone
		}
		if len(e.Images) > 0 {
			images[id] = e.Images
		}
	}
	d.Phones = phones
	d.Images = images
	return d
}

// DirectoryEntry is one persisted phone/images record for a listing id.
type DirectoryEntry struct {
	Category string
	ID       string
	Phone    string
	Images   []string
}

type Location struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distanceKm"`
	Label      string  `json:"label,omitempty"`
}

type RecentSearch struct {
	Query     string `json:"query"`
	Location  string `json:"location"`
	Timestamp int64  `json:"timestamp"`
}
