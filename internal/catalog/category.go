package catalog

import (
	"sort"
	"strings"

	"nearby_market/internal/domain"
)

// Category describes one listing vertical: backend naming, defaults used by
// the normalizer, static phone/image directories and dummy records shown
// when the backend has nothing.
type Category struct {
	Slug        string
	Name        string // backend path segment, e.g. "Beauty" -> getNearbyBeauty
	Title       string
	Description string
	Glyph       string
	Services    []string
	Phones      domain.PhoneDirectory
	Images      domain.ImageDirectory
	Fixtures    []map[string]any
}

func (c Category) Key() string { return c.Slug }

func (c Category) Defaults() domain.CategoryDefaults {
	return domain.CategoryDefaults{
		Category:    c.Slug,
		Title:       c.Title,
		Description: c.Description,
		Glyph:       c.Glyph,
		Phones:      c.Phones,
		Images:      c.Images,
	}
}

func (c Category) FallbackGlyph() string { return c.Glyph }

// Describe prefers the record's own description.
func (c Category) Describe(item domain.ListingItem) string {
	if strings.TrimSpace(item.Description) != "" {
		return item.Description
	}
	return c.Description
}

// ServicesFor prefers the record's amenities over the category's generic list.
func (c Category) ServicesFor(item domain.ListingItem) []string {
	if len(item.Amenities) > 0 {
		return item.Amenities
	}
	return c.Services
}

func (c Category) PhoneDirectory() domain.PhoneDirectory { return c.Phones }

func (c Category) ImageDirectory() domain.ImageDirectory { return c.Images }

// Registry resolves categories by slug, case-insensitively.
type Registry struct {
	bySlug map[string]Category
}

func NewRegistry(cs ...Category) *Registry {
	r := &Registry{bySlug: make(map[string]Category, len(cs))}
	for _, c := range cs {
		r.bySlug[strings.ToLower(c.Slug)] = c
	}
	return r
}

// Default holds every built-in vertical.
func Default() *Registry {
	return NewRegistry(Beauty, Shopping, Sports, Art, Hotels, Digital)
}

func (r *Registry) Lookup(slug string) (Category, bool) {
	c, ok := r.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	return c, ok
}

func (r *Registry) All() []Category {
	out := make([]Category, 0, len(r.bySlug))
	for _, c := range r.bySlug {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
