package card

import (
	"fmt"
	"strconv"

	"github.com/nyaruka/phonenumbers"

	"nearby_market/internal/domain"
)

// CategoryAdapter carries what differs between verticals. One Card
// implementation serves all of them.
type CategoryAdapter interface {
	Key() string
	Defaults() domain.CategoryDefaults
	FallbackGlyph() string
	Describe(item domain.ListingItem) string
	ServicesFor(item domain.ListingItem) []string
	PhoneDirectory() domain.PhoneDirectory
	ImageDirectory() domain.ImageDirectory
}

// MaxAmenities is how many amenities a card shows before "+N more".
const MaxAmenities = 3

type Target int

const (
	TargetCard Target = iota
	TargetPrevious
	TargetNext
	TargetCall
	TargetDirections
)

func (t Target) String() string {
	switch t {
	case TargetPrevious:
		return "previous"
	case TargetNext:
		return "next"
	case TargetCall:
		return "call"
	case TargetDirections:
		return "directions"
	}
	return "card"
}

// Event is a click delivered to a card. Nested controls stop propagation
// so the card-level handler does not fire.
type Event struct {
	Target  Target
	stopped bool
}

func (e *Event) StopPropagation() { e.stopped = true }
func (e *Event) Stopped() bool    { return e.stopped }

type Card struct {
	Item          domain.ListingItem
	Adapter       CategoryAdapter
	Carousel      *Carousel
	Actions       Dispatcher
	OnViewDetails func(domain.ListingItem)
	PhoneRegion   string
}

func NewCard(item domain.ListingItem, opts Options) *Card {
	c := &Card{
		Item:          item,
		Adapter:       opts.Adapter,
		Actions:       opts.Actions,
		OnViewDetails: opts.OnViewDetails,
		PhoneRegion:   opts.PhoneRegion,
	}
	c.Carousel = NewCarousel(c.images())
	if i, ok := opts.ImageIndex[item.ID]; ok {
		c.Carousel.Seek(i)
	}
	if i, ok := opts.ImageErrors[item.ID]; ok && i == c.Carousel.Index() {
		c.Carousel.OnImageLoadError()
	}
	return c
}

// Dispatch runs the handler of the clicked control, then bubbles to the
// card unless a handler stopped it.
func (c *Card) Dispatch(ev *Event) {
	switch ev.Target {
	case TargetPrevious:
		ev.StopPropagation()
		c.Carousel.Previous()
	case TargetNext:
		ev.StopPropagation()
		c.Carousel.Next()
	case TargetCall:
		ev.StopPropagation()
		_ = c.Actions.Call(c.Item.Title, c.phone())
	case TargetDirections:
		ev.StopPropagation()
		_ = c.Actions.OpenDirections(c.Item.Coordinates)
	}
	if ev.Stopped() {
		return
	}
	if c.OnViewDetails != nil {
		c.OnViewDetails(c.Item)
	}
}

// Click is Dispatch with a fresh event.
func (c *Card) Click(t Target) {
	c.Dispatch(&Event{Target: t})
}

// phone prefers the normalized record, then the category directory.
func (c *Card) phone() *string {
	if c.Item.Phone != nil && *c.Item.Phone != "" {
		return c.Item.Phone
	}
	if c.Adapter == nil {
		return nil
	}
	if p, ok := c.Adapter.PhoneDirectory().Lookup(c.Item.ID); ok {
		return &p
	}
	return nil
}

func (c *Card) images() []string {
	if len(c.Item.Images) > 0 {
		return c.Item.Images
	}
	if c.Adapter == nil {
		return nil
	}
	return c.Adapter.ImageDirectory().Lookup(c.Item.ID)
}

// View is the render model of a card.
type View struct {
	ID          string
	Category    string
	Title       string
	Location    string
	Description string
	Distance    string
	Rating      string
	RatingCount string
	Status      string
	StatusClass string
	Badges      []Badge
	Amenities   []string
	MoreCount   int

	Image     string
	ShowImage bool
	Glyph     string
	ShowNav   bool
	CanPrev   bool
	CanNext   bool
	Index     int
	Total     int

	Phone             string
	CallEnabled       bool
	DirectionsEnabled bool
}

func (c *Card) View() View {
	it := c.Item
	v := View{
		ID:       it.ID,
		Category: it.Category,
		Title:    it.Title,
		Location: it.LocationText,
		Badges:   Badges(it.Tags),
		Index:    c.Carousel.Index(),
		Total:    c.Carousel.Len(),
		ShowNav:  c.Carousel.ShowControls(),
		CanPrev:  c.Carousel.CanPrevious(),
		CanNext:  c.Carousel.CanNext(),
		Glyph:    "📍",
	}
	amenities := it.Amenities
	if c.Adapter != nil {
		v.Description = c.Adapter.Describe(it)
		amenities = c.Adapter.ServicesFor(it)
		if g := c.Adapter.FallbackGlyph(); g != "" {
			v.Glyph = g
		}
	} else {
		v.Description = it.Description
	}
	if len(amenities) > MaxAmenities {
		v.Amenities = amenities[:MaxAmenities]
		v.MoreCount = len(amenities) - MaxAmenities
	} else {
		v.Amenities = amenities
	}

	if it.DistanceKm != nil {
		v.Distance = FormatDistance(*it.DistanceKm)
	}
	if it.Rating != nil {
		v.Rating = strconv.FormatFloat(*it.Rating, 'f', 1, 64)
	}
	if it.RatingCount != nil {
		v.RatingCount = fmt.Sprintf("(%d)", *it.RatingCount)
	}
	switch {
	case it.OpenNow == nil:
	case *it.OpenNow:
		v.Status, v.StatusClass = "Open now", "bg-green-100 text-green-700"
	default:
		v.Status, v.StatusClass = "Closed", "bg-red-100 text-red-700"
	}

	v.Image, v.ShowImage = c.Carousel.Current()

	if p := c.phone(); p != nil && TelURI(*p) != "" {
		v.CallEnabled = true
		v.Phone = FormatPhone(*p, c.PhoneRegion)
	}
	v.DirectionsEnabled = it.Coordinates != nil
	return v
}

func FormatDistance(km float64) string {
	return strconv.FormatFloat(km, 'f', 1, 64) + " km"
}

// FormatPhone renders a number for display. Unparseable input is returned
// unchanged.
func FormatPhone(raw, region string) string {
	if region == "" {
		region = "IN"
	}
	n, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsPossibleNumber(n) {
		return raw
	}
	if phonenumbers.GetRegionCodeForNumber(n) == region {
		return phonenumbers.Format(n, phonenumbers.NATIONAL)
	}
	return phonenumbers.Format(n, phonenumbers.INTERNATIONAL)
}
