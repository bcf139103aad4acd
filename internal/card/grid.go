package card

import "nearby_market/internal/domain"

type Mode int

const (
	GridMode Mode = iota
	DetailMode
)

func (m Mode) String() string {
	if m == DetailMode {
		return "detail"
	}
	return "grid"
}

// Options configure every card a layout creates.
type Options struct {
	Adapter       CategoryAdapter
	Actions       Dispatcher
	OnViewDetails func(domain.ListingItem)
	PhoneRegion   string
	// ImageIndex restores carousel positions by listing id.
	ImageIndex map[string]int
	// ImageErrors reports failed image positions by listing id.
	ImageErrors map[string]int
}

type Layout struct {
	Mode  Mode
	Cards []*Card
}

// Compose picks the layout. With a selection it is a single card and the
// fallback set is ignored; otherwise every fallback item gets a card, in
// order. Selection itself belongs to the caller.
func Compose(selected *domain.ListingItem, fallback []domain.ListingItem, opts Options) Layout {
	if selected != nil {
		return Layout{Mode: DetailMode, Cards: []*Card{NewCard(*selected, opts)}}
	}
	cards := make([]*Card, 0, len(fallback))
	for _, it := range fallback {
		cards = append(cards, NewCard(it, opts))
	}
	return Layout{Mode: GridMode, Cards: cards}
}

// Find returns the card with the given listing id.
func (l Layout) Find(id string) (*Card, bool) {
	for _, c := range l.Cards {
		if c.Item.ID == id {
			return c, true
		}
	}
	return nil, false
}
