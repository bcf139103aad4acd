package catalog

import "sort"

// Taxonomy maps onboarding categories to their subcategories.
type Taxonomy map[string][]string

// Workers is the service-provider registration taxonomy.
var Workers = Taxonomy{
	"Plumber":     {"Pipe Repair", "Bathroom Fitting", "Water Tank Cleaning", "Leak Detection"},
	"Electrician": {"Wiring", "Fan & Light Installation", "Inverter Repair", "Appliance Repair"},
	"Carpenter":   {"Furniture Repair", "Modular Kitchen", "Door & Window"},
	"Painter":     {"Interior Painting", "Exterior Painting", "Texture & Wallpaper"},
	"Beauty":      {"Salon at Home", "Bridal Makeup", "Mehendi", "Spa"},
	"Cleaning":    {"Home Deep Cleaning", "Sofa Cleaning", "Pest Control"},
	"Tutor":       {"Maths", "Science", "Music", "Languages"},
}

func (t Taxonomy) Categories() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Subcategories returns a copy so callers cannot mutate the taxonomy.
func (t Taxonomy) Subcategories(category string) []string {
	subs, ok := t[category]
	if !ok {
		return nil
	}
	return append([]string(nil), subs...)
}

func (t Taxonomy) Has(category, sub string) bool {
	for _, s := range t[category] {
		if s == sub {
			return true
		}
	}
	return false
}
