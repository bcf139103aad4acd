package card

import (
	"fmt"
	"strconv"
	"strings"

	"nearby_market/internal/domain"
)

// Dispatcher resolves the Call and Directions side effects of a card. Both
// are fire-and-forget; the returned error only says whether anything was
// launched.
type Dispatcher struct {
	Launcher domain.ActionLauncher
	Notifier domain.Notifier
}

// TelURI keeps digits and '+' only. It returns "" when nothing dialable is left.
func TelURI(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "tel:" + b.String()
}

func MapsURL(c domain.Coordinates) string {
	dest := strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
	return "https://www.google.com/maps/dir/?api=1&destination=" + dest
}

func (d Dispatcher) Call(name string, phone *string) error {
	uri := ""
	if phone != nil {
		uri = TelURI(*phone)
	}
	if uri == "" {
		d.notify(fmt.Sprintf("No contact number available for %s", name))
		return domain.ErrNoPhone
	}
	if d.Launcher != nil {
		d.Launcher.Launch(uri, domain.SameContext)
	}
	return nil
}

func (d Dispatcher) OpenDirections(c *domain.Coordinates) error {
	if c == nil {
		d.notify("Unable to get location coordinates for directions")
		return domain.ErrNoCoordinates
	}
	if d.Launcher != nil {
		d.Launcher.Launch(MapsURL(*c), domain.NewContext)
	}
	return nil
}

func (d Dispatcher) notify(msg string) {
	if d.Notifier != nil {
		d.Notifier.Notify(domain.Notice{Level: domain.Blocking, Message: msg})
	}
}
