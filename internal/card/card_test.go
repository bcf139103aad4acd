package card_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"nearby_market/internal/card"
	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
)

// ---- fakes ----

type launch struct {
	uri    string
	target domain.LaunchTarget
}

type fakeLauncher struct{ got []launch }

func (f *fakeLauncher) Launch(uri string, t domain.LaunchTarget) {
	f.got = append(f.got, launch{uri, t})
}

type fakeNotifier struct{ got []domain.Notice }

func (f *fakeNotifier) Notify(n domain.Notice) { f.got = append(f.got, n) }

func ptr[T any](v T) *T { return &v }

func images(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "https://img.example/" + string(rune('a'+i)) + ".jpg"
	}
	return out
}

// ---- carousel ----

func TestCarousel_Bounds(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		c := card.NewCarousel(images(n))
		for i := 0; i < n+3; i++ {
			c.Next()
		}
		want := n - 1
		if n == 0 {
			want = 0
		}
		if c.Index() != want {
			t.Fatalf("n=%d: after next* index=%d, want %d", n, c.Index(), want)
		}
		for i := 0; i < n+3; i++ {
			c.Previous()
		}
		if c.Index() != 0 {
			t.Fatalf("n=%d: after previous* index=%d, want 0", n, c.Index())
		}
		if got := c.ShowControls(); got != (n > 1) {
			t.Fatalf("n=%d: ShowControls=%v", n, got)
		}
	}
}

func TestCarousel_ErrorOnlyAffectsCurrentImage(t *testing.T) {
	c := card.NewCarousel(images(3))
	c.OnImageLoadError()
	if _, ok := c.Current(); ok {
		t.Fatalf("expected fallback after load error")
	}
	if c.Index() != 0 {
		t.Fatalf("load error must not advance, index=%d", c.Index())
	}
	c.Next()
	if u, ok := c.Current(); !ok || u != images(3)[1] {
		t.Fatalf("next image should render, got %q %v", u, ok)
	}
}

func TestCarousel_SeekClamps(t *testing.T) {
	c := card.NewCarousel(images(3))
	c.Seek(99)
	if c.Index() != 2 {
		t.Fatalf("index=%d", c.Index())
	}
	c.Seek(-4)
	if c.Index() != 0 {
		t.Fatalf("index=%d", c.Index())
	}
}

func TestRender_NavAbsentForSingleImage(t *testing.T) {
	for n, wantNav := range map[int]bool{0: false, 1: false, 3: true} {
		it := domain.ListingItem{ID: "x1", Category: "beauty", Title: "X", LocationText: "Somewhere", Images: images(n)}
		l := card.Compose(&it, nil, card.Options{})
		var buf bytes.Buffer
		if err := card.Render(&buf, l, card.Page{Path: "/beauty/x1"}); err != nil {
			t.Fatalf("render: %v", err)
		}
		out := buf.String()
		hasNav := strings.Contains(out, "carousel-next") || strings.Contains(out, "carousel-prev")
		if hasNav != wantNav {
			t.Fatalf("n=%d: nav present=%v, want %v\n%s", n, hasNav, wantNav, out)
		}
	}
}

// ---- event isolation ----

func TestCard_NestedControlsDoNotOpenDetails(t *testing.T) {
	opened := 0
	launcher := &fakeLauncher{}
	it := domain.ListingItem{
		ID: "beauty_1", Title: "Glow", Images: images(3),
		Phone:       ptr("+91 98100 11111"),
		Coordinates: &domain.Coordinates{Lat: 28.57, Lng: 77.32},
	}
	c := card.NewCard(it, card.Options{
		Actions:       card.Dispatcher{Launcher: launcher, Notifier: &fakeNotifier{}},
		OnViewDetails: func(domain.ListingItem) { opened++ },
	})

	for _, tg := range []card.Target{card.TargetNext, card.TargetPrevious, card.TargetCall, card.TargetDirections} {
		ev := &card.Event{Target: tg}
		c.Dispatch(ev)
		if !ev.Stopped() {
			t.Fatalf("%s: propagation not stopped", tg)
		}
	}
	if opened != 0 {
		t.Fatalf("details handler called %d times from nested controls", opened)
	}
	if len(launcher.got) != 2 {
		t.Fatalf("expected call+directions launches, got %+v", launcher.got)
	}
	if launcher.got[0] != (launch{"tel:+919810011111", domain.SameContext}) {
		t.Fatalf("unexpected call launch: %+v", launcher.got[0])
	}
	if launcher.got[1].target != domain.NewContext || !strings.Contains(launcher.got[1].uri, "destination=28.57,77.32") {
		t.Fatalf("unexpected directions launch: %+v", launcher.got[1])
	}

	c.Click(card.TargetCard)
	if opened != 1 {
		t.Fatalf("card click should open details once, got %d", opened)
	}
}

// ---- lookup misses ----

func TestCard_LookupMissesDegrade(t *testing.T) {
	notes := &fakeNotifier{}
	launcher := &fakeLauncher{}
	it := domain.ListingItem{ID: "no_such_id", Category: "beauty", Title: "Nameless", LocationText: "Location"}
	c := card.NewCard(it, card.Options{
		Adapter: catalog.Beauty,
		Actions: card.Dispatcher{Launcher: launcher, Notifier: notes},
	})

	v := c.View()
	if v.CallEnabled || v.DirectionsEnabled {
		t.Fatalf("actions should be disabled: %+v", v)
	}
	if v.ShowImage || v.Glyph != catalog.Beauty.Glyph {
		t.Fatalf("expected fallback glyph, got %+v", v)
	}

	c.Click(card.TargetCall)
	c.Click(card.TargetDirections)
	if len(launcher.got) != 0 {
		t.Fatalf("nothing should launch, got %+v", launcher.got)
	}
	if len(notes.got) != 2 || notes.got[0].Message != "No contact number available for Nameless" ||
		notes.got[1].Message != "Unable to get location coordinates for directions" {
		t.Fatalf("unexpected notices: %+v", notes.got)
	}
	if notes.got[0].Level != domain.Blocking {
		t.Fatalf("call notice should block")
	}

	var buf bytes.Buffer
	if err := card.Render(&buf, card.Compose(nil, []domain.ListingItem{it}, card.Options{Adapter: catalog.Beauty}), card.Page{Path: "/beauty"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `disabled title="No contact number available for Nameless"`) {
		t.Fatalf("call button not disabled:\n%s", buf.String())
	}
}

func TestCard_PhoneFromCategoryDirectory(t *testing.T) {
	launcher := &fakeLauncher{}
	c := card.NewCard(domain.ListingItem{ID: "beauty_2", Title: "Urban"}, card.Options{
		Adapter: catalog.Beauty,
		Actions: card.Dispatcher{Launcher: launcher},
	})
	c.Click(card.TargetCall)
	if len(launcher.got) != 1 || launcher.got[0].uri != "tel:+919810022222" {
		t.Fatalf("unexpected launches: %+v", launcher.got)
	}
	if v := c.View(); !v.ShowImage || v.Total != 1 {
		t.Fatalf("expected directory image, got %+v", v)
	}
}

func TestDispatcher_CallErrors(t *testing.T) {
	d := card.Dispatcher{}
	if err := d.Call("A", nil); !errors.Is(err, domain.ErrNoPhone) {
		t.Fatalf("err=%v", err)
	}
	if err := d.Call("A", ptr("n/a")); !errors.Is(err, domain.ErrNoPhone) {
		t.Fatalf("non-dialable phone should count as missing, err=%v", err)
	}
	if err := d.OpenDirections(nil); !errors.Is(err, domain.ErrNoCoordinates) {
		t.Fatalf("err=%v", err)
	}
}

// ---- view ----

func TestCard_ViewFormatting(t *testing.T) {
	it := domain.ListingItem{
		ID: "s1", Title: "Arena", LocationText: "Dwarka",
		DistanceKm: ptr(2.345), Rating: ptr(4.7), OpenNow: ptr(false),
		Amenities: []string{"a", "b", "c", "d", "e"},
		Tags:      []string{"Verified", "Zzyx"},
	}
	v := card.NewCard(it, card.Options{}).View()
	if v.Distance != "2.3 km" {
		t.Fatalf("distance=%q", v.Distance)
	}
	if v.Rating != "4.7" || v.RatingCount != "" {
		t.Fatalf("rating=%q count=%q", v.Rating, v.RatingCount)
	}
	if v.Status != "Closed" {
		t.Fatalf("status=%q", v.Status)
	}
	if len(v.Amenities) != card.MaxAmenities || v.MoreCount != 2 {
		t.Fatalf("amenities=%v more=%d", v.Amenities, v.MoreCount)
	}
	if len(v.Badges) != 2 || v.Badges[1].Label != "Zzyx" || v.Badges[1].Style != card.DefaultStyle {
		t.Fatalf("badges=%+v", v.Badges)
	}

	unknown := card.NewCard(domain.ListingItem{ID: "s2"}, card.Options{}).View()
	if unknown.Status != "" || unknown.Distance != "" {
		t.Fatalf("unknown status/distance should be empty: %+v", unknown)
	}
}

func TestFormatPhone(t *testing.T) {
	if got := card.FormatPhone("not a number", "IN"); got != "not a number" {
		t.Fatalf("got %q", got)
	}
	if got := card.FormatPhone("+91 98100 11111", "IN"); got == "" || strings.Contains(got, "+91") {
		t.Fatalf("domestic number should use national format, got %q", got)
	}
}
