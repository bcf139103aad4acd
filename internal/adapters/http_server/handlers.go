package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"nearby_market/internal/adapters/observability"
	"nearby_market/internal/app"
	"nearby_market/internal/card"
	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
)

// Handlers serves listing pages, card actions, the JSON API and the
// onboarding forms.
type Handlers struct {
	Listings    *app.ListingService
	Backend     domain.Backend
	Locator     domain.LocationProvider
	Drafts      DraftStore
	Voice       domain.VoiceRecognizer
	Taxonomy    catalog.Taxonomy
	PhoneRegion string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/searches/recent", h.recentSearches)
	s.mux.Get("/v1/{category}/nearby", h.nearbyJSON)

	s.mux.Get("/onboarding/{category}", h.onboardingForm)
	s.mux.Post("/onboarding/{category}", h.onboardingPost)
	s.mux.Post("/onboarding/{category}/voice/{field}", h.onboardingVoice)

	s.mux.Get("/{category}", h.listPage)
	s.mux.Get("/{category}/{id}", h.detailPage)
	s.mux.Get("/{category}/{id}/call", h.cardAction(card.TargetCall))
	s.mux.Get("/{category}/{id}/directions", h.cardAction(card.TargetDirections))
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

const visitorCookie = "visitor"

// visitorID returns the visitor's id, issuing one when the cookie is absent.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name: visitorCookie, Value: id, Path: "/", HttpOnly: true,
		SameSite: http.SameSiteLaxMode, Expires: time.Now().Add(365 * 24 * time.Hour),
	})
	return id
}

// ---- JSON API ----

type nearbyResponse struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Source  string               `json:"source"`
	Origin  domain.Location      `json:"origin"`
	Data    []domain.ListingItem `json:"data"`
}

func (h *Handlers) nearbyJSON(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := app.ResolveLocation(r.Context(), h.Locator, q.Get("lat"), q.Get("lng"), q.Get("distance"))
	if !(loc.DistanceKm > 0) {
		writeProblem(w, http.StatusBadRequest, "Invalid distance", domain.ErrInvalidDistance.Error())
		return
	}
	res, err := h.Listings.NearbyItems(r.Context(), chi.URLParam(r, "category"), loc)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	observability.ObserveListing(res.Category.Slug, string(res.Source))
	items := filterItems(res.Items, q.Get("q"))
	render.JSON(w, r, nearbyResponse{
		Success: res.Source != app.SourceFixtures,
		Count:   len(items),
		Source:  string(res.Source),
		Origin:  res.Origin,
		Data:    items,
	})
}

func (h *Handlers) recentSearches(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.Listings.RecentSearches(r.Context(), visitorID(w, r)))
}

// filterItems keeps items whose title, location, tags or amenities contain
// query, case-insensitively. Order is preserved.
func filterItems(items []domain.ListingItem, query string) []domain.ListingItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	out := make([]domain.ListingItem, 0, len(items))
	for _, it := range items {
		hay := append([]string{it.Title, it.LocationText}, it.Tags...)
		hay = append(hay, it.Amenities...)
		for _, s := range hay {
			if strings.Contains(strings.ToLower(s), query) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// ---- pages ----

func (h *Handlers) cardOptions(cat catalog.Category, q map[string][]string) card.Options {
	return card.Options{
		Adapter:     cat,
		PhoneRegion: h.PhoneRegion,
		ImageIndex:  card.ImageIndexFrom(q),
		ImageErrors: card.ImageErrorsFrom(q),
	}
}

func (h *Handlers) listPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := app.ResolveLocation(r.Context(), h.Locator, q.Get("lat"), q.Get("lng"), q.Get("distance"))
	res, err := h.Listings.NearbyItems(r.Context(), chi.URLParam(r, "category"), loc)
	if errors.Is(err, domain.ErrUnknownCategory) {
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	observability.ObserveListing(res.Category.Slug, string(res.Source))

	visitor := visitorID(w, r)
	search := strings.TrimSpace(q.Get("q"))
	if search != "" {
		h.Listings.RememberSearch(r.Context(), visitor, search, loc)
	}

	items := filterItems(res.Items, search)
	layout := card.Compose(nil, items, h.cardOptions(res.Category, q))
	grid, err := card.RenderHTML(layout, card.Page{Path: r.URL.Path, Query: q})
	if err != nil {
		log.Error().Err(err).Str("category", res.Category.Slug).Msg("render grid failed")
		writeProblem(w, http.StatusInternalServerError, "Render failed", "")
		return
	}
	renderPage(w, http.StatusOK, "listing", listingPage{
		Title:    res.Category.Title + " near " + originLabel(res.Origin),
		Category: res.Category,
		Origin:   res.Origin,
		Source:   string(res.Source),
		Query:    search,
		Grid:     grid,
		Recent:   h.Listings.RecentSearches(r.Context(), visitor),
	})
}

// selected resolves the item named by the path around the request's origin.
func (h *Handlers) selected(r *http.Request) (domain.ListingItem, catalog.Category, error) {
	q := r.URL.Query()
	loc := app.ResolveLocation(r.Context(), h.Locator, q.Get("lat"), q.Get("lng"), q.Get("distance"))
	return h.Listings.Selected(r.Context(), chi.URLParam(r, "category"), chi.URLParam(r, "id"), loc)
}

func (h *Handlers) detailPage(w http.ResponseWriter, r *http.Request) {
	item, cat, err := h.selected(r)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	q := r.URL.Query()
	layout := card.Compose(&item, nil, h.cardOptions(cat, q))
	grid, err := card.RenderHTML(layout, card.Page{Path: r.URL.Path, Query: q})
	if err != nil {
		log.Error().Err(err).Str("id", item.ID).Msg("render detail failed")
		writeProblem(w, http.StatusInternalServerError, "Render failed", "")
		return
	}
	renderPage(w, http.StatusOK, "listing", listingPage{
		Title:    item.Title,
		Category: cat,
		Grid:     grid,
		Back:     "/" + cat.Slug,
	})
}

// cardAction clicks a card's Call or Directions control and answers with a
// redirect to whatever it launched. A missing phone or coordinates becomes
// a 422 carrying the notice text.
func (h *Handlers) cardAction(target card.Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, cat, err := h.selected(r)
		if err != nil {
			writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		launcher, notes := &redirectLauncher{}, &noticeSink{}
		opts := h.cardOptions(cat, nil)
		opts.Actions = card.Dispatcher{Launcher: launcher, Notifier: notes}
		opts.OnViewDetails = func(domain.ListingItem) {
			log.Warn().Str("id", item.ID).Str("target", target.String()).Msg("action click reached the card")
		}
		card.NewCard(item, opts).Click(target)

		if launcher.uri == "" {
			observability.ObserveAction(cat.Slug, target.String(), "unavailable")
			writeProblem(w, http.StatusUnprocessableEntity, "Action unavailable", notes.first())
			return
		}
		observability.ObserveAction(cat.Slug, target.String(), "launched")
		http.Redirect(w, r, launcher.uri, http.StatusFound)
	}
}

func originLabel(l domain.Location) string {
	if l.Label != "" {
		return l.Label
	}
	return "you"
}
