package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/rs/zerolog/log"

	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
)

// Source tells where a page of listings came from.
type Source string

const (
	SourceBackend  Source = "backend"
	SourceCache    Source = "cache"
	SourceFixtures Source = "fixtures"
)

// nearbyPrecision buckets origins into ~150m cells so neighbouring
// visitors share a cache entry.
const nearbyPrecision = 7

type NearbyResult struct {
	Category catalog.Category
	Origin   domain.Location
	Source   Source
	Items    []domain.ListingItem
}

// ListingService is the page-level container: it fetches, caches, overlays
// the directory store and normalizes. It never surfaces backend failures;
// an empty or failed fetch degrades to the category's dummy records.
type ListingService struct {
	backend domain.Backend
	cats    *catalog.Registry
	dir     domain.DirectoryRepository
	cache   domain.Cache
	recent  domain.RecentSearches
	ttl     time.Duration
	now     func() time.Time
}

// NewListingService accepts nil directory, cache and recent stores.
func NewListingService(b domain.Backend, cats *catalog.Registry, dir domain.DirectoryRepository,
	cache domain.Cache, recent domain.RecentSearches, ttl time.Duration) *ListingService {
	return &ListingService{backend: b, cats: cats, dir: dir, cache: cache, recent: recent, ttl: ttl, now: time.Now}
}

func (s *ListingService) Category(slug string) (catalog.Category, error) {
	c, ok := s.cats.Lookup(slug)
	if !ok {
		return catalog.Category{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, slug)
	}
	return c, nil
}

// NearbyKey is the cache key of one nearby lookup.
func NearbyKey(slug string, lat, lng, distanceKm float64) string {
	return fmt.Sprintf("nearby:%s:%s:%g", strings.ToLower(slug), geohash.EncodeWithPrecision(lat, lng, nearbyPrecision), distanceKm)
}

func (s *ListingService) NearbyItems(ctx context.Context, slug string, loc domain.Location) (NearbyResult, error) {
	cat, err := s.Category(slug)
	if err != nil {
		return NearbyResult{}, err
	}
	res := NearbyResult{Category: cat, Origin: loc}

	raws, src := s.fetch(ctx, cat, loc)
	if len(raws) == 0 {
		raws, src = fixtureRecords(cat), SourceFixtures
	}
	res.Source = src

	d := s.defaults(ctx, cat, recordIDs(raws))
	res.Items = NormalizeAll(raws, d)
	for i := range res.Items {
		res.Items[i] = WithDistanceFrom(res.Items[i], loc)
	}
	return res, nil
}

func (s *ListingService) fetch(ctx context.Context, cat catalog.Category, loc domain.Location) ([]json.RawMessage, Source) {
	key := NearbyKey(cat.Slug, loc.Lat, loc.Lng, loc.DistanceKm)
	if s.cache != nil {
		var env domain.ListEnvelope
		ok, err := s.cache.Get(ctx, key, &env)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("nearby cache read failed")
		}
		if ok && env.Success && len(env.Data) > 0 {
			return env.Data, SourceCache
		}
	}

	env := s.backend.Nearby(ctx, cat.Name, loc.Lat, loc.Lng, loc.DistanceKm)
	if !env.Success || len(env.Data) == 0 {
		return nil, SourceBackend
	}
	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, env, int(s.ttl.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("nearby cache write failed")
		}
	}
	return env.Data, SourceBackend
}

// Selected resolves one listing for the detail view and card actions: the
// backend record first, then the nearby page around loc (which is how
// records without an id of their own are found again), then the dummy
// records.
func (s *ListingService) Selected(ctx context.Context, slug, id string, loc domain.Location) (domain.ListingItem, catalog.Category, error) {
	cat, err := s.Category(slug)
	if err != nil {
		return domain.ListingItem{}, catalog.Category{}, err
	}

	if raw, ok := s.backend.ByID(ctx, cat.Name, id); ok {
		if RecordID(raw) == "" {
			raw["id"] = id
		}
		return Normalize(raw, s.defaults(ctx, cat, []string{id})), cat, nil
	}
	if loc.DistanceKm > 0 {
		res, err := s.NearbyItems(ctx, slug, loc)
		if err == nil {
			for _, it := range res.Items {
				if it.ID == id {
					return it, cat, nil
				}
			}
		}
	}
	for _, raw := range fixtureRecords(cat) {
		if RecordID(raw) == id {
			return Normalize(raw, s.defaults(ctx, cat, []string{id})), cat, nil
		}
	}
	return domain.ListingItem{}, cat, fmt.Errorf("%s/%s: %w", cat.Slug, id, domain.ErrNotFound)
}

// defaults overlays persisted directory entries on the category's static
// directories. Store failures fall back to the static ones.
func (s *ListingService) defaults(ctx context.Context, cat catalog.Category, ids []string) domain.CategoryDefaults {
	d := cat.Defaults()
	if s.dir == nil || len(ids) == 0 {
		return d
	}
	entries, err := s.dir.Lookup(ctx, cat.Slug, ids)
	if err != nil {
		log.Warn().Err(err).Str("category", cat.Slug).Msg("directory lookup failed")
		return d
	}
	return d.WithEntries(entries)
}

// RememberSearch records a search in the visitor's recent list.
func (s *ListingService) RememberSearch(ctx context.Context, visitor, query string, loc domain.Location) {
	if s.recent == nil || visitor == "" || strings.TrimSpace(query) == "" {
		return
	}
	label := loc.Label
	if label == "" {
		label = fmt.Sprintf("%.4f,%.4f", loc.Lat, loc.Lng)
	}
	rs := domain.RecentSearch{Query: strings.TrimSpace(query), Location: label, Timestamp: s.now().UnixMilli()}
	if err := s.recent.Add(ctx, visitor, rs); err != nil {
		log.Warn().Err(err).Str("visitor", visitor).Msg("recent search write failed")
	}
}

func (s *ListingService) RecentSearches(ctx context.Context, visitor string) []domain.RecentSearch {
	if s.recent == nil || visitor == "" {
		return []domain.RecentSearch{}
	}
	out, err := s.recent.List(ctx, visitor)
	if err != nil {
		log.Warn().Err(err).Str("visitor", visitor).Msg("recent search read failed")
		return []domain.RecentSearch{}
	}
	return out
}

func fixtureRecords(cat catalog.Category) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(cat.Fixtures))
	for _, f := range cat.Fixtures {
		b, err := json.Marshal(f)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

func recordIDs(raws []json.RawMessage) []string {
	ids := make([]string, 0, len(raws))
	for _, r := range raws {
		if id := RecordID(r); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
