package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
)

// DirectorySyncService pulls nearby records and persists their phones and
// images by id, so cards can resolve them when a later record omits them.
type DirectorySyncService struct {
	backend domain.Backend
	repo    domain.DirectoryRepository
	cache   domain.Cache
}

func NewDirectorySyncService(b domain.Backend, r domain.DirectoryRepository, c domain.Cache) *DirectorySyncService {
	return &DirectorySyncService{backend: b, repo: r, cache: c}
}

// SyncArea stores directory entries for one category around loc and
// returns how many were written. A failed backend call is an error here,
// unlike on the page path, so the ingestor can report it.
func (s *DirectorySyncService) SyncArea(ctx context.Context, cat catalog.Category, loc domain.Location) (int, error) {
	env := s.backend.Nearby(ctx, cat.Name, loc.Lat, loc.Lng, loc.DistanceKm)
	if !env.Success {
		return 0, fmt.Errorf("nearby %s at %.4f,%.4f: backend reported failure", cat.Slug, loc.Lat, loc.Lng)
	}

	// bare defaults: only what the records carry themselves is persisted
	d := domain.CategoryDefaults{Category: cat.Slug}
	n := 0
	for i, raw := range env.Data {
		if RecordID(raw) == "" {
			log.Debug().Str("category", cat.Slug).Int("index", i).Msg("record without id skipped")
			continue
		}
		item := normalizeSafe(raw, d, i)
		e := domain.DirectoryEntry{Category: cat.Slug, ID: item.ID, Images: item.Images}
		if item.Phone != nil {
			e.Phone = *item.Phone
		}
		if e.Phone == "" && len(e.Images) == 0 {
			continue
		}
		if err := s.repo.UpsertEntry(ctx, e); err != nil {
			return n, fmt.Errorf("upsert %s/%s: %w", cat.Slug, item.ID, err)
		}
		n++
	}

	// next page load for this area refetches
	if s.cache != nil && n > 0 {
		_ = s.cache.Del(ctx, NearbyKey(cat.Slug, loc.Lat, loc.Lng, loc.DistanceKm))
	}
	return n, nil
}
