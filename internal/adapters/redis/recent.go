package redisad

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"nearby_market/internal/domain"
)

// MaxRecentSearches caps each visitor's list.
const MaxRecentSearches = 10

// RecentSearches keeps a newest-first list per visitor. Concurrent writers
// are not coordinated; the last write wins.
type RecentSearches struct{ c *redis.Client }

func NewRecentSearches(c *redis.Client) *RecentSearches { return &RecentSearches{c: c} }

func recentKey(visitor string) string { return "recent:" + visitor }

func (r *RecentSearches) Add(ctx context.Context, visitor string, s domain.RecentSearch) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	key := recentKey(visitor)
	pipe := r.c.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, MaxRecentSearches-1)
	_, err = pipe.Exec(ctx)
	return err
}

// List returns at most MaxRecentSearches entries, newest first. Entries
// that fail to decode are skipped.
func (r *RecentSearches) List(ctx context.Context, visitor string) ([]domain.RecentSearch, error) {
	vals, err := r.c.LRange(ctx, recentKey(visitor), 0, MaxRecentSearches-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecentSearch, 0, len(vals))
	for _, v := range vals {
		var s domain.RecentSearch
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			log.Warn().Err(err).Str("visitor", visitor).Msg("skipping corrupt recent search")
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
