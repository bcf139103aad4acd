package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DraftTTL is how long an unfinished onboarding form is kept.
const DraftTTL = 24 * time.Hour

// Drafts stores in-progress onboarding forms between requests.
type Drafts struct{ c *redis.Client }

func NewDrafts(c *redis.Client) *Drafts { return &Drafts{c: c} }

func draftKey(id string) string { return "draft:" + id }

func (d *Drafts) NewID() string { return uuid.NewString() }

func (d *Drafts) Save(ctx context.Context, id string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return d.c.Set(ctx, draftKey(id), b, DraftTTL).Err()
}

// Load reports false for unknown, expired or malformed ids.
func (d *Drafts) Load(ctx context.Context, id string, dst any) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	b, err := d.c.Get(ctx, draftKey(id)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (d *Drafts) Delete(ctx context.Context, id string) error {
	return d.c.Del(ctx, draftKey(id)).Err()
}
