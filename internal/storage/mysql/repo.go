package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"nearby_market/internal/domain"
)

// maxReasonBytes is the width of sync_misses.reason.
const maxReasonBytes = 255

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valJSON(v []string) any {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

// maxLookupIDs bounds the IN list of one lookup.
const maxLookupIDs = 500

// Repo is the directory store: phones and images keyed by category and id.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertEntry(ctx context.Context, e domain.DirectoryEntry) error {
	_, err := r.db.ExecContext(ctx, upsertEntrySQL,
		strings.ToLower(e.Category),
		e.ID,
		valStr(e.Phone),
		valJSON(e.Images),
	)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, category string, lat, lng float64, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, strings.ToLower(category), lat, lng, truncate(reason, maxReasonBytes))
	return err
}

// Lookup returns the stored entries among ids. Unknown ids are absent from
// the result.
func (r *Repo) Lookup(ctx context.Context, category string, ids []string) (map[string]domain.DirectoryEntry, error) {
	out := make(map[string]domain.DirectoryEntry, len(ids))
	ids = dedupe(ids)
	for start := 0; start < len(ids); start += maxLookupIDs {
		end := min(start+maxLookupIDs, len(ids))
		if err := r.lookupChunk(ctx, strings.ToLower(category), ids[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) lookupChunk(ctx context.Context, category string, ids []string, out map[string]domain.DirectoryEntry) error {
	args := make([]any, 0, len(ids)+1)
	args = append(args, category)
	for _, id := range ids {
		args = append(args, id)
	}
	q := lookupEntriesPrefix + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     string
			phone  sql.NullString
			images sql.NullString
		)
		if err := rows.Scan(&id, &phone, &images); err != nil {
			return err
		}
		e := domain.DirectoryEntry{Category: category, ID: id, Phone: phone.String}
		if images.Valid && images.String != "" {
			if err := json.Unmarshal([]byte(images.String), &e.Images); err != nil {
				log.Warn().Err(err).Str("category", category).Str("id", id).Msg("bad images json in directory")
			}
		}
		out[id] = e
	}
	return rows.Err()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
