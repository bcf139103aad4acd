package domain

import (
	"context"
	"io"
	"net/url"
)

// Backend is the marketplace REST API. Implementations never return Go
// errors for transport or decode failures; they return failure envelopes.
type Backend interface {
	Nearby(ctx context.Context, category string, lat, lng, distanceKm float64) ListEnvelope
	ByID(ctx context.Context, category, id string) (map[string]any, bool)
	Create(ctx context.Context, category string, body Submission) MutationEnvelope
	Update(ctx context.Context, category, id string, body Submission) MutationEnvelope
	Delete(ctx context.Context, category, id string) MutationEnvelope
}

// Submission is a form body headed for the backend. Files, when present,
// force a multipart encoding.
type Submission struct {
	Values url.Values
	Files  []SubmissionFile
}

type SubmissionFile struct {
	Field    string
	Filename string
	Data     []byte
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type DirectoryRepository interface {
	UpsertEntry(ctx context.Context, e DirectoryEntry) error
	Lookup(ctx context.Context, category string, ids []string) (map[string]DirectoryEntry, error)
}

type RecentSearches interface {
	Add(ctx context.Context, visitor string, s RecentSearch) error
	List(ctx context.Context, visitor string) ([]RecentSearch, error)
}

// VoiceRecognizer turns one recorded utterance into a final transcript.
type VoiceRecognizer interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type LocationProvider interface {
	Locate(ctx context.Context) (Location, error)
}

type LaunchTarget int

const (
	SameContext LaunchTarget = iota
	NewContext
)

// ActionLauncher performs fire-and-forget navigation (tel: and maps links).
type ActionLauncher interface {
	Launch(uri string, target LaunchTarget)
}

type NoticeLevel int

const (
	Transient NoticeLevel = iota
	Blocking
)

func (l NoticeLevel) String() string {
	if l == Blocking {
		return "blocking"
	}
	return "transient"
}

func (l NoticeLevel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Notice is a user-visible message. Blocking notices need acknowledgement,
// transient ones dismiss themselves.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

type Notifier interface {
	Notify(n Notice)
}
