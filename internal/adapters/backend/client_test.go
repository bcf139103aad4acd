package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nearby_market/internal/adapters/backend"
	"nearby_market/internal/domain"
)

func TestClient_Nearby_RetriesThenSuccess(t *testing.T) {
	var hits int32
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true, "count": 1,
				"data": []any{map[string]any{"_id": "beauty_1", "name": "Glow"}},
			})
		}
	}))
	defer ts.Close()

	cl := backend.New(ts.URL, 100)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	env := cl.Nearby(ctx, "Beauty", 28.61, 77.2, 5)
	if !env.Success || env.Count != 1 || len(env.Data) != 1 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if gotPath != "/getNearbyBeauty" {
		t.Fatalf("path=%s", gotPath)
	}
	q, _ := url.ParseQuery(gotQuery)
	if q.Get("latitude") != "28.61" || q.Get("longitude") != "77.2" || q.Get("distance") != "5" {
		t.Fatalf("query=%s", gotQuery)
	}
	if atomic.LoadInt32(&hits) < 2 {
		t.Fatalf("expected a retry, got %d calls", hits)
	}
}

func TestClient_Nearby_RejectsDistanceBeforeCalling(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer ts.Close()

	cl := backend.New(ts.URL, 100)
	for _, d := range []float64{0, -1} {
		env := cl.Nearby(context.Background(), "Beauty", 1, 1, d)
		if env.Success || env.Count != 0 || env.Data == nil || len(env.Data) != 0 {
			t.Fatalf("distance %v: %+v", d, env)
		}
	}
	if hits != 0 {
		t.Fatalf("no request may be made, got %d", hits)
	}
}

func TestClient_FailuresBecomeEnvelopes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json"))
	}))
	defer ts.Close()

	cases := map[string]*backend.Client{
		"no base url": backend.New("", 100),
		"bad json":    backend.New(ts.URL, 100),
	}
	for name, cl := range cases {
		env := cl.Nearby(context.Background(), "Sports", 1, 1, 5)
		if env.Success || env.Count != 0 || len(env.Data) != 0 {
			t.Fatalf("%s: %+v", name, env)
		}
		m := cl.Delete(context.Background(), "Sports", "sports_1")
		if m.Success || m.Message == "" {
			t.Fatalf("%s: %+v", name, m)
		}
		if _, ok := cl.ByID(context.Background(), "Sports", "sports_1"); ok {
			t.Fatalf("%s: ByID should miss", name)
		}
	}
}

func TestClient_ByID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getHotelById/hotel_1":
			_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"hotel_1","name":"Lotus Inn"}}`))
		case "/getHotelById/hotel_2":
			_, _ = w.Write([]byte(`{"_id":"hotel_2","name":"Park View"}`))
		case "/getHotelById/gone":
			_, _ = w.Write([]byte(`{"success":false}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	cl := backend.New(ts.URL, 100)
	ctx := context.Background()
	if rec, ok := cl.ByID(ctx, "Hotel", "hotel_1"); !ok || rec["name"] != "Lotus Inn" {
		t.Fatalf("wrapped record: %v %v", rec, ok)
	}
	if rec, ok := cl.ByID(ctx, "Hotel", "hotel_2"); !ok || rec["name"] != "Park View" {
		t.Fatalf("bare record: %v %v", rec, ok)
	}
	for _, id := range []string{"gone", "missing", ""} {
		if _, ok := cl.ByID(ctx, "Hotel", id); ok {
			t.Fatalf("%q should miss", id)
		}
	}
}

func TestClient_Mutations(t *testing.T) {
	type seen struct{ method, path, ctype, body string }
	var calls []seen
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, seen{r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(b)})
		if r.URL.Path == "/updateBeauty/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer ts.Close()

	cl := backend.New(ts.URL, 100)
	ctx := context.Background()

	form := domain.Submission{Values: url.Values{"name": {"Glow Studio"}}}
	if env := cl.Create(ctx, "Beauty", form); !env.Success {
		t.Fatalf("create: %+v", env)
	}
	withFile := domain.Submission{
		Values: url.Values{"name": {"Glow Studio"}},
		Files:  []domain.SubmissionFile{{Field: "workImages", Filename: "a.png", Data: []byte("png")}},
	}
	if env := cl.Update(ctx, "Beauty", "beauty_1", withFile); !env.Success {
		t.Fatalf("update: %+v", env)
	}
	if env := cl.Delete(ctx, "Beauty", "beauty_1"); !env.Success {
		t.Fatalf("delete: %+v", env)
	}

	if calls[0].method != http.MethodPost || calls[0].path != "/beautyCreate" ||
		calls[0].ctype != "application/x-www-form-urlencoded" || calls[0].body != "name=Glow+Studio" {
		t.Fatalf("create call: %+v", calls[0])
	}
	if calls[1].method != http.MethodPut || calls[1].path != "/updateBeauty/beauty_1" ||
		!strings.HasPrefix(calls[1].ctype, "multipart/form-data") || !strings.Contains(calls[1].body, `filename="a.png"`) {
		t.Fatalf("update call: %+v", calls[1])
	}
	if calls[2].method != http.MethodDelete || calls[2].path != "/deleteBeauty/beauty_1" {
		t.Fatalf("delete call: %+v", calls[2])
	}

	before := atomic.LoadInt32(&hits)
	if env := cl.Update(ctx, "Beauty", "broken", form); env.Success || env.Message == "" {
		t.Fatalf("failed update: %+v", env)
	}
	if got := atomic.LoadInt32(&hits) - before; got != 1 {
		t.Fatalf("mutations are sent once, got %d", got)
	}
}
