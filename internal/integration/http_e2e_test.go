//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"nearby_market/internal/adapters/backend"
	server "nearby_market/internal/adapters/http_server"
	"nearby_market/internal/app"
	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
	mysqlrepo "nearby_market/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=market"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/market?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

// marketAPI serves one shopping record. Once phones are withheld the
// record arrives without a phone, as later API responses often do.
type marketAPI struct{ withhold atomic.Bool }

func (a *marketAPI) record() string {
	phone := `"phone": "+91 99999 00000",`
	if a.withhold.Load() {
		phone = ""
	}
	return `{"id": "store_9", "name": "Corner Store", ` + phone + ` "address": "Saket", "location": {"lat": 28.52, "lng": 77.21}}`
}

func (a *marketAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/getNearbyShopping":
		_, _ = fmt.Fprintf(w, `{"success": true, "count": 1, "data": [%s]}`, a.record())
	case strings.HasPrefix(r.URL.Path, "/getShoppingById/store_9"):
		_, _ = fmt.Fprintf(w, `{"success": true, "data": %s}`, a.record())
	default:
		http.NotFound(w, r)
	}
}

// ---------- the test ----------

// A phone seen during directory sync keeps the Call action working after
// the API stops sending it.
func TestHTTP_EndToEnd_SyncedPhoneServesCall(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	api := &marketAPI{}
	upstream := httptest.NewServer(api)
	defer upstream.Close()
	client := backend.New(upstream.URL, 50)

	loc := domain.Location{Lat: 28.52, Lng: 77.21, DistanceKm: 5}
	n, err := app.NewDirectorySyncService(client, repo, nil).SyncArea(ctx, catalog.Shopping, loc)
	if err != nil || n != 1 {
		t.Fatalf("SyncArea: n=%d err=%v", n, err)
	}

	api.withhold.Store(true)

	srv := server.New(0)
	srv.MountHandlers(&server.Handlers{
		Listings:    app.NewListingService(client, catalog.Default(), repo, nil, nil, 0),
		Backend:     client,
		Locator:     app.FixedLocation(loc),
		Taxonomy:    catalog.Workers,
		PhoneRegion: "IN",
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	res, err := noFollow.Get(ts.URL + "/shopping/store_9/call")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusFound {
		t.Fatalf("status %d", res.StatusCode)
	}
	if got := res.Header.Get("Location"); got != "tel:+919999900000" {
		t.Fatalf("Location=%q", got)
	}
}
