package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"nearby_market/internal/adapters/backend"
	server "nearby_market/internal/adapters/http_server"
	"nearby_market/internal/adapters/observability"
	redisad "nearby_market/internal/adapters/redis"
	"nearby_market/internal/adapters/speech"
	"nearby_market/internal/app"
	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
	"nearby_market/internal/shared"
	mysqlrepo "nearby_market/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "web")

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// the directory store is optional; without it cards use the static directories
	var dir domain.DirectoryRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		dir = mysqlrepo.New(db)
	}

	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, cache and drafts will fail soft")
	}

	api := backend.New(cfg.APIBaseURL, cfg.APIRPS)
	listings := app.NewListingService(api, catalog.Default(), dir, redisad.New(rdb), redisad.NewRecentSearches(rdb), cfg.CacheTTL)
	voice := speech.New(speech.Config{APIKey: cfg.OpenAIKey, Language: cfg.VoiceLanguage}).Recognizer()

	srv := server.New(cfg.RateLimitPerMin)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Listings: listings,
		Backend:  api,
		Locator: app.FixedLocation{
			Lat: cfg.DefaultLat, Lng: cfg.DefaultLng,
			DistanceKm: cfg.DefaultDistanceKm, Label: cfg.DefaultLabel,
		},
		Drafts:      redisad.NewDrafts(rdb),
		Voice:       voice,
		Taxonomy:    catalog.Workers,
		PhoneRegion: cfg.PhoneRegion,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Bool("voice", voice != nil).Bool("directory", dir != nil).Msg("web listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("web stopped")
}
