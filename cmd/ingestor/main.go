package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"nearby_market/internal/adapters/backend"
	"nearby_market/internal/adapters/observability"
	redisad "nearby_market/internal/adapters/redis"
	"nearby_market/internal/app"
	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
	"nearby_market/internal/shared"
	mysqlrepo "nearby_market/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "ingestor")

	log.Info().
		Str("base", cfg.APIBaseURL).
		Int("workers", cfg.Workers).
		Int("seeds", len(cfg.SeedLocations)).
		Msg("ingestor starting")

	if cfg.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN is required for the ingestor")
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	syncer := app.NewDirectorySyncService(backend.New(cfg.APIBaseURL, cfg.APIRPS), repo, redisad.New(rdb))

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var total, failed atomic.Int64

	for _, cat := range catalog.Default().All() {
		for _, seed := range cfg.SeedLocations {
			cat, loc := cat, domain.Location{Lat: seed.Lat, Lng: seed.Lng, DistanceKm: cfg.DefaultDistanceKm}

			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)

				n, err := syncer.SyncArea(ctx, cat, loc)
				if err != nil {
					failed.Add(1)
					log.Warn().Err(err).Str("category", cat.Slug).Float64("lat", loc.Lat).Float64("lng", loc.Lng).Msg("sync failed")
					if err := repo.LogMiss(ctx, cat.Slug, loc.Lat, loc.Lng, err.Error()); err != nil {
						log.Error().Err(err).Msg("record sync miss failed")
					}
					return
				}
				total.Add(int64(n))
				observability.ObserveSynced(cat.Slug, n)
				log.Info().Str("category", cat.Slug).Int("entries", n).Msg("sync ok")
			}()
		}
	}

	wg.Wait()
	log.Info().Int64("entries", total.Load()).Int64("failed", failed.Load()).Msg("directory sync completed")
}
