package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	APIBaseURL string
	APIRPS     int

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	OpenAIKey     string
	VoiceLanguage string

	DefaultLat        float64
	DefaultLng        float64
	DefaultDistanceKm float64
	DefaultLabel      string
	PhoneRegion       string

	Workers         int
	SeedLocations   []SeedLocation
	RateLimitPerMin int
}

// SeedLocation is one area the ingestor syncs.
type SeedLocation struct {
	Lat, Lng float64
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		LogLevel:          env("LOG_LEVEL", "info"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ""),
		APIBaseURL:        env("API_BASE_URL", ""),
		APIRPS:            atoi("API_RPS", 10),
		MySQLDSN:          env("MYSQL_DSN", ""),
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisPass:         env("REDIS_PASSWORD", ""),
		RedisDB:           atoi("REDIS_DB", 0),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		OpenAIKey:         env("OPENAI_API_KEY", ""),
		VoiceLanguage:     env("VOICE_LANGUAGE", ""),
		DefaultLat:        atof("DEFAULT_LAT", 28.6139),
		DefaultLng:        atof("DEFAULT_LNG", 77.2090),
		DefaultDistanceKm: atof("DEFAULT_DISTANCE_KM", 5),
		DefaultLabel:      env("DEFAULT_LOCATION_LABEL", "New Delhi"),
		PhoneRegion:       strings.ToUpper(env("PHONE_REGION", "IN")),
		Workers:           atoi("INGEST_WORKERS", 4),
		RateLimitPerMin:   atoi("RATE_LIMIT_PER_MIN", 120),
	}
	c.SeedLocations = ParseSeeds(env("INGEST_SEEDS", ""))
	if len(c.SeedLocations) == 0 {
		c.SeedLocations = []SeedLocation{{Lat: c.DefaultLat, Lng: c.DefaultLng}}
	}
	if c.APIBaseURL == "" {
		log.Warn().Msg("API_BASE_URL is empty")
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty; voice input disabled")
	}
	return c
}

// ParseSeeds reads "lat,lng;lat,lng". Malformed pairs are skipped.
func ParseSeeds(s string) []SeedLocation {
	var out []SeedLocation
	for _, pair := range strings.Split(s, ";") {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			continue
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, SeedLocation{Lat: lat, Lng: lng})
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
