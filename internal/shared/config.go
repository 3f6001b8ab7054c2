package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	MetricsAddr     string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	HotelAPIBase    string
	HotelID         string
	EventsChannel   string
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	SubmitTimeout   time.Duration
	SessionTTL      time.Duration
}

func Load() Config {
	// optional .env for local runs; real env vars win
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ":9100"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		HotelAPIBase:    env("HOTEL_API_BASE", "http://localhost:5000/api"),
		HotelID:         env("HOTEL_ID", "sonachala"),
		EventsChannel:   env("EVENTS_CHANNEL", "rooms.events"),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 25)) * time.Second,
		RefreshInterval: time.Duration(atoi("REFRESH_INTERVAL_SECONDS", 30)) * time.Second,
		SubmitTimeout:   time.Duration(atoi("SUBMIT_TIMEOUT_SECONDS", 30)) * time.Second,
		SessionTTL:      time.Duration(atoi("SESSION_TTL_MINUTES", 60)) * time.Minute,
	}
	if c.HotelAPIBase == "" {
		log.Warn().Msg("HOTEL_API_BASE is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
