package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	server "sonachala/internal/adapters/http_server"
	"sonachala/internal/adapters/observability"
	redisad "sonachala/internal/adapters/redis"
	"sonachala/internal/adapters/upstream"
	"sonachala/internal/app"
	"sonachala/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// redis carries both the catalog cache and the room event channel
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	cache := redisad.NewWithClient(rdb)
	events := redisad.NewEvents(rdb, cfg.EventsChannel)

	client := upstream.New(cfg.HotelAPIBase, cfg.SubmitTimeout, 5)

	catalog := app.NewCatalogService(client, cache, events, app.CatalogOptions{
		HotelID:         cfg.HotelID,
		Fallback:        upstream.FallbackRooms(cfg.HotelID),
		CacheTTL:        cfg.CacheTTL,
		RefreshInterval: cfg.RefreshInterval,
	}, log.Logger)

	sessions := app.NewSessionStore(cfg.SessionTTL)
	submit := app.NewSubmissionService(client, catalog, cfg.HotelID, cfg.SubmitTimeout, log.Logger)

	// prime the catalog, then hand it to the owner loop
	catalog.Refresh(ctx, app.DefaultStay(time.Now()), "explicit")
	go catalog.Run(ctx)

	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := sessions.Sweep(); n > 0 {
					log.Info().Int("removed", n).Msg("expired idle sessions")
				}
			}
		}
	}()

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Sessions:      sessions,
		Catalog:       catalog,
		Submit:        submit,
		FallbackHotel: upstream.FallbackHotel(),
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("hotel", cfg.HotelID).Msg("booking API listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
}
