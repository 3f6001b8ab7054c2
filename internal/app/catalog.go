package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"sonachala/internal/adapters/observability"
	"sonachala/internal/domain"
)

// CatalogService owns the room catalog. Every refresh replaces the
// snapshot wholesale; there is no partial merge. Upstream failures are
// masked by the fixed fallback dataset, so callers always get a
// populated catalog; the snapshot's Source tells them whether it is
// live. Timer ticks and push events funnel into the Run loop, keeping
// a single writer for the current snapshot.
type CatalogService struct {
	api      domain.HotelAPI
	cache    domain.Cache
	events   domain.CatalogEvents
	hotelID  string
	fallback []domain.RoomType
	cacheTTL time.Duration
	interval time.Duration
	log      zerolog.Logger

	group singleflight.Group
	seq   atomic.Uint64

	mu      sync.RWMutex
	snap    domain.CatalogSnapshot
	applied uint64
	stay    domain.StayWindow // window of the last explicit refresh
}

type CatalogOptions struct {
	HotelID         string
	Fallback        []domain.RoomType
	CacheTTL        time.Duration
	RefreshInterval time.Duration
}

func NewCatalogService(api domain.HotelAPI, cache domain.Cache, events domain.CatalogEvents, opts CatalogOptions, log zerolog.Logger) *CatalogService {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 25 * time.Second
	}
	return &CatalogService{
		api:      api,
		cache:    cache,
		events:   events,
		hotelID:  opts.HotelID,
		fallback: opts.Fallback,
		cacheTTL: opts.CacheTTL,
		interval: opts.RefreshInterval,
		log:      log,
	}
}

// Snapshot returns the current catalog. Zero value before the first
// refresh completes.
func (s *CatalogService) Snapshot() domain.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Fetch returns the catalog for an arbitrary stay window, preferring
// the short-lived cache, then the upstream, then the fallback dataset.
// It never returns an error to callers: a fetch failure degrades to
// fallback data by design.
func (s *CatalogService) Fetch(ctx context.Context, stay domain.StayWindow) domain.CatalogSnapshot {
	key := s.cacheKey(stay)
	if s.cache != nil {
		var cached domain.CatalogSnapshot
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached
		}
	}
	return s.fetchUpstream(ctx, stay)
}

// Refresh refetches for the given window, bypassing the cache, and
// installs the result as the current snapshot. Concurrent refreshes for
// the same window are collapsed into one upstream call.
func (s *CatalogService) Refresh(ctx context.Context, stay domain.StayWindow, trigger string) domain.CatalogSnapshot {
	observability.ObserveRefresh(trigger)
	token := s.seq.Add(1)
	v, _, _ := s.group.Do(s.cacheKey(stay), func() (any, error) {
		return s.fetchUpstream(ctx, stay), nil
	})
	snap := v.(domain.CatalogSnapshot)
	s.install(snap, stay, token)
	return snap
}

// install applies a completed refresh unless a newer one has already
// landed; late responses from older refreshes are discarded.
func (s *CatalogService) install(snap domain.CatalogSnapshot, stay domain.StayWindow, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token < s.applied {
		return
	}
	s.applied = token
	s.snap = snap
	s.stay = stay
}

func (s *CatalogService) currentStay() domain.StayWindow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stay
}

func (s *CatalogService) fetchUpstream(ctx context.Context, stay domain.StayWindow) domain.CatalogSnapshot {
	rooms, err := s.api.ListRooms(ctx, s.hotelID, stay)
	if err != nil {
		s.log.Warn().Err(err).Msg("room fetch failed, serving fallback dataset")
		observability.ObserveFallback("rooms")
		return domain.PartitionRooms(s.fallback, domain.SourceFallback, time.Now().UTC())
	}
	snap := domain.PartitionRooms(rooms, domain.SourceLive, time.Now().UTC())
	if s.cache != nil {
		_ = s.cache.Set(ctx, s.cacheKey(stay), snap, int(s.cacheTTL.Seconds()))
	}
	return snap
}

func (s *CatalogService) cacheKey(stay domain.StayWindow) string {
	in, out := "", ""
	if !stay.CheckIn.IsZero() {
		in = stay.CheckIn.Format("2006-01-02")
	}
	if !stay.CheckOut.IsZero() {
		out = stay.CheckOut.Format("2006-01-02")
	}
	return fmt.Sprintf("rooms:%s:%s:%s", s.hotelID, in, out)
}

// Hotel returns the descriptive hotel record, cached, with the fixed
// fallback record masking fetch failures.
func (s *CatalogService) Hotel(ctx context.Context, fallback domain.Hotel) (domain.Hotel, domain.CatalogSource) {
	key := "hotel:" + s.hotelID
	if s.cache != nil {
		var cached domain.Hotel
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, domain.SourceLive
		}
	}
	h, err := s.api.GetHotel(ctx, s.hotelID)
	if err != nil {
		s.log.Warn().Err(err).Msg("hotel fetch failed, serving fallback record")
		observability.ObserveFallback("hotel")
		return fallback, domain.SourceFallback
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, domain.SourceLive
}

// Run is the catalog owner loop: the periodic refresh timer and the
// push-event subscription both land here, so only this goroutine
// triggers background refreshes. Returns when ctx is cancelled, which
// also stops the timer.
func (s *CatalogService) Run(ctx context.Context) {
	var events <-chan domain.RoomEvent
	if s.events != nil {
		ch, err := s.events.Subscribe(ctx, s.hotelID)
		if err != nil {
			s.log.Error().Err(err).Msg("event subscription failed, running on timer only")
		} else {
			events = ch
		}
	}

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Refresh(ctx, s.currentStay(), "timer")
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// invalidation signal only: drop the cache entry and
			// refetch the whole catalog
			stay := s.currentStay()
			if s.cache != nil {
				_ = s.cache.Del(ctx, s.cacheKey(stay))
			}
			s.log.Info().Str("event", ev.Event).Msg("room event received, refreshing catalog")
			s.Refresh(ctx, stay, "event")
		}
	}
}
