package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"sonachala/internal/domain"
)

// ---- fakes shared across app tests ----

type fakeAPI struct {
	mu    sync.Mutex
	rooms []domain.RoomType
	hotel domain.Hotel

	roomsErr  error
	hotelErr  error
	submitErr error

	submitResult domain.BookingResult
	submitBlock  chan struct{} // when set, CreateBooking waits on it
	listBlock    chan struct{} // when set, the first ListRooms call waits on it

	listCalls   atomic.Int32
	submitCalls atomic.Int32
	lastRequest domain.BookingRequest
}

func (f *fakeAPI) GetHotel(ctx context.Context, hotelID string) (domain.Hotel, error) {
	if f.hotelErr != nil {
		return domain.Hotel{}, f.hotelErr
	}
	return f.hotel, nil
}

func (f *fakeAPI) ListRooms(ctx context.Context, hotelID string, stay domain.StayWindow) ([]domain.RoomType, error) {
	n := f.listCalls.Add(1)
	// snapshot the inventory up front so a blocked call behaves like a
	// response formed upstream but delayed in transit
	f.mu.Lock()
	rooms := append([]domain.RoomType(nil), f.rooms...)
	f.mu.Unlock()
	if f.listBlock != nil && n == 1 {
		<-f.listBlock
	}
	if f.roomsErr != nil {
		return nil, f.roomsErr
	}
	return rooms, nil
}

func (f *fakeAPI) setRooms(rooms []domain.RoomType) {
	f.mu.Lock()
	f.rooms = rooms
	f.mu.Unlock()
}

func (f *fakeAPI) CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.BookingResult, error) {
	f.submitCalls.Add(1)
	f.mu.Lock()
	f.lastRequest = req
	f.mu.Unlock()
	if f.submitBlock != nil {
		<-f.submitBlock
	}
	if f.submitErr != nil {
		return domain.BookingResult{}, f.submitErr
	}
	return f.submitResult, nil
}

func (f *fakeAPI) last() domain.BookingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRequest
}

// fakeCache round-trips values through JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.store[key] = b
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
	return nil
}

type fakeEvents struct{ ch chan domain.RoomEvent }

func (f *fakeEvents) Subscribe(ctx context.Context, hotelID string) (<-chan domain.RoomEvent, error) {
	return f.ch, nil
}
