package domain

import "context"

// HotelAPI is the outbound port to the upstream hotel backend.
type HotelAPI interface {
	GetHotel(ctx context.Context, hotelID string) (Hotel, error)
	ListRooms(ctx context.Context, hotelID string, stay StayWindow) ([]RoomType, error)
	CreateBooking(ctx context.Context, req BookingRequest) (BookingResult, error)
}

// Cache stores JSON-serializable values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// RoomEvent is a push notification that the catalog for a hotel changed.
// It carries no room data; consumers refetch the full catalog.
type RoomEvent struct {
	Event   string `json:"event"` // roomCreated | roomUpdated | roomDeleted
	HotelID string `json:"hotelId"`
}

// CatalogEvents delivers room change events for one hotel until the
// context is cancelled.
type CatalogEvents interface {
	Subscribe(ctx context.Context, hotelID string) (<-chan RoomEvent, error)
}
