package redisad

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"sonachala/internal/domain"
)

// knownEvents are the room change notifications the backend publishes.
var knownEvents = map[string]bool{
	"roomCreated": true,
	"roomUpdated": true,
	"roomDeleted": true,
}

// Events subscribes to the room change channel over redis pub/sub.
// Payloads are invalidation signals only; the catalog is refetched in
// full by the subscriber.
type Events struct {
	c       *redis.Client
	channel string
}

func NewEvents(c *redis.Client, channel string) *Events {
	if channel == "" {
		channel = "rooms.events"
	}
	return &Events{c: c, channel: channel}
}

// Subscribe delivers events for hotelID until ctx is cancelled. Events
// for other hotels, unknown event names, and malformed payloads are
// dropped. The returned channel is closed on cancellation.
func (e *Events) Subscribe(ctx context.Context, hotelID string) (<-chan domain.RoomEvent, error) {
	sub := e.c.Subscribe(ctx, e.channel)
	// force the subscription onto the wire before returning
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan domain.RoomEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev domain.RoomEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Warn().Err(err).Str("channel", e.channel).Msg("bad room event payload")
					continue
				}
				if !knownEvents[ev.Event] || ev.HotelID != hotelID {
					continue
				}
				select {
				case out <- ev:
				default:
					// slow consumer: dropping is fine, any one event
					// already forces a full refetch
				}
			}
		}
	}()
	return out, nil
}
