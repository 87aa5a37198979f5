package notify

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Notifier publishes offer-change events. With Redis configured, events go
// through a pub/sub channel so every service instance (this one included)
// hears them and fans out to its local hub; without Redis, events go straight
// to the local hub.
type Notifier struct {
	hub     *Hub
	rdb     *redis.Client
	channel string
	logger  zerolog.Logger
}

func NewNotifier(hub *Hub, rdb *redis.Client, channel string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		hub:     hub,
		rdb:     rdb,
		channel: channel,
		logger:  logger,
	}
}

// OfferChanged publishes a change event for the offer. Failures are logged
// and swallowed: delivery is a freshness convenience, never a correctness
// dependency of the reservation path.
func (n *Notifier) OfferChanged(ctx context.Context, offerID string) {
	payload := Event{Kind: KindOfferChanged, OfferID: offerID}.marshal()

	if n.rdb == nil {
		n.hub.Broadcast(payload)
		return
	}
	if err := n.rdb.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.logger.Warn().Err(err).Str("offer_id", offerID).Msg("publish offer change failed")
		// Local observers still get the event.
		n.hub.Broadcast(payload)
	}
}

// RunBridge subscribes to the Redis channel and forwards payloads to the
// local hub until ctx is cancelled. No-op without Redis.
func (n *Notifier) RunBridge(ctx context.Context) error {
	if n.rdb == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	sub := n.rdb.Subscribe(ctx, n.channel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			n.hub.Broadcast([]byte(msg.Payload))
		}
	}
}

// Noop discards all events; used in tests and tools that don't observe
// changes.
type Noop struct{}

func (Noop) OfferChanged(context.Context, string) {}
