package presence

import (
	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

// Router fans events out to a user's live channels.
//
// Delivery is at-most-once and best-effort: a failure writing to one channel is
// logged, the channel is evicted, and delivery to the remaining channels
// continues. Callers are never blocked on a slow peer and never see a push
// failure as their operation's result.
type Router struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewRouter constructs a Router over the given registry.
func NewRouter(registry *Registry) *Router {
	return &Router{
		registry: registry,
		logger:   logx.Logger().With().Str("component", "DeliveryRouter").Logger(),
	}
}

// Push writes the event to every channel the user holds at call time.
// Channels that reject the event are treated as dead: removed from the registry
// and closed. Offline users are silently skipped; they will pick the change up
// from the durable ledgers on their next history or notification fetch.
func (r *Router) Push(userID string, ev Event) {
	channels := r.registry.Channels(userID)
	if len(channels) == 0 {
		return
	}

	for _, ch := range channels {
		if err := ch.Deliver(ev); err != nil {
			r.logger.Warn().
				Err(err).
				Str("user_id", userID).
				Str("event", ev.Name).
				Msg("Channel rejected event, evicting.")

			r.registry.Leave(ch)
			ch.Close()
		}
	}
}
