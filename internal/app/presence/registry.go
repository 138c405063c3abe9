package presence

import (
	"sync"

	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

// Registry is the process-wide mapping from user identifier to live channels.
// It is an owned service instance injected into handlers, never ambient global
// state; a multi-process deployment would swap it for a shared pub/sub broker
// keyed by user identifier.
type Registry struct {
	// mu protects users and owners.
	mu sync.RWMutex

	// users maps a user identifier to that user's live channel set.
	users map[string]map[Channel]struct{}

	// owners maps a channel back to the user it is registered under, making
	// Leave O(1) regardless of how many channels the user holds.
	owners map[Channel]string

	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[string]map[Channel]struct{}),
		owners: make(map[Channel]string),
		logger: logx.Logger().With().Str("component", "PresenceRegistry").Logger(),
	}
}

// Join registers a channel under a user. The same channel may only be registered
// once; re-joining moves it to the new owner.
func (r *Registry) Join(userID string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owners[ch]; ok {
		delete(r.users[prev], ch)
		if len(r.users[prev]) == 0 {
			delete(r.users, prev)
		}
	}

	set, ok := r.users[userID]
	if !ok {
		set = make(map[Channel]struct{})
		r.users[userID] = set
	}
	set[ch] = struct{}{}
	r.owners[ch] = userID

	r.logger.Debug().
		Str("user_id", userID).
		Int("channels", len(set)).
		Msg("Channel joined.")
}

// Leave removes a channel from whatever user it was registered under.
// Removing an unknown channel is a harmless no-op, so a racing push that evicts
// a channel already gone never faults.
func (r *Registry) Leave(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[ch]
	if !ok {
		return
	}

	delete(r.owners, ch)
	delete(r.users[userID], ch)
	if len(r.users[userID]) == 0 {
		delete(r.users, userID)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Int("channels", len(r.users[userID])).
		Msg("Channel left.")
}

// Channels returns a snapshot of the user's live channels at call time.
// Channels joining after the snapshot miss the event being routed, which is
// acceptable because durable history supersedes the live push.
func (r *Registry) Channels(userID string) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.users[userID]
	if !ok {
		return nil
	}

	snapshot := make([]Channel, 0, len(set))
	for ch := range set {
		snapshot = append(snapshot, ch)
	}
	return snapshot
}

// IsOnline reports whether the user has at least one live channel.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users[userID]) > 0
}

// Shutdown closes every registered channel and empties the registry.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ch := range r.owners {
		ch.Close()
	}
	r.users = make(map[string]map[Channel]struct{})
	r.owners = make(map[Channel]string)

	r.logger.Info().Msg("Registry shutdown complete.")
}
