/*
Package presence tracks which users currently have live real-time connections and
routes events to them.

The registry is volatile, process-lifetime state: entries appear when a connection
authenticates and vanish when it disconnects. Durable ledgers remain the source of
truth; everything pushed through here is best-effort.
*/
package presence

// Event names pushed over the real-time channel.
const (
	// EventMessage carries a newly appended chat message.
	EventMessage = "chat:message"

	// EventFriendRequest tells the recipient a friend request arrived.
	EventFriendRequest = "friend:request"

	// EventFriendUpdate tells a user their friend graph changed.
	EventFriendUpdate = "friend:update"

	// EventNotification tells a user a new notification exists.
	EventNotification = "notification:new"

	// EventError reports a failed inbound socket operation back to the sender.
	EventError = "chat:error"
)

// Event is the envelope written to presence channels.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Channel is one live, addressable real-time connection belonging to a user.
// A user may own several simultaneously (multi-device).
type Channel interface {
	// Deliver enqueues the event for transmission without blocking the caller.
	// It returns an error when the channel cannot take the event (queue full or
	// connection closed); the router treats such a channel as dead.
	Deliver(ev Event) error

	// Close releases the channel's send queue. Closing twice is safe.
	Close()
}
