/*
Package notify implements the append-only notification ledger.

Notifications are created by the friend-request state machine as the durable
record of relationship transitions; the only permitted mutation afterwards is
flipping the read flag.
*/
package notify

import "time"

// Type enumerates the notification kinds surfaced to users.
type Type string

const (
	TypeFriendRequest  Type = "friendRequest"
	TypeFriendAccepted Type = "friendAccepted"
	TypeMessage        Type = "message"
	TypeSystem         Type = "system"
)

// Notification is one entry in a recipient's ledger. Sender is empty for system
// notices; SenderName is a denormalized snapshot taken at creation time, not a
// live reference.
type Notification struct {
	ID         string    `json:"id"`
	Recipient  string    `json:"recipient"`
	Sender     string    `json:"sender,omitempty"`
	Type       Type      `json:"type"`
	SenderName string    `json:"senderName,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DefaultListLimit caps how many recent notifications a list fetch returns.
const DefaultListLimit = 20
