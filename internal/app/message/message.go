/*
Package message implements the durable per-conversation-pair message ledger and
its delivery side effects.

A conversation between two users is the set of all messages whose {from,to} pair
matches in either order, ordered by commit time. Records are immutable once
appended except for the read flag.
*/
package message

import (
	"fmt"
	"time"
)

// Type enumerates the supported message kinds.
type Type string

const (
	TypeText     Type = "text"
	TypeImage    Type = "image"
	TypeVoice    Type = "voice"
	TypeLocation Type = "location"
)

// Valid reports whether t is a known message type.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeVoice, TypeLocation:
		return true
	default:
		return false
	}
}

// MaxContentBytes caps text message content length.
const MaxContentBytes = 5000

// Message is one entry in the conversation ledger. Content is either text, a
// blob-store key (image/voice), or a maps URL (location).
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
	Type      Type      `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// LocationContent builds the canonical content string for a location message.
func LocationContent(latitude, longitude float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", latitude, longitude)
}
