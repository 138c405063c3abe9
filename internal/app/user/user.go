/*
Package user contains the identity directory and the durable relationship store.

It owns the users table plus the friendship, pending-request and block edge tables,
and is the only component allowed to mutate the friend graph. Every graph transition
is committed as a single transaction touching both participants' edges, so a reader
never observes a half-applied friendship.
*/
package user

import "time"

// User is the full account record.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio"`
	AvatarKey    string    `json:"profileImage"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the minimal projection handed to other users (peer lists, friend
// lists, push payloads).
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"profileImage,omitempty"`
}

// Profile returns the public projection of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.AvatarKey,
	}
}

// PairState describes the relationship between an ordered pair of users (A, B).
// Blocking is tracked separately: it is orthogonal to friendship and pending state.
type PairState int

const (
	// PairNone means no friendship and no pending request in either direction.
	PairNone PairState = iota

	// PairPendingSent means A has sent B a request that is still pending.
	PairPendingSent

	// PairPendingReceived means B has sent A a request that is still pending.
	PairPendingReceived

	// PairFriends means a committed, symmetric friendship exists.
	PairFriends
)

func (s PairState) String() string {
	switch s {
	case PairNone:
		return "none"
	case PairPendingSent:
		return "pending_sent"
	case PairPendingReceived:
		return "pending_received"
	case PairFriends:
		return "friends"
	default:
		return "unknown"
	}
}
