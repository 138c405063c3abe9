package relation

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/notify"
	"pairchat/internal/app/presence"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/errs"
)

const (
	aliceID   = "11111111-1111-4111-8111-111111111111"
	bobID     = "22222222-2222-4222-8222-222222222222"
	carolID   = "33333333-3333-4333-8333-333333333333"
	unknownID = "99999999-9999-4999-8999-999999999999"
)

type pairKey struct{ sender, recipient string }

// fakeDirectory is an in-memory Directory covering the friendship, pending
// request and block edges.
type fakeDirectory struct {
	users    map[string]user.User
	friends  map[pairKey]bool
	requests map[pairKey]bool
	blocked  map[pairKey]bool
}

func newFakeDirectory(accounts ...user.User) *fakeDirectory {
	d := &fakeDirectory{
		users:    make(map[string]user.User),
		friends:  make(map[pairKey]bool),
		requests: make(map[pairKey]bool),
		blocked:  make(map[pairKey]bool),
	}
	for _, u := range accounts {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := d.users[id]
	if !ok {
		return user.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (d *fakeDirectory) Exists(_ context.Context, id string) (bool, error) {
	_, ok := d.users[id]
	return ok, nil
}

func (d *fakeDirectory) PairState(_ context.Context, a, b string) (user.PairState, error) {
	switch {
	case d.friends[pairKey{a, b}]:
		return user.PairFriends, nil
	case d.requests[pairKey{a, b}]:
		return user.PairPendingSent, nil
	case d.requests[pairKey{b, a}]:
		return user.PairPendingReceived, nil
	default:
		return user.PairNone, nil
	}
}

func (d *fakeDirectory) CreateRequest(_ context.Context, senderID, recipientID string) error {
	d.requests[pairKey{senderID, recipientID}] = true
	return nil
}

func (d *fakeDirectory) AcceptRequest(_ context.Context, senderID, recipientID string) error {
	key := pairKey{senderID, recipientID}
	if !d.requests[key] {
		return pgx.ErrNoRows
	}
	delete(d.requests, key)
	d.friends[pairKey{senderID, recipientID}] = true
	d.friends[pairKey{recipientID, senderID}] = true
	return nil
}

func (d *fakeDirectory) DeclineRequest(_ context.Context, senderID, recipientID string) error {
	key := pairKey{senderID, recipientID}
	if !d.requests[key] {
		return pgx.ErrNoRows
	}
	delete(d.requests, key)
	return nil
}

func (d *fakeDirectory) RemoveFriend(_ context.Context, a, b string) error {
	delete(d.friends, pairKey{a, b})
	delete(d.friends, pairKey{b, a})
	return nil
}

func (d *fakeDirectory) Block(_ context.Context, userID, targetID string) error {
	d.blocked[pairKey{userID, targetID}] = true
	return nil
}

// fakeNotes is an in-memory notification ledger.
type fakeNotes struct {
	seq   int
	notes map[string]notify.Notification
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{notes: make(map[string]notify.Notification)}
}

func (n *fakeNotes) Create(_ context.Context, recipientID, senderID string, noteType notify.Type, senderName string) (notify.Notification, error) {
	n.seq++
	// Fixed-format UUIDs so service-side identifier validation passes.
	id := fmt.Sprintf("aaaaaaaa-aaaa-4aaa-8aaa-%012d", n.seq)
	note := notify.Notification{
		ID:         id,
		Recipient:  recipientID,
		Sender:     senderID,
		Type:       noteType,
		SenderName: senderName,
	}
	n.notes[id] = note
	return note, nil
}

func (n *fakeNotes) GetByID(_ context.Context, id string) (notify.Notification, error) {
	note, ok := n.notes[id]
	if !ok {
		return notify.Notification{}, pgx.ErrNoRows
	}
	return note, nil
}

func (n *fakeNotes) MarkRead(_ context.Context, id string) error {
	note, ok := n.notes[id]
	if !ok {
		return pgx.ErrNoRows
	}
	note.Read = true
	n.notes[id] = note
	return nil
}

// byRecipient returns the recipient's notifications of the given type.
func (n *fakeNotes) byRecipient(recipientID string, noteType notify.Type) []notify.Notification {
	var out []notify.Notification
	for _, note := range n.notes {
		if note.Recipient == recipientID && note.Type == noteType {
			out = append(out, note)
		}
	}
	return out
}

type pushedEvent struct {
	userID string
	event  presence.Event
}

type fakePusher struct {
	pushed []pushedEvent
}

func (p *fakePusher) Push(userID string, ev presence.Event) {
	p.pushed = append(p.pushed, pushedEvent{userID: userID, event: ev})
}

func (p *fakePusher) eventsFor(userID string) []presence.Event {
	var out []presence.Event
	for _, e := range p.pushed {
		if e.userID == userID {
			out = append(out, e.event)
		}
	}
	return out
}

func testAccounts() (user.User, user.User, user.User) {
	alice := user.User{ID: aliceID, Username: "alice"}
	bob := user.User{ID: bobID, Username: "bob"}
	carol := user.User{ID: carolID, Username: "carol"}
	return alice, bob, carol
}

func newTestService() (*Service, *fakeDirectory, *fakeNotes, *fakePusher, user.User, user.User, user.User) {
	alice, bob, carol := testAccounts()
	dir := newFakeDirectory(alice, bob, carol)
	notes := newFakeNotes()
	pusher := &fakePusher{}
	return NewService(dir, notes, pusher), dir, notes, pusher, alice, bob, carol
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("records pending request, notification and push", func(t *testing.T) {
		svc, dir, notes, pusher, alice, bob, _ := newTestService()

		profile, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)
		assert.Equal(t, bob.ID, profile.ID)

		assert.True(t, dir.requests[pairKey{alice.ID, bob.ID}])

		created := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, created, 1)
		assert.Equal(t, alice.ID, created[0].Sender)
		assert.Equal(t, "alice", created[0].SenderName)
		assert.False(t, created[0].Read)

		events := pusher.eventsFor(bob.ID)
		require.Len(t, events, 1)
		assert.Equal(t, presence.EventFriendRequest, events[0].Name)
	})

	t.Run("rejects self target", func(t *testing.T) {
		svc, _, _, _, alice, _, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, alice.ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrSelfTarget, customErr.Code)
	})

	t.Run("rejects unknown target", func(t *testing.T) {
		svc, _, _, _, alice, _, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, unknownID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrUserNotFound, customErr.Code)
	})

	t.Run("rejects malformed target identifier", func(t *testing.T) {
		svc, _, _, _, alice, _, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, "not-a-uuid")
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrUserNotFound, customErr.Code)
	})

	t.Run("rejects existing friends", func(t *testing.T) {
		svc, dir, _, _, alice, bob, _ := newTestService()
		dir.friends[pairKey{alice.ID, bob.ID}] = true
		dir.friends[pairKey{bob.ID, alice.ID}] = true

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrAlreadyFriends, customErr.Code)
	})

	t.Run("duplicate send is rejected, not merged", func(t *testing.T) {
		svc, _, notes, _, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		_, customErr = svc.SendRequest(ctx, alice, bob.ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrRequestAlreadySent, customErr.Code)

		// No second notification either.
		assert.Len(t, notes.byRecipient(bob.ID, notify.TypeFriendRequest), 1)
	})

	t.Run("cross-pending send conflicts toward accept", func(t *testing.T) {
		svc, _, _, _, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		_, customErr = svc.SendRequest(ctx, bob, alice.ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrRequestAlreadyReceived, customErr.Code)
	})
}

func TestAcceptByNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("commits mutual friendship and notifies the requester", func(t *testing.T) {
		svc, dir, notes, pusher, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, pending, 1)

		pusher.pushed = nil

		friend, customErr := svc.AcceptByNotification(ctx, bob, pending[0].ID)
		require.Nil(t, customErr)
		assert.Equal(t, alice.ID, friend.ID)

		// Both edges exist, request is gone.
		assert.True(t, dir.friends[pairKey{alice.ID, bob.ID}])
		assert.True(t, dir.friends[pairKey{bob.ID, alice.ID}])
		assert.False(t, dir.requests[pairKey{alice.ID, bob.ID}])

		// Source notification flipped to read.
		source, err := notes.GetByID(ctx, pending[0].ID)
		require.NoError(t, err)
		assert.True(t, source.Read)

		// Exactly one friendAccepted notification for the original requester.
		accepted := notes.byRecipient(alice.ID, notify.TypeFriendAccepted)
		require.Len(t, accepted, 1)
		assert.Equal(t, bob.ID, accepted[0].Sender)

		// Requester hears friend:update accepted plus notification:new; the
		// acting user hears friend:update added.
		aliceEvents := pusher.eventsFor(alice.ID)
		require.Len(t, aliceEvents, 2)
		assert.Equal(t, presence.EventFriendUpdate, aliceEvents[0].Name)
		update, ok := aliceEvents[0].Payload.(FriendUpdatePayload)
		require.True(t, ok)
		assert.Equal(t, "accepted", update.Type)
		assert.Equal(t, bob.ID, update.Friend.ID)
		assert.Equal(t, presence.EventNotification, aliceEvents[1].Name)

		bobEvents := pusher.eventsFor(bob.ID)
		require.Len(t, bobEvents, 1)
		update, ok = bobEvents[0].Payload.(FriendUpdatePayload)
		require.True(t, ok)
		assert.Equal(t, "added", update.Type)
		assert.Equal(t, alice.ID, update.Friend.ID)
	})

	t.Run("unknown notification", func(t *testing.T) {
		svc, _, _, _, _, bob, _ := newTestService()

		_, customErr := svc.AcceptByNotification(ctx, bob, unknownID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrNotificationNotFound, customErr.Code)
	})

	t.Run("notification addressed to someone else", func(t *testing.T) {
		svc, _, notes, _, alice, bob, carol := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, pending, 1)

		_, customErr = svc.AcceptByNotification(ctx, carol, pending[0].ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrNotificationForbidden, customErr.Code)
	})

	t.Run("notification of a different type", func(t *testing.T) {
		svc, _, notes, _, alice, bob, _ := newTestService()

		note, err := notes.Create(ctx, bob.ID, alice.ID, notify.TypeFriendAccepted, alice.Username)
		require.NoError(t, err)

		_, customErr := svc.AcceptByNotification(ctx, bob, note.ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrNotificationInvalidState, customErr.Code)
	})

	t.Run("request already resolved", func(t *testing.T) {
		svc, dir, notes, _, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, pending, 1)

		// The pending edge disappears out from under the notification.
		delete(dir.requests, pairKey{alice.ID, bob.ID})

		_, customErr = svc.AcceptByNotification(ctx, bob, pending[0].ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrRequestNotFound, customErr.Code)
	})

	t.Run("accept is not repeatable", func(t *testing.T) {
		svc, _, notes, _, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, pending, 1)

		_, customErr = svc.AcceptByNotification(ctx, bob, pending[0].ID)
		require.Nil(t, customErr)

		_, customErr = svc.AcceptByNotification(ctx, bob, pending[0].ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrRequestNotFound, customErr.Code)

		// Still exactly one friendAccepted notification.
		assert.Len(t, notes.byRecipient(alice.ID, notify.TypeFriendAccepted), 1)
	})
}

func TestDeclineByNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the request silently", func(t *testing.T) {
		svc, dir, notes, pusher, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, pending, 1)

		pusher.pushed = nil

		customErr = svc.DeclineByNotification(ctx, bob, pending[0].ID)
		require.Nil(t, customErr)

		assert.False(t, dir.requests[pairKey{alice.ID, bob.ID}])
		assert.False(t, dir.friends[pairKey{alice.ID, bob.ID}])

		source, err := notes.GetByID(ctx, pending[0].ID)
		require.NoError(t, err)
		assert.True(t, source.Read)

		// The requester never hears back.
		assert.Empty(t, pusher.eventsFor(alice.ID))
		assert.Empty(t, notes.byRecipient(alice.ID, notify.TypeFriendAccepted))
	})

	t.Run("decline after resolve reports request gone", func(t *testing.T) {
		svc, dir, notes, _, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, pending, 1)

		delete(dir.requests, pairKey{alice.ID, bob.ID})

		customErr = svc.DeclineByNotification(ctx, bob, pending[0].ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrRequestNotFound, customErr.Code)
	})

	t.Run("declined pair can start over", func(t *testing.T) {
		svc, _, notes, _, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, pending, 1)

		require.Nil(t, svc.DeclineByNotification(ctx, bob, pending[0].ID))

		// Either side may initiate again.
		_, customErr = svc.SendRequest(ctx, bob, alice.ID)
		require.Nil(t, customErr)
	})
}

func TestRemoveFriend(t *testing.T) {
	ctx := context.Background()

	svc, dir, notes, _, alice, bob, _ := newTestService()

	_, customErr := svc.SendRequest(ctx, alice, bob.ID)
	require.Nil(t, customErr)
	pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
	require.Len(t, pending, 1)
	_, customErr = svc.AcceptByNotification(ctx, bob, pending[0].ID)
	require.Nil(t, customErr)

	require.Nil(t, svc.RemoveFriend(ctx, alice.ID, bob.ID))
	assert.False(t, dir.friends[pairKey{alice.ID, bob.ID}])
	assert.False(t, dir.friends[pairKey{bob.ID, alice.ID}])

	// Removing again is a no-op, not an error.
	require.Nil(t, svc.RemoveFriend(ctx, alice.ID, bob.ID))
}

func TestBlock(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects self target", func(t *testing.T) {
		svc, _, _, _, alice, _, _ := newTestService()

		customErr := svc.Block(ctx, alice.ID, alice.ID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrSelfTarget, customErr.Code)
	})

	t.Run("block leaves pending requests untouched", func(t *testing.T) {
		svc, dir, _, _, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)

		require.Nil(t, svc.Block(ctx, bob.ID, alice.ID))

		assert.True(t, dir.blocked[pairKey{bob.ID, alice.ID}])
		assert.True(t, dir.requests[pairKey{alice.ID, bob.ID}], "blocking must not cancel the pending request")
	})

	t.Run("block leaves friendships untouched", func(t *testing.T) {
		svc, dir, notes, _, alice, bob, _ := newTestService()

		_, customErr := svc.SendRequest(ctx, alice, bob.ID)
		require.Nil(t, customErr)
		pending := notes.byRecipient(bob.ID, notify.TypeFriendRequest)
		require.Len(t, pending, 1)
		_, customErr = svc.AcceptByNotification(ctx, bob, pending[0].ID)
		require.Nil(t, customErr)

		require.Nil(t, svc.Block(ctx, alice.ID, bob.ID))
		assert.True(t, dir.friends[pairKey{alice.ID, bob.ID}])
	})
}

func TestReport(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _, alice, bob, _ := newTestService()

	require.Nil(t, svc.Report(ctx, alice.ID, bob.ID, "spam"))

	customErr := svc.Report(ctx, alice.ID, alice.ID, "spam")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrSelfTarget, customErr.Code)

	customErr = svc.Report(ctx, alice.ID, unknownID, "spam")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrUserNotFound, customErr.Code)
}
