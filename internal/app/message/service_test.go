package message

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/presence"
	"pairchat/internal/pkg/errs"
)

const (
	senderID  = "11111111-1111-4111-8111-111111111111"
	peerID    = "22222222-2222-4222-8222-222222222222"
	unknownID = "99999999-9999-4999-8999-999999999999"
)

// fakeStore is an in-memory message ledger. Insert order stands in for commit time.
type fakeStore struct {
	messages []Message
	failWith error
}

func (s *fakeStore) Insert(_ context.Context, m Message) (Message, error) {
	if s.failWith != nil {
		return Message{}, s.failWith
	}
	m.CreatedAt = time.Now()
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *fakeStore) History(_ context.Context, a, b string) ([]Message, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []Message
	for _, m := range s.messages {
		if (m.From == a && m.To == b) || (m.From == b && m.To == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) UnreadCounts(_ context.Context, owner string) (map[string]int, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	counts := make(map[string]int)
	for _, m := range s.messages {
		if m.To == owner && !m.Read {
			counts[m.From]++
		}
	}
	return counts, nil
}

func (s *fakeStore) MarkRead(_ context.Context, owner, peer string) error {
	if s.failWith != nil {
		return s.failWith
	}
	for i, m := range s.messages {
		if m.To == owner && m.From == peer {
			s.messages[i].Read = true
		}
	}
	return nil
}

type fakeDirectory struct {
	known map[string]bool
}

func (d *fakeDirectory) Exists(_ context.Context, id string) (bool, error) {
	return d.known[id], nil
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

func newTestService() (*Service, *fakeStore, *fakePusher) {
	store := &fakeStore{}
	dir := &fakeDirectory{known: map[string]bool{senderID: true, peerID: true}}
	pusher := &fakePusher{}
	return NewService(store, dir, pusher), store, pusher
}

func TestAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("durably stores then pushes to both participants", func(t *testing.T) {
		svc, store, pusher := newTestService()

		msg, customErr := svc.Append(ctx, senderID, peerID, "hello", "")
		require.Nil(t, customErr)

		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, TypeText, msg.Type, "missing type defaults to text")
		assert.False(t, msg.Read)
		require.Len(t, store.messages, 1)

		// Recipient first, then the sender echo.
		require.Len(t, pusher.pushed, 2)
		assert.Equal(t, peerID, pusher.pushed[0].userID)
		assert.Equal(t, senderID, pusher.pushed[1].userID)
		for _, e := range pusher.pushed {
			assert.Equal(t, presence.EventMessage, e.event.Name)
			assert.Equal(t, msg, e.event.Payload)
		}
	})

	t.Run("self conversation pushes once", func(t *testing.T) {
		svc, _, pusher := newTestService()

		_, customErr := svc.Append(ctx, senderID, senderID, "note to self", TypeText)
		require.Nil(t, customErr)
		assert.Len(t, pusher.pushed, 1)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, store, pusher := newTestService()

		tests := []struct {
			name     string
			to       string
			content  string
			msgType  Type
			wantCode int
		}{
			{"empty content", peerID, "", TypeText, errs.ErrMessageEmpty},
			{"whitespace-only content", peerID, "   \n\t", TypeText, errs.ErrMessageEmpty},
			{"content too long", peerID, strings.Repeat("a", MaxContentBytes+1), TypeText, errs.ErrMessageContentTooLong},
			{"unknown type", peerID, "hi", Type("video"), errs.ErrMessageTypeInvalid},
			{"unknown recipient", unknownID, "hi", TypeText, errs.ErrRecipientNotFound},
			{"malformed recipient id", "not-a-uuid", "hi", TypeText, errs.ErrRecipientNotFound},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, customErr := svc.Append(ctx, senderID, tt.to, tt.content, tt.msgType)
				require.NotNil(t, customErr)
				assert.Equal(t, tt.wantCode, customErr.Code)
			})
		}

		// Nothing stored, nothing pushed.
		assert.Empty(t, store.messages)
		assert.Empty(t, pusher.pushed)
	})

	t.Run("length cap applies to text only", func(t *testing.T) {
		svc, _, _ := newTestService()

		long := strings.Repeat("k", MaxContentBytes+1)
		_, customErr := svc.Append(ctx, senderID, peerID, long, TypeImage)
		require.Nil(t, customErr)
	})

	t.Run("push failure never surfaces: store error does", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.failWith = errors.New("connection reset")

		_, customErr := svc.Append(ctx, senderID, peerID, "hello", TypeText)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrStorageUnavailable, customErr.Code)
	})
}

func TestHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	for _, content := range []string{"one", "two", "three"} {
		_, customErr := svc.Append(ctx, senderID, peerID, content, TypeText)
		require.Nil(t, customErr)
	}
	_, customErr := svc.Append(ctx, peerID, senderID, "four", TypeText)
	require.Nil(t, customErr)

	history, customErr := svc.History(ctx, senderID, peerID)
	require.Nil(t, customErr)
	require.Len(t, history, 4)

	contents := make([]string, 0, len(history))
	for _, m := range history {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"one", "two", "three", "four"}, contents)
}

func TestUnreadCountsAndMarkRead(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	for i := 0; i < 3; i++ {
		_, customErr := svc.Append(ctx, peerID, senderID, "ping", TypeText)
		require.Nil(t, customErr)
	}

	counts, customErr := svc.UnreadCounts(ctx, senderID)
	require.Nil(t, customErr)
	assert.Equal(t, map[string]int{peerID: 3}, counts)

	// The sender has no unread messages of their own.
	counts, customErr = svc.UnreadCounts(ctx, peerID)
	require.Nil(t, customErr)
	assert.Empty(t, counts)

	require.Nil(t, svc.MarkRead(ctx, senderID, peerID))

	counts, customErr = svc.UnreadCounts(ctx, senderID)
	require.Nil(t, customErr)
	assert.Empty(t, counts)

	// Marking an already-read conversation is a no-op.
	require.Nil(t, svc.MarkRead(ctx, senderID, peerID))
}

func TestLocationContent(t *testing.T) {
	assert.Equal(t,
		"https://www.google.com/maps?q=48.8584,2.2945",
		LocationContent(48.8584, 2.2945))
}
