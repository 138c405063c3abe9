/*
Package relation implements the friend-request state machine.

Each transition on a pair (A, B) runs under that pair's serialization lock:
the authoritative pair state is read, checked against the transition's
precondition, and the graph mutation committed as a single store transaction.
Notifications and real-time pushes are side effects applied after the durable
commit; they are best-effort and never gate the transition's outcome.
*/
package relation

import (
	"context"

	"github.com/rs/zerolog"

	"pairchat/internal/app/db"
	"pairchat/internal/app/notify"
	"pairchat/internal/app/presence"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
)

// Directory is the relationship-store surface the state machine drives. The
// user.Store implements it; tests substitute an in-memory fake.
type Directory interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	PairState(ctx context.Context, a, b string) (user.PairState, error)
	CreateRequest(ctx context.Context, senderID, recipientID string) error
	AcceptRequest(ctx context.Context, senderID, recipientID string) error
	DeclineRequest(ctx context.Context, senderID, recipientID string) error
	RemoveFriend(ctx context.Context, a, b string) error
	Block(ctx context.Context, userID, targetID string) error
}

// Notifications is the ledger surface the state machine appends to.
type Notifications interface {
	Create(ctx context.Context, recipientID, senderID string, noteType notify.Type, senderName string) (notify.Notification, error)
	GetByID(ctx context.Context, id string) (notify.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Pusher delivers best-effort real-time events; the presence router implements it.
type Pusher interface {
	Push(userID string, ev presence.Event)
}

// FriendUpdatePayload is the body of a friend:update push.
type FriendUpdatePayload struct {
	Type   string       `json:"type"`
	Friend user.Profile `json:"friend"`
}

// FriendRequestPayload is the body of a friend:request push.
type FriendRequestPayload struct {
	From     string       `json:"from"`
	FromUser user.Profile `json:"fromUser"`
}

// NotificationPayload is the body of a notification:new push.
type NotificationPayload struct {
	Type notify.Type `json:"type"`
	From string      `json:"from"`
}

// Service orchestrates relationship transitions.
type Service struct {
	users  Directory
	notes  Notifications
	router Pusher
	locks  pairLocks
	logger zerolog.Logger
}

// NewService constructs the state machine over its collaborators.
func NewService(users Directory, notes Notifications, router Pusher) *Service {
	return &Service{
		users:  users,
		notes:  notes,
		router: router,
		logger: logx.Logger().With().Str("component", "RelationService").Logger(),
	}
}

// SendRequest records a pending friend request from the actor to toID.
//
// Precondition (checked under the pair lock): no friendship and no pending
// request in either direction. A pending request in the reverse direction is a
// distinct conflict so the caller can be told to accept instead; a cross-pending
// deadlock is never allowed. Duplicate sends are rejected, not merged.
func (s *Service) SendRequest(ctx context.Context, actor user.User, toID string) (user.Profile, *errs.CustomError) {
	if toID == actor.ID {
		return user.Profile{}, errs.NewError(errs.ErrSelfTarget)
	}
	if !randx.IsValidUserID(toID) {
		return user.Profile{}, errs.NewError(errs.ErrUserNotFound)
	}

	unlock := s.locks.Lock(actor.ID, toID)
	defer unlock()

	target, err := s.users.GetByID(ctx, toID)
	if err != nil {
		if db.IsNotFound(err) {
			return user.Profile{}, errs.NewError(errs.ErrUserNotFound)
		}
		s.logger.Error().Err(err).Str("to", toID).Msg("Target lookup failed.")
		return user.Profile{}, errs.NewError(errs.ErrStorageUnavailable)
	}

	state, err := s.users.PairState(ctx, actor.ID, toID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Pair state lookup failed.")
		return user.Profile{}, errs.NewError(errs.ErrStorageUnavailable)
	}

	switch state {
	case user.PairFriends:
		return user.Profile{}, errs.NewError(errs.ErrAlreadyFriends)
	case user.PairPendingSent:
		return user.Profile{}, errs.NewError(errs.ErrRequestAlreadySent)
	case user.PairPendingReceived:
		return user.Profile{}, errs.NewError(errs.ErrRequestAlreadyReceived)
	}

	if err := s.users.CreateRequest(ctx, actor.ID, toID); err != nil {
		if db.IsUniqueViolation(err) {
			return user.Profile{}, errs.NewError(errs.ErrRequestAlreadySent)
		}
		s.logger.Error().Err(err).Msg("Request insert failed.")
		return user.Profile{}, errs.NewError(errs.ErrStorageUnavailable)
	}

	if _, err := s.notes.Create(ctx, toID, actor.ID, notify.TypeFriendRequest, actor.Username); err != nil {
		// The pending edge is durable; only the alert is missing. Flag it rather
		// than unwinding a committed transition.
		s.logger.Error().Err(err).
			Str("sender", actor.ID).
			Str("recipient", toID).
			Msg("Notification append failed after request commit; needs reconciliation.")
	}

	s.router.Push(toID, presence.Event{
		Name: presence.EventFriendRequest,
		Payload: FriendRequestPayload{
			From:     actor.ID,
			FromUser: actor.Profile(),
		},
	})

	return target.Profile(), nil
}

// resolveFriendRequestNote loads the notification and verifies it is an
// actionable friend request addressed to the actor.
func (s *Service) resolveFriendRequestNote(ctx context.Context, actor user.User, notificationID string) (notify.Notification, user.User, *errs.CustomError) {
	if !randx.IsValidUserID(notificationID) {
		return notify.Notification{}, user.User{}, errs.NewError(errs.ErrNotificationNotFound)
	}

	note, err := s.notes.GetByID(ctx, notificationID)
	if err != nil {
		if db.IsNotFound(err) {
			return notify.Notification{}, user.User{}, errs.NewError(errs.ErrNotificationNotFound)
		}
		s.logger.Error().Err(err).Msg("Notification lookup failed.")
		return notify.Notification{}, user.User{}, errs.NewError(errs.ErrStorageUnavailable)
	}

	if note.Recipient != actor.ID {
		return notify.Notification{}, user.User{}, errs.NewError(errs.ErrNotificationForbidden)
	}
	if note.Type != notify.TypeFriendRequest || note.Sender == "" {
		return notify.Notification{}, user.User{}, errs.NewError(errs.ErrNotificationInvalidState)
	}

	sender, err := s.users.GetByID(ctx, note.Sender)
	if err != nil {
		if db.IsNotFound(err) {
			return notify.Notification{}, user.User{}, errs.NewError(errs.ErrUserNotFound)
		}
		s.logger.Error().Err(err).Msg("Request sender lookup failed.")
		return notify.Notification{}, user.User{}, errs.NewError(errs.ErrStorageUnavailable)
	}

	return note, sender, nil
}

// AcceptByNotification commits the mutual friendship for the request referenced
// by the notification, marks that notification read, appends one friendAccepted
// notification for the original requester, and pushes graph updates to both users.
func (s *Service) AcceptByNotification(ctx context.Context, actor user.User, notificationID string) (user.Profile, *errs.CustomError) {
	note, sender, customErr := s.resolveFriendRequestNote(ctx, actor, notificationID)
	if customErr != nil {
		return user.Profile{}, customErr
	}

	unlock := s.locks.Lock(actor.ID, sender.ID)
	defer unlock()

	if err := s.users.AcceptRequest(ctx, sender.ID, actor.ID); err != nil {
		if db.IsNotFound(err) {
			return user.Profile{}, errs.NewError(errs.ErrRequestNotFound)
		}
		s.logger.Error().Err(err).Msg("Accept commit failed.")
		return user.Profile{}, errs.NewError(errs.ErrStorageUnavailable)
	}

	if err := s.notes.MarkRead(ctx, note.ID); err != nil {
		s.logger.Error().Err(err).Str("notification_id", note.ID).Msg("Failed to mark source notification read.")
	}

	if _, err := s.notes.Create(ctx, sender.ID, actor.ID, notify.TypeFriendAccepted, actor.Username); err != nil {
		s.logger.Error().Err(err).
			Str("recipient", sender.ID).
			Msg("Notification append failed after accept commit; needs reconciliation.")
	}

	s.router.Push(sender.ID, presence.Event{
		Name:    presence.EventFriendUpdate,
		Payload: FriendUpdatePayload{Type: "accepted", Friend: actor.Profile()},
	})
	s.router.Push(actor.ID, presence.Event{
		Name:    presence.EventFriendUpdate,
		Payload: FriendUpdatePayload{Type: "added", Friend: sender.Profile()},
	})
	s.router.Push(sender.ID, presence.Event{
		Name:    presence.EventNotification,
		Payload: NotificationPayload{Type: notify.TypeFriendAccepted, From: actor.Username},
	})

	return sender.Profile(), nil
}

// DeclineByNotification removes the pending request referenced by the
// notification and marks it read. No new notification is created and nothing
// is pushed; the requester simply never hears back.
func (s *Service) DeclineByNotification(ctx context.Context, actor user.User, notificationID string) *errs.CustomError {
	note, sender, customErr := s.resolveFriendRequestNote(ctx, actor, notificationID)
	if customErr != nil {
		return customErr
	}

	unlock := s.locks.Lock(actor.ID, sender.ID)
	defer unlock()

	if err := s.users.DeclineRequest(ctx, sender.ID, actor.ID); err != nil {
		if db.IsNotFound(err) {
			return errs.NewError(errs.ErrRequestNotFound)
		}
		s.logger.Error().Err(err).Msg("Decline commit failed.")
		return errs.NewError(errs.ErrStorageUnavailable)
	}

	if err := s.notes.MarkRead(ctx, note.ID); err != nil {
		s.logger.Error().Err(err).Str("notification_id", note.ID).Msg("Failed to mark source notification read.")
	}

	return nil
}

// RemoveFriend deletes the friendship in both directions. The operation is
// idempotent: removing an absent friendship succeeds.
func (s *Service) RemoveFriend(ctx context.Context, actorID, friendID string) *errs.CustomError {
	if !randx.IsValidUserID(friendID) {
		return errs.NewError(errs.ErrInvalidParams)
	}

	unlock := s.locks.Lock(actorID, friendID)
	defer unlock()

	if err := s.users.RemoveFriend(ctx, actorID, friendID); err != nil {
		s.logger.Error().Err(err).Msg("Friend removal failed.")
		return errs.NewError(errs.ErrStorageUnavailable)
	}
	return nil
}

// Block adds target to the actor's block list. Blocking is orthogonal to
// friendship and pending requests: it cancels neither.
func (s *Service) Block(ctx context.Context, actorID, targetID string) *errs.CustomError {
	if targetID == actorID {
		return errs.NewError(errs.ErrSelfTarget)
	}
	if !randx.IsValidUserID(targetID) {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if err := s.users.Block(ctx, actorID, targetID); err != nil {
		s.logger.Error().Err(err).Msg("Block insert failed.")
		return errs.NewError(errs.ErrStorageUnavailable)
	}
	return nil
}

// Report records a user report for moderation follow-up. The report is
// acknowledged once the target is validated; handling happens out of band.
func (s *Service) Report(ctx context.Context, actorID, targetID, reason string) *errs.CustomError {
	if targetID == actorID {
		return errs.NewError(errs.ErrSelfTarget)
	}
	if !randx.IsValidUserID(targetID) {
		return errs.NewError(errs.ErrUserNotFound)
	}

	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Report target lookup failed.")
		return errs.NewError(errs.ErrStorageUnavailable)
	}
	if !exists {
		return errs.NewError(errs.ErrUserNotFound)
	}

	s.logger.Warn().
		Str("reporter_id", actorID).
		Str("target_id", targetID).
		Str("reason", reason).
		Msg("User report received.")
	return nil
}
