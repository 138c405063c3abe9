package message

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"pairchat/internal/app/presence"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
)

// Directory is the slice of the identity directory the ledger needs: recipient
// resolution only.
type Directory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Pusher delivers best-effort real-time events; the presence router implements it.
type Pusher interface {
	Push(userID string, ev presence.Event)
}

// Service validates and appends messages, serves history and unread bookkeeping,
// and triggers delivery pushes. The durable write always commits before any push
// is attempted; a push failure never surfaces as the operation's result.
type Service struct {
	store  Store
	users  Directory
	router Pusher
	logger zerolog.Logger
}

// NewService constructs a message Service.
func NewService(store Store, users Directory, router Pusher) *Service {
	return &Service{
		store:  store,
		users:  users,
		router: router,
		logger: logx.Logger().With().Str("component", "MessageService").Logger(),
	}
}

// Append validates and durably appends a message, then echoes it to both
// participants' live channels (the sender echo keeps multi-device clients
// consistent). Returns the stored message.
func (s *Service) Append(ctx context.Context, from, to string, content string, msgType Type) (Message, *errs.CustomError) {
	if msgType == "" {
		msgType = TypeText
	}
	if !msgType.Valid() {
		return Message{}, errs.NewError(errs.ErrMessageTypeInvalid)
	}

	if strings.TrimSpace(content) == "" {
		return Message{}, errs.NewError(errs.ErrMessageEmpty)
	}
	if msgType == TypeText && len(content) > MaxContentBytes {
		return Message{}, errs.NewError(errs.ErrMessageContentTooLong)
	}

	if !randx.IsValidUserID(to) {
		return Message{}, errs.NewError(errs.ErrRecipientNotFound)
	}

	exists, err := s.users.Exists(ctx, to)
	if err != nil {
		s.logger.Error().Err(err).Str("to", to).Msg("Recipient lookup failed.")
		return Message{}, errs.NewError(errs.ErrStorageUnavailable)
	}
	if !exists {
		return Message{}, errs.NewError(errs.ErrRecipientNotFound)
	}

	stored, err := s.store.Insert(ctx, Message{
		ID:      randx.MessageID(),
		From:    from,
		To:      to,
		Content: content,
		Type:    msgType,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("from", from).Str("to", to).Msg("Message insert failed.")
		return Message{}, errs.NewError(errs.ErrStorageUnavailable)
	}

	ev := presence.Event{Name: presence.EventMessage, Payload: stored}
	s.router.Push(to, ev)
	if from != to {
		s.router.Push(from, ev)
	}

	return stored, nil
}

// History returns the full conversation between a and b, ascending by commit time.
func (s *Service) History(ctx context.Context, a, b string) ([]Message, *errs.CustomError) {
	messages, err := s.store.History(ctx, a, b)
	if err != nil {
		s.logger.Error().Err(err).Msg("History fetch failed.")
		return nil, errs.NewError(errs.ErrStorageUnavailable)
	}
	return messages, nil
}

// UnreadCounts returns the owner's unread message counts grouped by peer.
func (s *Service) UnreadCounts(ctx context.Context, owner string) (map[string]int, *errs.CustomError) {
	counts, err := s.store.UnreadCounts(ctx, owner)
	if err != nil {
		s.logger.Error().Err(err).Msg("Unread counts fetch failed.")
		return nil, errs.NewError(errs.ErrStorageUnavailable)
	}
	return counts, nil
}

// MarkRead marks every message from peer to owner as read. Idempotent.
func (s *Service) MarkRead(ctx context.Context, owner, peer string) *errs.CustomError {
	if err := s.store.MarkRead(ctx, owner, peer); err != nil {
		s.logger.Error().Err(err).Msg("Mark read failed.")
		return errs.NewError(errs.ErrStorageUnavailable)
	}
	return nil
}
