package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/app/message"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// HandleListPeers returns the public profiles of every account the caller can
// start a conversation with.
func HandleListPeers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		peers, err := deps.Users.ListPeers(r.Context(), identity.ID, peerListLimit)
		if err != nil {
			logx.Error(err, "failed to list chat peers", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"peers": peers})
	}
}

// HandleChatHistory returns the full conversation between the caller and the
// peer, oldest first.
func HandleChatHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		peerID := chi.URLParam(r, "peerId")
		if !randx.IsValidUserID(peerID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		history, customErr := deps.Messages.History(r.Context(), identity.ID, peerID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"messages": history})
	}
}

type SendMessageInput struct {
	To      string       `json:"to"`
	Content string       `json:"content"`
	Type    message.Type `json:"type"`

	// Latitude and Longitude are only consulted for location messages; the
	// stored content becomes a maps link derived from them.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HandleSendMessage appends a message over REST. The durable write happens
// before any real-time push, so a crash between the two leaves the message
// fetchable rather than lost.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		content := input.Content
		if input.Type == message.TypeLocation {
			if input.Latitude == nil || input.Longitude == nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			content = message.LocationContent(*input.Latitude, *input.Longitude)
		}

		msg, customErr := deps.Messages.Append(r.Context(), identity.ID, input.To, content, input.Type)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"message": msg})
	}
}

// HandleUnreadCounts returns the caller's unread message counts grouped by sender.
func HandleUnreadCounts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		counts, customErr := deps.Messages.UnreadCounts(r.Context(), identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"unreadCounts": counts})
	}
}

// HandleMarkRead marks every message from the peer to the caller as read.
func HandleMarkRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		peerID := chi.URLParam(r, "peerId")
		if !randx.IsValidUserID(peerID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := deps.Messages.MarkRead(r.Context(), identity.ID, peerID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"marked": true})
	}
}
