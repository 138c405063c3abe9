package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// requireAccount resolves the authenticated principal to its full account
// record. Relationship transitions need the actor's username for notification
// snapshots, not just the token's ID.
func requireAccount(deps *AppDeps, r *http.Request) (user.User, *errs.CustomError) {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		return user.User{}, errs.NewError(errs.ErrUnauthorized)
	}

	account, err := deps.Users.GetByID(r.Context(), identity.ID)
	if err != nil {
		logx.Warn("authenticated principal has no account record", "user_id", identity.ID)
		return user.User{}, errs.NewError(errs.ErrUnauthorized)
	}

	return account, nil
}

// HandleListFriends returns the caller's committed friends.
func HandleListFriends(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		friends, err := deps.Users.Friends(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "failed to list friends", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"friends": friends})
	}
}

type FriendTargetInput struct {
	UserID string `json:"userId"`
}

// HandleSendFriendRequest initiates a friend request toward another user.
func HandleSendFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, customErr := requireAccount(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input FriendTargetInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		recipient, customErr := deps.Relations.SendRequest(r.Context(), account, input.UserID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"recipient": recipient})
	}
}

// HandleAcceptFriendRequest commits the friendship referenced by a
// friend-request notification addressed to the caller.
func HandleAcceptFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, customErr := requireAccount(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		notificationID := chi.URLParam(r, "notificationId")
		if notificationID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		friend, customErr := deps.Relations.AcceptByNotification(r.Context(), account, notificationID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"friend": friend})
	}
}

// HandleDeclineFriendRequest discards the friend request referenced by a
// notification addressed to the caller.
func HandleDeclineFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, customErr := requireAccount(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		notificationID := chi.URLParam(r, "notificationId")
		if notificationID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := deps.Relations.DeclineByNotification(r.Context(), account, notificationID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"declined": true})
	}
}

// HandleRemoveFriend dissolves the friendship with the given user.
func HandleRemoveFriend(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input FriendTargetInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.Relations.RemoveFriend(r.Context(), identity.ID, input.UserID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"removed": true})
	}
}

// HandleBlockUser adds the given user to the caller's block list.
func HandleBlockUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input FriendTargetInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.Relations.Block(r.Context(), identity.ID, input.UserID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"blocked": true})
	}
}
