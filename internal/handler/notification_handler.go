package handler

import (
	"net/http"

	"pairchat/internal/app/notify"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/resp"
)

// HandleListNotifications returns the caller's most recent notifications.
func HandleListNotifications(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		notes, err := deps.Notifications.ListRecent(r.Context(), identity.ID, notify.DefaultListLimit)
		if err != nil {
			logx.Error(err, "failed to list notifications", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"notifications": notes})
	}
}

// HandleClearNotifications deletes all of the caller's notifications.
func HandleClearNotifications(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if err := deps.Notifications.ClearAll(r.Context(), identity.ID); err != nil {
			logx.Error(err, "failed to clear notifications", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"cleared": true})
	}
}

// HandleMarkNotificationsRead flips every unread notification of the caller to
// read. Already-read entries are untouched, so repeating the call is harmless.
func HandleMarkNotificationsRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if err := deps.Notifications.MarkAllRead(r.Context(), identity.ID); err != nil {
			logx.Error(err, "failed to mark notifications read", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"marked": true})
	}
}
