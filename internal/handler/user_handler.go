package handler

import (
	"context"
	"net/http"
	"time"
	"unicode/utf8"

	"pairchat/internal/app/storage"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

const (
	maxBioLength = 300

	// peerListLimit caps the directory listing size.
	peerListLimit = 200
)

// HandleGetMe returns the authenticated user's own account record.
func HandleGetMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			logx.Warn("get_me: user not found", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": account})
	}
}

type UpdateProfileInput struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	AvatarKey string `json:"profileImage"`
}

// HandleUpdateProfile updates the caller's mutable profile fields.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		if utf8.RuneCountInString(input.Bio) > maxBioLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		// A caller may only point their avatar at an object under their own prefix.
		if input.AvatarKey != "" && !storage.OwnsKey(identity.ID, input.AvatarKey) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		oldAccount, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		account, err := deps.Users.UpdateProfile(r.Context(), identity.ID, input.Username, input.Bio, input.AvatarKey)
		if err != nil {
			logx.Error(err, "failed to update user profile", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		go deleteReplacedObject(deps.StorageService, oldAccount.AvatarKey, account.AvatarKey)

		resp.RespondSuccess(w, r, map[string]any{"user": account})
	}
}

// deleteReplacedObject removes the previous stored object after an update
// swapped it for a new one. Best effort: a leaked object only wastes space,
// so failures are logged and dropped.
func deleteReplacedObject(svc storage.Service, oldKey, newKey string) {
	if svc == nil || oldKey == "" || newKey == "" || oldKey == newKey {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := svc.Delete(ctx, oldKey); err != nil {
		logx.Warn("failed to delete replaced object", "key", oldKey)
	}
}

// HandleListUsers returns the public profiles of every other account, used by
// the client's peer discovery screen.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		profiles, err := deps.Users.ListPeers(r.Context(), identity.ID, peerListLimit)
		if err != nil {
			logx.Error(err, "failed to list users", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"users": profiles})
	}
}

// HandleGetNotificationSettings returns the caller's notification preferences,
// falling back to the defaults when none were ever saved.
func HandleGetNotificationSettings(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		settings, err := deps.Users.GetNotificationSettings(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "failed to load notification settings", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"settings": settings})
	}
}

// HandleUpdateNotificationSettings merges the provided fields over the caller's
// current preferences; omitted switches keep their value.
func HandleUpdateNotificationSettings(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var patch user.NotificationSettingsPatch
		if customErr := req.BindJSON(r, &patch); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		current, err := deps.Users.GetNotificationSettings(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "failed to load notification settings", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		merged := current.Apply(patch)
		if err := deps.Users.UpdateNotificationSettings(r.Context(), identity.ID, merged); err != nil {
			logx.Error(err, "failed to save notification settings", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"settings": merged})
	}
}

type ReportUserInput struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// HandleReportUser records a moderation report against another user.
func HandleReportUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input ReportUserInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.Relations.Report(r.Context(), identity.ID, input.UserID, input.Reason); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"reported": true})
	}
}
