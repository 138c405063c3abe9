package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/app/db"
	"pairchat/internal/app/message"
	"pairchat/internal/app/storage"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// HandleGalleryUpload mints a pre-signed upload URL for a personal gallery
// image and records the entry. Only image types are accepted here; voice clips
// belong to chat attachments.
func HandleGalleryUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := message.ValidateFileSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := message.ValidateFileType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !strings.HasPrefix(strings.ToLower(input.MimeType), "image/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentInvalid))
			return
		}

		fileKey, err := storage.GalleryKey(identity.ID, input.FileName)
		if err != nil {
			logx.Error(err, "failed to build gallery key", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		url, err := deps.StorageService.PresignUpload(
			r.Context(),
			fileKey,
			input.MimeType,
			input.FileSize,
			message.PresignedURLDuration,
		)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		image, err := deps.Users.AddImage(r.Context(), identity.ID, fileKey, input.FileName)
		if err != nil {
			logx.Error(err, "failed to record gallery image", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
			"image":        image,
		})
	}
}

type galleryEntry struct {
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	CreatedAt string `json:"createdAt"`
	URL       string `json:"url"`
}

// HandleListGallery returns the caller's gallery, newest first, with a
// time-limited download URL per image.
func HandleListGallery(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		images, err := deps.Users.ListImages(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "failed to list gallery", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		entries := make([]galleryEntry, 0, len(images))
		for _, img := range images {
			url, err := deps.StorageService.PresignDownload(r.Context(), img.Key, message.PresignedURLDuration)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
				return
			}
			entries = append(entries, galleryEntry{
				ID:        img.ID,
				FileName:  img.FileName,
				CreatedAt: img.CreatedAt.Format(time.RFC3339),
				URL:       url,
			})
		}

		resp.RespondSuccess(w, r, map[string]any{"images": entries})
	}
}

// HandleDeleteGalleryImage removes a gallery entry and its stored object.
func HandleDeleteGalleryImage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		imageID := chi.URLParam(r, "imageId")
		if !randx.IsValidUserID(imageID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrImageNotFound))
			return
		}

		image, err := deps.Users.DeleteImage(r.Context(), identity.ID, imageID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrImageNotFound))
				return
			}
			logx.Error(err, "failed to delete gallery image", "user_id", identity.ID, "image_id", imageID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		if err := deps.StorageService.Delete(r.Context(), image.Key); err != nil {
			logx.Warn("failed to delete gallery object", "key", image.Key)
		}

		resp.RespondSuccess(w, r, map[string]any{"deleted": true})
	}
}
