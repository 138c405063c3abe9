package message

import (
	"path/filepath"
	"strings"
	"time"

	"pairchat/internal/pkg/errs"
)

const (
	// MaxAttachmentSizeMB is the maximum allowed file size in megabytes.
	MaxAttachmentSizeMB = 5

	// MaxAttachmentSize is the maximum allowed file size in bytes.
	MaxAttachmentSize = MaxAttachmentSizeMB * 1024 * 1024

	// PresignedURLDuration is the fixed duration for which a presigned upload or
	// download URL stays valid.
	PresignedURLDuration = 5 * time.Minute
)

// AllowedMIMETypes defines the set of permitted MIME types for message attachments:
// images for image messages, audio for voice messages.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"audio/mpeg": {},
	"audio/ogg":  {},
	"audio/webm": {},
	"audio/wav":  {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".weba": "audio/webm",
	".wav":  "audio/wav",
}

// ValidateFileSize checks if the provided file size is within acceptable limits.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrAttachmentInvalid)
	}

	if fileSize > MaxAttachmentSize {
		return errs.NewError(errs.ErrAttachmentTooLarge)
	}

	return nil
}

// ValidateFileType checks if the provided file name and MIME type are allowed
// and agree with each other.
func ValidateFileType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrAttachmentInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) < 2 {
		return errs.NewError(errs.ErrAttachmentInvalid)
	}

	expectedMIME, ok := ExtToMIME[ext]
	if !ok {
		return errs.NewError(errs.ErrAttachmentInvalid)
	}

	if expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrAttachmentInvalid)
	}

	return nil
}
