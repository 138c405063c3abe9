/*
Package storage provides presigned access to an S3-compatible object store.

Clients upload and download attachment bytes directly against presigned URLs;
the server only mints URLs and owns the key layout. Keys are scoped per user so
a user's objects can be enumerated and cleaned up together.
*/
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pairchat/internal/pkg/randx"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service defines the public interface for the file storage service.
type Service interface {
	// PresignUpload generates a pre-signed URL for uploading a file.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error

	// GetObjectMetadata retrieves the object's metadata.
	GetObjectMetadata(ctx context.Context, key string) (map[string]string, error)
}

// NewService is the factory function for Service.
// It initializes and returns a concrete implementation based on the provided configuration.
func NewService(cfg ServiceConfig) (Service, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}

// AttachmentKey builds the object key for a chat attachment owned by userID.
// The random suffix keeps repeated uploads of the same filename from colliding.
func AttachmentKey(userID, fileName string) (string, error) {
	suffix, err := randx.FileSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("users/%s/attachments/%s-%s", userID, suffix, sanitizeFileName(fileName)), nil
}

// AvatarKey builds the object key for a user's profile image.
func AvatarKey(userID, fileName string) (string, error) {
	suffix, err := randx.FileSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("users/%s/avatar/%s-%s", userID, suffix, sanitizeFileName(fileName)), nil
}

// GalleryKey builds the object key for an image in a user's personal gallery.
func GalleryKey(userID, fileName string) (string, error) {
	suffix, err := randx.FileSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("users/%s/gallery/%s-%s", userID, suffix, sanitizeFileName(fileName)), nil
}

// OwnsKey reports whether key lives under userID's prefix.
func OwnsKey(userID, key string) bool {
	return strings.HasPrefix(key, "users/"+userID+"/")
}

// sanitizeFileName strips path separators and control characters from a
// client-supplied filename before it becomes part of an object key.
func sanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 32 || r == 127:
			return -1
		default:
			return r
		}
	}, name)

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "file"
	}

	return cleaned
}
