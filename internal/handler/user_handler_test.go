package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pairchat/internal/app/storage"
)

type recordingStorage struct {
	mu      sync.Mutex
	deleted []string
}

var _ storage.Service = (*recordingStorage)(nil)

func (s *recordingStorage) PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error) {
	return "https://store.test/upload/" + key, nil
}

func (s *recordingStorage) PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error) {
	return "https://store.test/download/" + key, nil
}

func (s *recordingStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *recordingStorage) GetObjectMetadata(ctx context.Context, key string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (s *recordingStorage) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func TestDeleteReplacedObject(t *testing.T) {
	const oldKey = "users/u1/avatar/aaaa-old.png"
	const newKey = "users/u1/avatar/bbbb-new.png"

	t.Run("replaced object is removed", func(t *testing.T) {
		store := &recordingStorage{}
		deleteReplacedObject(store, oldKey, newKey)
		assert.Equal(t, []string{oldKey}, store.deletedKeys())
	})

	t.Run("unchanged key is kept", func(t *testing.T) {
		store := &recordingStorage{}
		deleteReplacedObject(store, oldKey, oldKey)
		assert.Empty(t, store.deletedKeys())
	})

	t.Run("no previous object", func(t *testing.T) {
		store := &recordingStorage{}
		deleteReplacedObject(store, "", newKey)
		assert.Empty(t, store.deletedKeys())
	})

	t.Run("clearing keeps the old object", func(t *testing.T) {
		store := &recordingStorage{}
		deleteReplacedObject(store, oldKey, "")
		assert.Empty(t, store.deletedKeys())
	})

	t.Run("nil storage is a no-op", func(t *testing.T) {
		deleteReplacedObject(nil, oldKey, newKey)
	})
}
