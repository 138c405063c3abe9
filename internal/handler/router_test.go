package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/presence"
	"pairchat/internal/configs"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
)

func testDeps() *AppDeps {
	return &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        8080,
			JWTSecret:   "test-secret",
		},
		Registry: presence.NewRegistry(),
	}
}

func doRequest(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()

	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestHealthEndpoint(t *testing.T) {
	h := Router(testDeps())

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeCode(t, rec))
}

func TestAnonymousRequestsRejected(t *testing.T) {
	h := Router(testDeps())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user/me"},
		{http.MethodGet, "/api/user/friends"},
		{http.MethodGet, "/api/user/notifications"},
		{http.MethodPost, "/api/user/send-friend-request"},
		{http.MethodGet, "/api/chat/unread-counts"},
		{http.MethodGet, "/api/user/notification-settings"},
		{http.MethodGet, "/api/image/"},
		{http.MethodPost, "/api/image/"},
		{http.MethodPost, "/api/ai/chat"},
		{http.MethodPost, "/api/auth/logout"},
	}

	for _, tt := range paths {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := doRequest(t, h, tt.method, tt.path, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, errs.ErrUnauthorized, decodeCode(t, rec))
		})
	}
}

func TestInvalidTokenTreatedAsAnonymous(t *testing.T) {
	h := Router(testDeps())

	rec := doRequest(t, h, http.MethodGet, "/api/user/me", "garbage.token.value")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAIChatWithoutProvider(t *testing.T) {
	deps := testDeps()
	h := Router(deps)

	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:       "11111111-1111-4111-8111-111111111111",
		Username: "alice",
	}, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
	require.NoError(t, err)

	rec := doRequest(t, h, http.MethodPost, "/api/ai/chat", token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errs.ErrAIUnavailable, decodeCode(t, rec))
}

func TestGalleryUploadRejectsNonImage(t *testing.T) {
	deps := testDeps()
	deps.StorageService = &recordingStorage{}
	h := Router(deps)

	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:       "11111111-1111-4111-8111-111111111111",
		Username: "alice",
	}, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
	require.NoError(t, err)

	body := `{"file_name":"clip.mp3","mime_type":"audio/mpeg","file_size":1024}`
	req := httptest.NewRequest(http.MethodPost, "/api/image/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrAttachmentInvalid, decodeCode(t, rec))
}

func TestLogoutClosesLiveChannels(t *testing.T) {
	deps := testDeps()
	h := Router(deps)

	const userID = "11111111-1111-4111-8111-111111111111"

	token, err := jwt.GenerateToken(&jwt.Payload{ID: userID, Username: "alice"},
		deps.Config.JWTSecret, jwt.UserIdentityExpiration)
	require.NoError(t, err)

	ch := &stubChannel{}
	deps.Registry.Join(userID, ch)
	require.True(t, deps.Registry.IsOnline(userID))

	rec := doRequest(t, h, http.MethodPost, "/api/auth/logout", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, deps.Registry.IsOnline(userID))
	assert.True(t, ch.closed)
}

type stubChannel struct {
	closed bool
}

func (c *stubChannel) Deliver(presence.Event) error { return nil }
func (c *stubChannel) Close()                       { c.closed = true }
