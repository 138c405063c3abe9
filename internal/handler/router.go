/*
Package handler provides the HTTP handlers and routing setup for the Pairchat server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/limiter"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/resp"
)

const (
	SignupRate  = 0.05
	SignupBurst = 2
	WsRate      = 0.2
	WsBurst     = 5
	AIRate      = 0.1
	AIBurst     = 3
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and
// per-route middleware before delegating to the API and WebSocket handlers.
func Router(deps *AppDeps) http.Handler {
	signupLimiter := limiter.NewIPRateLimiter(rate.Limit(SignupRate), SignupBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WsRate), WsBurst)
	aiLimiter := limiter.NewIPRateLimiter(rate.Limit(AIRate), AIBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Pairchat Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			rateLimitedSignup := signupLimiter.Middleware(HandleSignup(deps))
			auth.Post("/signup", http.HandlerFunc(rateLimitedSignup.ServeHTTP))
			auth.Post("/login", HandleLogin(deps))
			auth.Post("/logout", HandleLogout(deps))
			auth.Post("/change-password", HandleChangePassword(deps))
		})

		api.Route("/user", func(u chi.Router) {
			u.Get("/me", HandleGetMe(deps))
			u.Post("/profile", HandleUpdateProfile(deps))
			u.Post("/avatar/presign", HandlePresignAvatarURL(deps))
			u.Get("/all-users", HandleListUsers(deps))
			u.Get("/friends", HandleListFriends(deps))
			u.Post("/send-friend-request", HandleSendFriendRequest(deps))
			u.Post("/accept-friend-request/{notificationId}", HandleAcceptFriendRequest(deps))
			u.Post("/decline-friend-request/{notificationId}", HandleDeclineFriendRequest(deps))
			u.Post("/remove-friend", HandleRemoveFriend(deps))
			u.Post("/block-user", HandleBlockUser(deps))
			u.Post("/report-user", HandleReportUser(deps))

			u.Get("/notifications", HandleListNotifications(deps))
			u.Delete("/notifications", HandleClearNotifications(deps))
			u.Post("/mark-notifications-read", HandleMarkNotificationsRead(deps))

			u.Get("/notification-settings", HandleGetNotificationSettings(deps))
			u.Post("/notification-settings", HandleUpdateNotificationSettings(deps))
		})

		api.Route("/image", func(img chi.Router) {
			img.Post("/", HandleGalleryUpload(deps))
			img.Get("/", HandleListGallery(deps))
			img.Delete("/{imageId}", HandleDeleteGalleryImage(deps))
		})

		api.Route("/chat", func(chat chi.Router) {
			chat.Get("/peers", HandleListPeers(deps))
			chat.Get("/history/{peerId}", HandleChatHistory(deps))
			chat.Post("/message", HandleSendMessage(deps))
			chat.Get("/unread-counts", HandleUnreadCounts(deps))
			chat.Post("/mark-read/{peerId}", HandleMarkRead(deps))

			chat.Post("/attachment/presign", HandlePresignAttachmentURL(deps))
			chat.Get("/attachment/presign-download", HandlePresignDownloadURL(deps))
		})

		rateLimitedAI := aiLimiter.Middleware(HandleAIChat(deps))
		api.Post("/ai/chat", http.HandlerFunc(rateLimitedAI.ServeHTTP))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}
