/*
Package handler provides the HTTP handler function for WebSocket connection upgrading
and initialization.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, authenticating the connecting user, upgrading the HTTP connection to
WebSocket, and registering the live channel with the presence registry.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"pairchat/internal/app/ws"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/limiter"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// Browsers cannot set an Authorization header on a WebSocket upgrade, so the token
// travels in the `token` query parameter instead.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			logx.Warn("WebSocket request rejected: Missing token query parameter")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(token, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket request rejected: Invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := ws.NewClient(conn, payload.ID, deps.Registry, deps.Messages)

		go client.WritePump()

		deps.Registry.Join(payload.ID, client)

		logx.Info("WebSocket connection established and client registered", "user_id", payload.ID)

		client.ReadPump()
	}
}
