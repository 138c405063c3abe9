package handler

import (
	"net/http"

	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

type AIChatInput struct {
	Prompt string `json:"prompt"`
}

// HandleAIChat forwards the caller's prompt to the configured AI provider and
// returns the reply. When no provider is configured the endpoint reports
// service unavailability instead of failing at startup.
func HandleAIChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.AI == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAIUnavailable))
			return
		}

		var input AIChatInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Prompt == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		reply, err := deps.AI.Complete(r.Context(), input.Prompt)
		if err != nil {
			logx.Error(err, "ai completion failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrAIUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"reply": reply})
	}
}
