package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/armory-market/armory-backend/api/middleware"
	"github.com/armory-market/armory-backend/api/responses"
	"github.com/armory-market/armory-backend/api/validators"
	"github.com/armory-market/armory-backend/internal/assistant"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
	"github.com/armory-market/armory-backend/pkg/logger"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" validate:"required,min=1,max=2000"`
}

// Chat runs one assistant turn. Anonymous callers are welcome; an
// authenticated caller's identity seeds the session so the assistant can
// order and look up history without asking for an email.
func Chat(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assistant unavailable"))
			return
		}

		var payload chatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := assistant.ChatRequest{
			SessionID: payload.SessionID,
			Message:   payload.Message,
			Email:     middleware.UserEmailFromContext(r.Context()),
			Name:      middleware.UserNameFromContext(r.Context()),
		}
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if parsed, err := uuid.Parse(raw); err == nil {
				req.UserID = parsed
			}
		}

		result, err := svc.Chat(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
