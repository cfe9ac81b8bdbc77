package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/armory-market/armory-backend/api/middleware"
	"github.com/armory-market/armory-backend/api/responses"
	"github.com/armory-market/armory-backend/api/validators"
	"github.com/armory-market/armory-backend/internal/payments"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
	"github.com/armory-market/armory-backend/pkg/logger"
)

// Checkout opens a pending payment for the submitted items. Works for
// guests; an authenticated caller's id is attached so the finalized
// order lands in their history.
func Checkout(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload payments.CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var userID *uuid.UUID
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
				return
			}
			userID = &parsed
		}

		result, err := svc.Checkout(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
