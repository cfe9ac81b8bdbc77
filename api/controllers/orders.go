package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/armory-market/armory-backend/api/middleware"
	"github.com/armory-market/armory-backend/api/responses"
	"github.com/armory-market/armory-backend/internal/orders"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
	"github.com/armory-market/armory-backend/pkg/logger"
)

// OrderHistory lists the caller's orders, newest first. Orders placed as
// a guest under the same email are folded in when no account orders
// exist yet.
func OrderHistory(svc orders.HistoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		query := orders.HistoryQuery{
			Email: middleware.UserEmailFromContext(r.Context()),
		}
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
				return
			}
			query.UserID = parsed
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 100 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be between 1 and 100"))
				return
			}
			query.Limit = parsed
		}

		summaries, err := svc.History(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": summaries})
	}
}
