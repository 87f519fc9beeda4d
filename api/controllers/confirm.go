package controllers

import (
	"net/http"

	"github.com/servanahq/servana-backend/api/responses"
	"github.com/servanahq/servana-backend/api/validators"
	"github.com/servanahq/servana-backend/internal/confirm"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

type confirmUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmUser marks an account as email-confirmed without the mail round-trip.
func ConfirmUser(svc confirm.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "confirm service unavailable"))
			return
		}

		var body confirmUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Confirm(r.Context(), body.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "confirmed"})
	}
}
