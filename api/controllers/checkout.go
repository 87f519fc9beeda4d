package controllers

import (
	"net/http"

	"github.com/servanahq/servana-backend/api/responses"
	"github.com/servanahq/servana-backend/api/validators"
	"github.com/servanahq/servana-backend/internal/checkout"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

// CreateCheckoutSession builds a hosted payment session for a service booking.
func CreateCheckoutSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.CreateSessionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateSession(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
