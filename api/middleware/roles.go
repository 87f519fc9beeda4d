package middleware

import (
	"net/http"

	"github.com/servanahq/servana-backend/api/responses"
	"github.com/servanahq/servana-backend/pkg/enums"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

// RequireRoles allows the request through when the actor holds any of the
// given roles. An actor with no resolved role is treated as a customer.
func RequireRoles(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			actor := enums.Role(RoleFromContext(r.Context()))
			if !actor.IsValid() {
				actor = enums.RoleCustomer
			}

			for _, role := range roles {
				if actor == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
		})
	}
}
