package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/nurserysera/storefront-backend/api/responses"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/logger"
)

const adminTokenHeader = "X-Admin-Token"

// AdminOnly gates a route behind the shared admin token, accepted from the
// header or a `token` query parameter for links pasted into a browser.
func AdminOnly(adminToken string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(adminTokenHeader)
			if presented == "" {
				presented = r.URL.Query().Get("token")
			}

			if adminToken == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(adminToken)) != 1 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
