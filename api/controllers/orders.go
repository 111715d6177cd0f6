package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nurserysera/storefront-backend/api/responses"
	"github.com/nurserysera/storefront-backend/api/validators"
	"github.com/nurserysera/storefront-backend/internal/fulfillment"
	ordersvc "github.com/nurserysera/storefront-backend/internal/orders"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/logger"
)

func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload ordersvc.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// MarkOrderPaid backs the legacy public paid endpoint: no body, always sets
// paid=true for the token in the path.
func MarkOrderPaid(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		token := chi.URLParam(r, "token")
		if err := svc.SetPaid(r.Context(), token, true); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"ok": true})
	}
}
