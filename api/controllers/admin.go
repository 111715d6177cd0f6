package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nurserysera/storefront-backend/api/responses"
	"github.com/nurserysera/storefront-backend/api/validators"
	"github.com/nurserysera/storefront-backend/internal/fulfillment"
	"github.com/nurserysera/storefront-backend/internal/notify"
	"github.com/nurserysera/storefront-backend/pkg/db/models"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/logger"
)

type setPaidRequest struct {
	Paid bool `json:"paid"`
}

func AdminSetOrderPaid(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		var payload setPaidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := chi.URLParam(r, "token")
		if err := svc.SetPaid(r.Context(), token, payload.Paid); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"ok": true, "paid": payload.Paid})
	}
}

func AdminSetUnitPaid(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		unitID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unit id must be numeric"))
			return
		}

		var payload setPaidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetUnitPaid(r.Context(), unitID, payload.Paid); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"ok": true, "paid": payload.Paid})
	}
}

type setTrackingRequest struct {
	OrderToken string `json:"order_token" validate:"required"`
	TrackingNo string `json:"tracking_no" validate:"required"`
}

func AdminSetTracking(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		var payload setTrackingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetTracking(r.Context(), payload.OrderToken, payload.TrackingNo)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"updated": updated})
	}
}

type sendBatchRequest struct {
	Tokens   []string `json:"tokens" validate:"required,min=1"`
	ShipDate string   `json:"shipDate"`
	Carrier  string   `json:"carrier"`
}

// AdminSendShipDate dispatches ship-date notices for a batch of tokens.
// Failures are reported per token; the response is 200 regardless.
func AdminSendShipDate(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return adminSendBatch(svc, logg, models.EventShipdateNotice)
}

func AdminSendShipped(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return adminSendBatch(svc, logg, models.EventShippedNotice)
}

func adminSendBatch(svc notify.Service, logg *logger.Logger, eventType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		var payload sendBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, errs := svc.SendBatch(r.Context(), payload.Tokens, eventType,
			notify.SendOptions{ShipDate: payload.ShipDate, Carrier: payload.Carrier})
		if errs != nil && logg != nil {
			logg.Warn(r.Context(), "batch notification finished with failures: "+errs.Error())
		}
		responses.WriteSuccess(w, map[string]any{"results": results})
	}
}
