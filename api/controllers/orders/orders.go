package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arcacommerce/arca-backend/api/middleware"
	"github.com/arcacommerce/arca-backend/api/responses"
	"github.com/arcacommerce/arca-backend/api/validators"
	internalorders "github.com/arcacommerce/arca-backend/internal/orders"
	"github.com/arcacommerce/arca-backend/internal/payments"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/logger"
)

// Create places an order for the caller. Stock shortfalls answer 409 with every short line.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}

		var payload internalorders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.BuyerID = actor.UserID
		if payload.RefSource != nil {
			src := validators.SanitizeString(*payload.RefSource, 64)
			payload.RefSource = &src
		}

		order, err := svc.CreateOrder(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// List returns the caller's orders, or those of userId when mounted under a user path.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}

		buyerID := actor.UserID
		if chi.URLParam(r, "userId") != "" {
			parsed, err := validators.ParseUUIDParam(r, "userId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			buyerID = parsed
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListForBuyer(r.Context(), actor, buyerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, orderID, ok := actorAndOrder(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ConfirmPayment runs the payment confirmation and settles the order. Repeats with the same
// confirmation return the already-paid order.
func ConfirmPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		actor, orderID, ok := actorAndOrder(w, r, logg)
		if !ok {
			return
		}

		var payload payments.ConfirmInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmOrderPayment(r.Context(), actor, orderID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Cancel refunds an order: stock is restored and its commissions are voided.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, orderID, ok := actorAndOrder(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.Cancel(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type fulfillmentRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required,oneof=shipped completed"`
}

func AdvanceFulfillment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, orderID, ok := actorAndOrder(w, r, logg)
		if !ok {
			return
		}
		var payload fulfillmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.AdvanceFulfillment(r.Context(), actor, orderID, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func actorFrom(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (auth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return auth.Actor{}, false
	}
	return actor, true
}

func actorAndOrder(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (auth.Actor, uuid.UUID, bool) {
	actor, ok := actorFrom(w, r, logg)
	if !ok {
		return auth.Actor{}, uuid.Nil, false
	}
	orderID, err := validators.ParseUUIDParam(r, "orderId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return auth.Actor{}, uuid.Nil, false
	}
	return actor, orderID, true
}
