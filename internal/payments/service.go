package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/internal/orders"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/logger"
)

type orderPayer interface {
	Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*orders.OrderDTO, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, confirmation orders.PaymentConfirmation) (*orders.OrderDTO, error)
}

// ConfirmInput is a client's payment confirmation. Reference is optional.
type ConfirmInput struct {
	Amount    decimal.Decimal     `json:"amount" validate:"required"`
	Method    enums.PaymentMethod `json:"method" validate:"required"`
	Reference *string             `json:"reference,omitempty" validate:"omitempty,max=128"`
}

type Service interface {
	ConfirmOrderPayment(ctx context.Context, actor auth.Actor, orderID uuid.UUID, input ConfirmInput) (*orders.OrderDTO, error)
}

type service struct {
	orders  orderPayer
	gateway Gateway
	logg    *logger.Logger
}

func NewService(orderSvc orderPayer, gateway Gateway, logg *logger.Logger) (Service, error) {
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{orders: orderSvc, gateway: gateway, logg: logg}, nil
}

// ConfirmOrderPayment runs the gateway confirmation and marks the order paid. Only the buyer
// or back office may pay. A repeated confirmation of a paid order returns it unchanged.
func (s *service) ConfirmOrderPayment(ctx context.Context, actor auth.Actor, orderID uuid.UUID, input ConfirmInput) (*orders.OrderDTO, error) {
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	order, err := s.orders.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsSettled() {
		return order, nil
	}

	intent, err := s.gateway.CreateIntent(ctx, input.Amount, input.Method)
	if err != nil {
		return nil, err
	}
	if input.Reference != nil && strings.TrimSpace(*input.Reference) != "" {
		intent.Reference = strings.TrimSpace(*input.Reference)
	}
	intent, err = s.gateway.Confirm(ctx, intent)
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":  orderID.String(),
		"reference": intent.Reference,
		"method":    string(intent.Method),
	})
	s.logg.Debug(logCtx, "payment confirmed by gateway")

	return s.orders.MarkPaid(ctx, orderID, orders.PaymentConfirmation{
		Amount:      intent.Amount,
		Method:      intent.Method,
		Reference:   intent.Reference,
		ConfirmedAt: *intent.ConfirmedAt,
	})
}
