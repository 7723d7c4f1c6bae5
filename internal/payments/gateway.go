package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
)

type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentConfirmed IntentStatus = "confirmed"
)

// Intent is a payment attempt against the gateway.
type Intent struct {
	Reference   string
	Amount      decimal.Decimal
	Method      enums.PaymentMethod
	Status      IntentStatus
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// Gateway creates and confirms payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, method enums.PaymentMethod) (*Intent, error)
	Confirm(ctx context.Context, intent *Intent) (*Intent, error)
}

// SimulatedGateway confirms every intent locally. No network calls are made.
type SimulatedGateway struct {
	now func() time.Time
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{now: func() time.Time { return time.Now().UTC() }}
}

func (g *SimulatedGateway) CreateIntent(_ context.Context, amount decimal.Decimal, method enums.PaymentMethod) (*Intent, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	now := g.now()
	return &Intent{
		Reference: Reference(method, now),
		Amount:    amount,
		Method:    method,
		Status:    IntentPending,
		CreatedAt: now,
	}, nil
}

func (g *SimulatedGateway) Confirm(_ context.Context, intent *Intent) (*Intent, error) {
	if intent == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent required")
	}
	if intent.Status == IntentConfirmed {
		return intent, nil
	}
	confirmed := *intent
	now := g.now()
	confirmed.Status = IntentConfirmed
	confirmed.ConfirmedAt = &now
	return &confirmed, nil
}

// Reference formats a gateway reference as METHOD-<unix seconds>.
func Reference(method enums.PaymentMethod, at time.Time) string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(string(method)), at.Unix())
}
