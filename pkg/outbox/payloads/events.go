package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/pkg/enums"
)

type OrderLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type OrderCreatedEvent struct {
	OrderID        uuid.UUID       `json:"orderId"`
	UserID         uuid.UUID       `json:"userId"`
	ConsultantID   *uuid.UUID      `json:"consultantId,omitempty"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	PointsUsed     int64           `json:"pointsUsed"`
	Items          []OrderLine     `json:"items"`
}

type CommissionLine struct {
	BeneficiaryID uuid.UUID              `json:"beneficiaryId"`
	Type          enums.CommissionType   `json:"type"`
	Status        enums.CommissionStatus `json:"status"`
	Amount        decimal.Decimal        `json:"amount"`
}

type OrderPaidEvent struct {
	OrderID          uuid.UUID            `json:"orderId"`
	UserID           uuid.UUID            `json:"userId"`
	PayableAmount    decimal.Decimal      `json:"payableAmount"`
	PointsEarned     int64                `json:"pointsEarned"`
	PaymentMethod    *enums.PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentReference *string              `json:"paymentReference,omitempty"`
	PaidAt           time.Time            `json:"paidAt"`
	Commissions      []CommissionLine     `json:"commissions"`
}

type OrderCanceledEvent struct {
	OrderID           uuid.UUID         `json:"orderId"`
	PreviousStatus    enums.OrderStatus `json:"previousStatus"`
	RestockedUnits    int               `json:"restockedUnits"`
	VoidedCommissions int               `json:"voidedCommissions"`
	CanceledAt        time.Time         `json:"canceledAt"`
}

type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"orderId"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// PayoutGeneratedEvent is emitted once per payout created by a generation run.
type PayoutGeneratedEvent struct {
	PayoutID        uuid.UUID              `json:"payoutId"`
	BeneficiaryID   uuid.UUID              `json:"beneficiaryId"`
	Amount          decimal.Decimal        `json:"amount"`
	PeriodStart     time.Time              `json:"periodStart"`
	PeriodEnd       time.Time              `json:"periodEnd"`
	CommissionCount int                    `json:"commissionCount"`
	ClaimStatus     enums.CommissionStatus `json:"claimStatus"`
	Trigger         string                 `json:"trigger"`
}

type PayoutPaidEvent struct {
	PayoutID      uuid.UUID            `json:"payoutId"`
	BeneficiaryID uuid.UUID            `json:"beneficiaryId"`
	Amount        decimal.Decimal      `json:"amount"`
	Method        *enums.PaymentMethod `json:"method,omitempty"`
	Reference     *string              `json:"reference,omitempty"`
	PaidAt        time.Time            `json:"paidAt"`
}
