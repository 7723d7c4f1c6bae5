package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

// LineInput is one requested cart line.
type LineInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0,max=10000"`
}

// MaxLineQuantity bounds one product's quantity in an order, after duplicate lines are merged.
const MaxLineQuantity = 10000

// CreateOrderInput carries a buyer's cart. ConsultantID is an explicit attribution.
type CreateOrderInput struct {
	BuyerID        uuid.UUID   `json:"-"`
	Items          []LineInput `json:"items" validate:"required,dive"`
	PointsToRedeem int64       `json:"points_to_redeem" validate:"gte=0"`
	ConsultantID   *uuid.UUID  `json:"consultant_id,omitempty"`
	RefSource      *string     `json:"ref_source,omitempty"`
}

// PaymentConfirmation is the result of a confirmed payment against an order.
type PaymentConfirmation struct {
	Amount      decimal.Decimal
	Method      enums.PaymentMethod
	Reference   string
	ConfirmedAt time.Time
}

// Shortfall is one line that cannot be served from current stock.
type Shortfall struct {
	ProductID uuid.UUID `json:"product_id"`
	Available int       `json:"available"`
	Requested int       `json:"requested"`
}

type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderDTO struct {
	ID               uuid.UUID            `json:"id"`
	UserID           uuid.UUID            `json:"user_id"`
	Status           enums.OrderStatus    `json:"status"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	DiscountAmount   decimal.Decimal      `json:"discount_amount"`
	PayableAmount    decimal.Decimal      `json:"payable_amount"`
	PointsUsed       int64                `json:"points_used"`
	PointsEarned     int64                `json:"points_earned"`
	ConsultantID     *uuid.UUID           `json:"consultant_id,omitempty"`
	RefSource        *string              `json:"ref_source,omitempty"`
	PaymentMethod    *enums.PaymentMethod `json:"payment_method,omitempty"`
	PaymentReference *string              `json:"payment_reference,omitempty"`
	PaidAt           *time.Time           `json:"paid_at,omitempty"`
	CanceledAt       *time.Time           `json:"canceled_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	Items            []OrderItemDTO       `json:"items"`
}

func FromModel(m *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:               m.ID,
		UserID:           m.UserID,
		Status:           m.Status,
		TotalAmount:      m.TotalAmount,
		DiscountAmount:   m.DiscountAmount,
		PayableAmount:    m.PayableAmount(),
		PointsUsed:       m.PointsUsed,
		PointsEarned:     m.PointsEarned,
		ConsultantID:     m.ConsultantID,
		RefSource:        m.RefSource,
		PaymentMethod:    m.PaymentMethod,
		PaymentReference: m.PaymentReference,
		PaidAt:           m.PaidAt,
		CanceledAt:       m.CanceledAt,
		CreatedAt:        m.CreatedAt,
		Items:            make([]OrderItemDTO, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		})
	}
	return dto
}

func cursorOf(o OrderDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
}
