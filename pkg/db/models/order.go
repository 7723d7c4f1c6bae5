package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// Order is a buyer's purchase. Monetary fields are fixed at creation; status and
// timestamps move through the lifecycle.
type Order struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:idx_orders_user"`
	Status           enums.OrderStatus    `gorm:"column:status;type:text;not null;default:pending"`
	TotalAmount      decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	DiscountAmount   decimal.Decimal      `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	PointsUsed       int64                `gorm:"column:points_used;not null;default:0"`
	PointsEarned     int64                `gorm:"column:points_earned;not null;default:0"`
	ConsultantID     *uuid.UUID           `gorm:"column:consultant_id;type:uuid"`
	RefSource        *string              `gorm:"column:ref_source"`
	PaymentMethod    *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	PaymentReference *string              `gorm:"column:payment_reference"`
	PaidAt           *time.Time           `gorm:"column:paid_at"`
	CanceledAt       *time.Time           `gorm:"column:canceled_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
	Items            []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// PayableAmount is total minus discount, never below zero.
func (o Order) PayableAmount() decimal.Decimal {
	payable := o.TotalAmount.Sub(o.DiscountAmount)
	if payable.IsNegative() {
		return decimal.Zero
	}
	return payable
}

// OrderItem is one order line. UnitPrice is the product price at order time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:idx_order_items_order"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_order_items_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineTotal is UnitPrice * Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
