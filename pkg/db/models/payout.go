package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// Payout aggregates one beneficiary's commissions over a period.
type Payout struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	BeneficiaryID uuid.UUID            `gorm:"column:beneficiary_id;type:uuid;not null;index:idx_payouts_beneficiary"`
	PeriodStart   time.Time            `gorm:"column:period_start;not null"`
	PeriodEnd     time.Time            `gorm:"column:period_end;not null"`
	Amount        decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Status        enums.PayoutStatus   `gorm:"column:status;type:text;not null;default:pending"`
	State         enums.PayoutState    `gorm:"column:state;type:text;not null;default:generated"`
	Method        *enums.PaymentMethod `gorm:"column:method;type:text"`
	Reference     *string              `gorm:"column:reference"`
	PaidAt        *time.Time           `gorm:"column:paid_at"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payout) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
