package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// CommissionRecord is one tier of commission earned on one order.
// (beneficiary, order, type) is unique.
type CommissionRecord struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	BeneficiaryID uuid.UUID              `gorm:"column:beneficiary_id;type:uuid;not null;uniqueIndex:ux_commission_records_triple,priority:1"`
	OrderID       uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_commission_records_triple,priority:2;index:idx_commission_records_order"`
	Type          enums.CommissionType   `gorm:"column:type;type:text;not null;uniqueIndex:ux_commission_records_triple,priority:3"`
	Status        enums.CommissionStatus `gorm:"column:status;type:text;not null;index:idx_commission_records_status"`
	Rate          decimal.Decimal        `gorm:"column:rate;type:numeric(6,4);not null"`
	Amount        decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	EligibleAt    time.Time              `gorm:"column:eligible_at;not null"`
	PayoutID      *uuid.UUID             `gorm:"column:payout_id;type:uuid;index:idx_commission_records_payout"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CommissionRecord) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
