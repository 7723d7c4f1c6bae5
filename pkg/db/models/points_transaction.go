package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// PointsTransaction is an append-only points ledger entry. Points is signed.
type PointsTransaction struct {
	ID        uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;index:idx_points_transactions_user"`
	OrderID   *uuid.UUID                  `gorm:"column:order_id;type:uuid"`
	Type      enums.PointsTransactionType `gorm:"column:type;type:text;not null"`
	Points    int64                       `gorm:"column:points;not null"`
	Reason    string                      `gorm:"column:reason;not null;default:''"`
	CreatedAt time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

func (p *PointsTransaction) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
