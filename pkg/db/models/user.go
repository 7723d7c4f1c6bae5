package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// User carries identity plus the commerce attributes used by points and commissions.
// ReferredByID forms the upline tree; DefaultConsultantID attributes orders placed without one.
type User struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Email               string          `gorm:"column:email;type:text;not null;uniqueIndex:ux_users_email"`
	FullName            string          `gorm:"column:full_name;not null"`
	Phone               *string         `gorm:"column:phone"`
	Role                enums.UserRole  `gorm:"column:role;type:text;not null;default:customer"`
	Level               enums.UserLevel `gorm:"column:level;type:text;not null;default:bronze"`
	PointsBalance       int64           `gorm:"column:points_balance;not null;default:0;check:chk_users_points_balance,points_balance >= 0"`
	ReferredByID        *uuid.UUID      `gorm:"column:referred_by_id;type:uuid;index:idx_users_referred_by"`
	DefaultConsultantID *uuid.UUID      `gorm:"column:default_consultant_id;type:uuid"`
	IsActive            bool            `gorm:"column:is_active;not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
