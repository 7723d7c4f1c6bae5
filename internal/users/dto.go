package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// UserDTO is the transport shape of a user.
type UserDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Email               string          `json:"email"`
	FullName            string          `json:"full_name"`
	Phone               *string         `json:"phone,omitempty"`
	Role                enums.UserRole  `json:"role"`
	Level               enums.UserLevel `json:"level"`
	PointsBalance       int64           `json:"points_balance"`
	ReferredByID        *uuid.UUID      `json:"referred_by_id,omitempty"`
	DefaultConsultantID *uuid.UUID      `json:"default_consultant_id,omitempty"`
	IsActive            bool            `json:"is_active"`
	CreatedAt           time.Time       `json:"created_at"`
}

// CreateUserInput registers a user, optionally under a referrer.
type CreateUserInput struct {
	Email        string
	FullName     string
	Phone        *string
	Role         enums.UserRole
	Level        enums.UserLevel
	ReferredByID *uuid.UUID
}

// UpdateProfileInput changes back-office attributes. Nil fields are left untouched.
type UpdateProfileInput struct {
	Role                *enums.UserRole
	Level               *enums.UserLevel
	DefaultConsultantID *uuid.UUID
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                  u.ID,
		Email:               u.Email,
		FullName:            u.FullName,
		Phone:               u.Phone,
		Role:                u.Role,
		Level:               u.Level,
		PointsBalance:       u.PointsBalance,
		ReferredByID:        u.ReferredByID,
		DefaultConsultantID: u.DefaultConsultantID,
		IsActive:            u.IsActive,
		CreatedAt:           u.CreatedAt,
	}
}

func (c CreateUserInput) toModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}
	level := c.Level
	if level == "" {
		level = enums.UserLevelBronze
	}
	return &models.User{
		Email:        strings.ToLower(strings.TrimSpace(c.Email)),
		FullName:     strings.TrimSpace(c.FullName),
		Phone:        c.Phone,
		Role:         role,
		Level:        level,
		ReferredByID: c.ReferredByID,
		IsActive:     true,
	}
}
