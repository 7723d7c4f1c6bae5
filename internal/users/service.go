package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/db"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListReferrals(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// Service manages user records and the referral tree.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	Get(ctx context.Context, actor auth.Actor, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, actor auth.Actor, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	ListReferrals(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]UserDTO, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	user := input.toModel()
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email is required")
	}
	if user.FullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if !user.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if !user.Level.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid level")
	}
	if user.ReferredByID != nil {
		if _, err := s.repo.FindByID(ctx, *user.ReferredByID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "referrer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referrer")
		}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "ux_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, userID uuid.UUID) (*UserDTO, error) {
	if !actor.CanAccess(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, actor auth.Actor, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	if !actor.IsBackOffice() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff or admin required")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		user.Role = *input.Role
	}
	if input.Level != nil {
		if !input.Level.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid level")
		}
		user.Level = *input.Level
	}
	if input.DefaultConsultantID != nil {
		consultant, err := s.load(ctx, *input.DefaultConsultantID)
		if err != nil {
			return nil, err
		}
		if !consultant.Role.CanEarnCommission() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default consultant must have the consultant role")
		}
		user.DefaultConsultantID = &consultant.ID
	}
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) ListReferrals(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]UserDTO, error) {
	if !actor.CanAccess(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's referrals")
	}
	rows, err := s.repo.ListReferrals(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list referrals")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
