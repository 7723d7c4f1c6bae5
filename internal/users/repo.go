package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
)

// Repository exposes user persistence, including the upward referral walk.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Uplines returns at most maxHops referrers above userID, nearest first.
// The walk stops early at a user with no referrer or a dangling reference.
func (r *Repository) Uplines(ctx context.Context, userID uuid.UUID, maxHops int) ([]models.User, error) {
	current, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	chain := make([]models.User, 0, maxHops)
	for hop := 0; hop < maxHops && current.ReferredByID != nil; hop++ {
		var parent models.User
		err := r.db.WithContext(ctx).First(&parent, "id = ?", *current.ReferredByID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		chain = append(chain, parent)
		current = &parent
	}
	return chain, nil
}

// ListReferrals returns the users directly referred by userID.
func (r *Repository) ListReferrals(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("referred_by_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateProfile writes role, level and default consultant.
func (r *Repository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"role":                  user.Role,
			"level":                 user.Level,
			"default_consultant_id": user.DefaultConsultantID,
		}).Error
}
