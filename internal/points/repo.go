package points

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

// Repository writes ledger entries and keeps the cached balance in step.
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

func (r *Repository) Insert(ctx context.Context, entry *models.PointsTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ApplyDelta moves the cached balance by delta unless that would make it negative.
// It reports false when the guard rejected the change.
func (r *Repository) ApplyDelta(ctx context.Context, userID uuid.UUID, delta int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID)
	if delta < 0 {
		q = q.Where("points_balance >= ?", -delta)
	}
	res := q.UpdateColumn("points_balance", gorm.Expr("points_balance + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "points_balance").First(&user, "id = ?", userID).Error
	return user.PointsBalance, err
}

// LedgerSum is the authoritative balance derived from entries.
func (r *Repository) LedgerSum(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.PointsTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointsTransaction, error) {
	q, err := pagination.Scope(r.db.WithContext(ctx).Where("user_id = ?", userID), params)
	if err != nil {
		return nil, err
	}
	var rows []models.PointsTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.PointsTransaction, error) {
	var rows []models.PointsTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Drift is a user whose cached balance disagrees with the ledger.
type Drift struct {
	UserID    uuid.UUID `gorm:"column:user_id"`
	Cached    int64     `gorm:"column:cached"`
	LedgerSum int64     `gorm:"column:ledger_sum"`
}

// FindDrift scans up to limit users whose cached balance differs from their ledger sum.
func (r *Repository) FindDrift(ctx context.Context, limit int) ([]Drift, error) {
	var rows []Drift
	err := r.db.WithContext(ctx).Raw(`
SELECT u.id AS user_id, u.points_balance AS cached, COALESCE(SUM(p.points), 0) AS ledger_sum
FROM users u
LEFT JOIN points_transactions p ON p.user_id = u.id
GROUP BY u.id, u.points_balance
HAVING u.points_balance <> COALESCE(SUM(p.points), 0)
ORDER BY u.id
LIMIT ?`, limit).Scan(&rows).Error
	return rows, err
}
