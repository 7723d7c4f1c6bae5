package commissions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

// Repository owns every read and conditional write on commission_records.
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

func (r *Repository) Exists(ctx context.Context, beneficiaryID, orderID uuid.UUID, kind enums.CommissionType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommissionRecord{}).
		Where("beneficiary_id = ? AND order_id = ? AND type = ?", beneficiaryID, orderID, kind).
		Count(&count).Error
	return count > 0, err
}

// InsertIgnoringDuplicate inserts rec unless the (beneficiary, order, type) triple already exists.
// It reports whether a row was written.
func (r *Repository) InsertIgnoringDuplicate(ctx context.Context, rec *models.CommissionRecord) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "beneficiary_id"}, {Name: "order_id"}, {Name: "type"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.CommissionRecord, error) {
	var rows []models.CommissionRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("type ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListByPayout(ctx context.Context, payoutID uuid.UUID) ([]models.CommissionRecord, error) {
	var rows []models.CommissionRecord
	err := r.db.WithContext(ctx).
		Where("payout_id = ?", payoutID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Filter narrows commission listings. Zero values match everything.
type Filter struct {
	BeneficiaryID *uuid.UUID
	Status        enums.CommissionStatus
}

func (r *Repository) List(ctx context.Context, filter Filter, params pagination.Params) ([]models.CommissionRecord, error) {
	q := r.db.WithContext(ctx).Model(&models.CommissionRecord{})
	if filter.BeneficiaryID != nil {
		q = q.Where("beneficiary_id = ?", *filter.BeneficiaryID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q, err := pagination.Scope(q, params)
	if err != nil {
		return nil, err
	}
	var rows []models.CommissionRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAmountsForBeneficiary loads status and amount of every record, for summaries computed in Go.
func (r *Repository) ListAmountsForBeneficiary(ctx context.Context, beneficiaryID uuid.UUID) ([]models.CommissionRecord, error) {
	var rows []models.CommissionRecord
	err := r.db.WithContext(ctx).
		Select("status", "amount").
		Where("beneficiary_id = ?", beneficiaryID).
		Find(&rows).Error
	return rows, err
}

// PromoteDue moves pending records whose eligible_at has passed to eligible.
func (r *Repository) PromoteDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CommissionRecord{}).
		Where("status = ? AND eligible_at <= ?", enums.CommissionStatusPending, now.UTC()).
		Update("status", enums.CommissionStatusEligible)
	return res.RowsAffected, res.Error
}

// VoidByOrder voids every record of the order that is not already void.
func (r *Repository) VoidByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CommissionRecord{}).
		Where("order_id = ? AND status <> ?", orderID, enums.CommissionStatusVoid).
		Update("status", enums.CommissionStatusVoid)
	return res.RowsAffected, res.Error
}

// ClaimableBeneficiaries lists beneficiaries with eligible, unlinked records created in [start, end).
func (r *Repository) ClaimableBeneficiaries(ctx context.Context, start, end time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.CommissionRecord{}).
		Distinct("beneficiary_id").
		Where(claimableWhere, enums.CommissionStatusEligible, start.UTC(), end.UTC()).
		Order("beneficiary_id").
		Pluck("beneficiary_id", &ids).Error
	return ids, err
}

// ListClaimable returns one beneficiary's eligible, unlinked records created in [start, end).
func (r *Repository) ListClaimable(ctx context.Context, beneficiaryID uuid.UUID, start, end time.Time) ([]models.CommissionRecord, error) {
	var rows []models.CommissionRecord
	err := r.db.WithContext(ctx).
		Where("beneficiary_id = ?", beneficiaryID).
		Where(claimableWhere, enums.CommissionStatusEligible, start.UTC(), end.UTC()).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Claim links the given records to payoutID and moves them to status, skipping any
// record another batch linked or voided in the meantime. It returns how many rows were claimed.
func (r *Repository) Claim(ctx context.Context, ids []uuid.UUID, payoutID uuid.UUID, status enums.CommissionStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.CommissionRecord{}).
		Where("id IN ? AND payout_id IS NULL AND status = ?", ids, enums.CommissionStatusEligible).
		Updates(map[string]any{"payout_id": payoutID, "status": status})
	return res.RowsAffected, res.Error
}

// MarkPaidByPayout moves every non-void record linked to payoutID to paid.
func (r *Repository) MarkPaidByPayout(ctx context.Context, payoutID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CommissionRecord{}).
		Where("payout_id = ? AND status <> ?", payoutID, enums.CommissionStatusVoid).
		Update("status", enums.CommissionStatusPaid)
	return res.RowsAffected, res.Error
}

const claimableWhere = "status = ? AND payout_id IS NULL AND created_at >= ? AND created_at < ?"
