package points

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Ledger posts entries inside a caller-owned transaction. Orders use it for redemption and accrual.
type Ledger interface {
	Accrue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int64, reason string, orderID *uuid.UUID) error
	Redeem(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int64, reason string, orderID *uuid.UUID) error
}

// Service is the ledger plus its self-contained admin and read operations.
type Service interface {
	Ledger
	Adjust(ctx context.Context, actor auth.Actor, userID uuid.UUID, delta int64, reason string) (*BalanceDTO, error)
	History(ctx context.Context, actor auth.Actor, userID uuid.UUID, params pagination.Params) (pagination.Page[EntryDTO], error)
	Reconcile(ctx context.Context, actor auth.Actor, userID uuid.UUID) (*ReconcileResult, error)
	FindDrift(ctx context.Context, limit int) ([]ReconcileResult, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("points repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Accrue is a no-op for non-positive points.
func (s *service) Accrue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int64, reason string, orderID *uuid.UUID) error {
	if points <= 0 {
		return nil
	}
	return s.post(ctx, s.repo.WithTx(tx), userID, enums.PointsEarn, points, reason, orderID)
}

// Redeem is a no-op for non-positive points and fails with INSUFFICIENT_BALANCE rather than go negative.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int64, reason string, orderID *uuid.UUID) error {
	if points <= 0 {
		return nil
	}
	return s.post(ctx, s.repo.WithTx(tx), userID, enums.PointsRedeem, -points, reason, orderID)
}

func (s *service) Adjust(ctx context.Context, actor auth.Actor, userID uuid.UUID, delta int64, reason string) (*BalanceDTO, error) {
	if actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	var balance int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.post(ctx, repo, userID, enums.PointsAdjust, delta, reason, nil); err != nil {
			return err
		}
		var err error
		balance, err = repo.Balance(ctx, userID)
		return err
	})
	if err != nil {
		return nil, asDependency(err, "adjust points")
	}
	return &BalanceDTO{UserID: userID, Balance: balance}, nil
}

func (s *service) History(ctx context.Context, actor auth.Actor, userID uuid.UUID, params pagination.Params) (pagination.Page[EntryDTO], error) {
	if !actor.CanAccess(userID) {
		return pagination.Page[EntryDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's points")
	}
	rows, err := s.repo.ListForUser(ctx, userID, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return pagination.Page[EntryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[EntryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list points history")
	}
	entries := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromModel(row))
	}
	return pagination.Build(entries, params, entryCursor), nil
}

func (s *service) Reconcile(ctx context.Context, actor auth.Actor, userID uuid.UUID) (*ReconcileResult, error) {
	if !actor.CanAccess(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's points")
	}
	cached, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, asDependency(err, "load balance")
	}
	sum, err := s.repo.LedgerSum(ctx, userID)
	if err != nil {
		return nil, asDependency(err, "sum ledger")
	}
	return &ReconcileResult{UserID: userID, Cached: cached, LedgerSum: sum, InSync: cached == sum}, nil
}

func (s *service) FindDrift(ctx context.Context, limit int) ([]ReconcileResult, error) {
	rows, err := s.repo.FindDrift(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ReconcileResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, ReconcileResult{UserID: row.UserID, Cached: row.Cached, LedgerSum: row.LedgerSum})
	}
	return out, nil
}

// post moves the cached balance and appends the matching entry through the same repository handle.
func (s *service) post(ctx context.Context, repo *Repository, userID uuid.UUID, kind enums.PointsTransactionType, delta int64, reason string, orderID *uuid.UUID) error {
	ok, err := repo.ApplyDelta(ctx, userID, delta)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update points balance")
	}
	if !ok {
		balance, lookupErr := repo.Balance(ctx, userID)
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient points balance").
			WithDetails(map[string]any{"balance": balance, "requested": -delta})
	}
	entry := &models.PointsTransaction{
		UserID:  userID,
		OrderID: orderID,
		Type:    kind,
		Points:  delta,
		Reason:  reason,
	}
	if err := repo.Insert(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert points entry")
	}
	return nil
}

func asDependency(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
