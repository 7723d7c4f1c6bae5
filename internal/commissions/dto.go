package commissions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

type CommissionDTO struct {
	ID            uuid.UUID              `json:"id"`
	BeneficiaryID uuid.UUID              `json:"beneficiary_id"`
	OrderID       uuid.UUID              `json:"order_id"`
	Type          enums.CommissionType   `json:"type"`
	Status        enums.CommissionStatus `json:"status"`
	Rate          decimal.Decimal        `json:"rate"`
	Amount        decimal.Decimal        `json:"amount"`
	EligibleAt    time.Time              `json:"eligible_at"`
	PayoutID      *uuid.UUID             `json:"payout_id,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// SummaryDTO totals one beneficiary's commissions by status.
type SummaryDTO struct {
	BeneficiaryID uuid.UUID                                  `json:"beneficiary_id"`
	Totals        map[enums.CommissionStatus]decimal.Decimal `json:"totals"`
	Counts        map[enums.CommissionStatus]int             `json:"counts"`
}

type ListAllInput struct {
	pagination.Params
	Status        string     `json:"status"`
	BeneficiaryID *uuid.UUID `json:"beneficiary_id"`
}

func FromModel(m models.CommissionRecord) CommissionDTO {
	return CommissionDTO{
		ID:            m.ID,
		BeneficiaryID: m.BeneficiaryID,
		OrderID:       m.OrderID,
		Type:          m.Type,
		Status:        m.Status,
		Rate:          m.Rate,
		Amount:        m.Amount,
		EligibleAt:    m.EligibleAt,
		PayoutID:      m.PayoutID,
		CreatedAt:     m.CreatedAt,
	}
}

func fromModels(rows []models.CommissionRecord) []CommissionDTO {
	out := make([]CommissionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

func cursorOf(c CommissionDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
}
