package payouts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

// Trigger labels what started a generation run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerAdmin     Trigger = "admin"
)

type PayoutDTO struct {
	ID            uuid.UUID            `json:"id"`
	BeneficiaryID uuid.UUID            `json:"beneficiary_id"`
	PeriodStart   time.Time            `json:"period_start"`
	PeriodEnd     time.Time            `json:"period_end"`
	Amount        decimal.Decimal      `json:"amount"`
	Status        enums.PayoutStatus   `json:"status"`
	State         enums.PayoutState    `json:"state"`
	Method        *enums.PaymentMethod `json:"method,omitempty"`
	Reference     *string              `json:"reference,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// GenerateResult reports one generation run.
type GenerateResult struct {
	PeriodStart       time.Time   `json:"period_start"`
	PeriodEnd         time.Time   `json:"period_end"`
	PayoutsCreated    int         `json:"payouts_created"`
	CommissionsLinked int         `json:"commissions_linked"`
	Payouts           []PayoutDTO `json:"payouts"`
}

func FromModel(m *models.Payout) PayoutDTO {
	return PayoutDTO{
		ID:            m.ID,
		BeneficiaryID: m.BeneficiaryID,
		PeriodStart:   m.PeriodStart,
		PeriodEnd:     m.PeriodEnd,
		Amount:        m.Amount,
		Status:        m.Status,
		State:         m.State,
		Method:        m.Method,
		Reference:     m.Reference,
		PaidAt:        m.PaidAt,
		CreatedAt:     m.CreatedAt,
	}
}

func cursorOf(p PayoutDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}
