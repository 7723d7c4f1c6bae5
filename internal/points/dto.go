package points

import (
	"time"

	"github.com/google/uuid"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

type EntryDTO struct {
	ID        uuid.UUID                   `json:"id"`
	OrderID   *uuid.UUID                  `json:"order_id,omitempty"`
	Type      enums.PointsTransactionType `json:"type"`
	Points    int64                       `json:"points"`
	Reason    string                      `json:"reason"`
	CreatedAt time.Time                   `json:"created_at"`
}

type BalanceDTO struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
}

// ReconcileResult compares the cached balance with the ledger.
type ReconcileResult struct {
	UserID    uuid.UUID `json:"user_id"`
	Cached    int64     `json:"cached"`
	LedgerSum int64     `json:"ledger_sum"`
	InSync    bool      `json:"in_sync"`
}

func entryFromModel(m models.PointsTransaction) EntryDTO {
	return EntryDTO{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Type:      m.Type,
		Points:    m.Points,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
}

func entryCursor(e EntryDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
}
