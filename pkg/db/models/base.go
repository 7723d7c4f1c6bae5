package models

import "github.com/google/uuid"

// ensureID assigns a random UUID when the row has none yet.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Order{},
		&OrderItem{},
		&PointsTransaction{},
		&CommissionRecord{},
		&Payout{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
