package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// ActorRef identifies the user whose request produced the event. System jobs leave it nil.
type ActorRef struct {
	UserID uuid.UUID      `json:"userId"`
	Role   enums.UserRole `json:"role,omitempty"`
}

// PayloadEnvelope is the JSON document stored in outbox_events.payload and published verbatim.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Decode unmarshals the envelope data into dest.
func (e PayloadEnvelope) Decode(dest any) error {
	return json.Unmarshal(e.Data, dest)
}
