package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeItemCreated    Type = "item.created"
	TypeItemUpdated    Type = "item.updated"
	TypeItemDeleted    Type = "item.deleted"
	TypeStockPurchased Type = "stock.purchased"
	TypeStockRestocked Type = "stock.restocked"
	TypeStockLow       Type = "stock.low"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
}

func New(t Type, payload any, actorID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		ActorID:   actorID,
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
