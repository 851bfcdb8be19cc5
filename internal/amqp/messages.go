package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEvent is a lightweight notification that a transaction changed.
// It carries identifiers only; the worker fetches the full record from
// the database before exporting.
type LedgerEvent struct {
	Entity    string    `json:"entity"` // "income" or "expense"
	Op        string    `json:"op"`     // "created", "updated" or "deleted"
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EntityIncome  = "income"
	EntityExpense = "expense"

	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

func NewLedgerEvent(entity, op, id, userID, month string) *LedgerEvent {
	return &LedgerEvent{
		Entity:    entity,
		Op:        op,
		ID:        id,
		UserID:    userID,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
