package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event names published to the broker.
const (
	EventChallengeSelected   = "challenge.selected"
	EventChallengeConfigured = "challenge.configured"
	EventChallengeReset      = "challenge.reset"
	EventTransactionRecorded = "transaction.recorded"
	EventTransactionDeleted  = "transaction.deleted"
)

// LedgerEvent is a lightweight notification about a ledger change.
// Consumers that need the full state fetch it from the API.
type LedgerEvent struct {
	Event         string    `json:"event"`
	UserKey       string    `json:"user_key"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent builds an event stamped at the given time. Callers set
// the transaction fields when the event kind carries them.
func NewLedgerEvent(event, userKey string, at time.Time) *LedgerEvent {
	return &LedgerEvent{
		Event:     event,
		UserKey:   userKey,
		Timestamp: at,
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
