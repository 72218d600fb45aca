package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the export queue.
const (
	KindTransactionCreated = "transaction_created"
	KindLedgerChanged      = "ledger_changed"
)

// ExportMessage is the lightweight envelope on the export queue. It
// carries identifiers only; the worker fetches full rows from the
// database so the queue never holds stale data.
type ExportMessage struct {
	Kind          string    `json:"kind"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Month         string    `json:"month,omitempty"`
	Generated     int       `json:"generated,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionCreatedMessage announces a single new transaction.
func NewTransactionCreatedMessage(id string) *ExportMessage {
	return &ExportMessage{
		Kind:          KindTransactionCreated,
		TransactionID: id,
		Timestamp:     time.Now(),
	}
}

// NewLedgerChangedMessage announces a batch of materialized transactions
// for a month.
func NewLedgerChangedMessage(month string, generated int) *ExportMessage {
	return &ExportMessage{
		Kind:      KindLedgerChanged,
		Month:     month,
		Generated: generated,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportMessageFromJSON creates a message from JSON bytes
func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
