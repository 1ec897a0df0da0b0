package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tally/internal/core"
)

// ErrMalformedMessage marks a body that can never be processed.
var ErrMalformedMessage = errors.New("malformed import message")

// TransactionImportMessage carries one transaction to be inserted by the worker.
type TransactionImportMessage struct {
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewTransactionImportMessage stamps t with the current time.
func NewTransactionImportMessage(t core.Transaction) *TransactionImportMessage {
	return &TransactionImportMessage{
		Transaction: t,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionImportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionImportMessageFromJSON decodes a body. A message without a
// transaction date is rejected as malformed.
func TransactionImportMessageFromJSON(data []byte) (*TransactionImportMessage, error) {
	var msg TransactionImportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.Transaction.Date.IsZero() {
		return nil, fmt.Errorf("%w: transaction has no date", ErrMalformedMessage)
	}
	return &msg, nil
}
