package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"flousi/internal/core"
)

// DataChangedMessage announces that a user's transactions changed. Kind and
// Period are optional hints; consumers refresh every combination when empty.
type DataChangedMessage struct {
	UserID    string               `json:"user_id"`
	Kind      core.TransactionKind `json:"kind,omitempty"`
	Period    core.Period          `json:"period,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// NewDataChangedMessage creates a message stamped with the current time.
func NewDataChangedMessage(userID string, kind core.TransactionKind, period core.Period) *DataChangedMessage {
	return &DataChangedMessage{
		UserID:    userID,
		Kind:      kind,
		Period:    period,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DataChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate rejects messages without a user or with unknown hints.
func (m *DataChangedMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return core.ErrEmptyUserID
	}
	if m.Kind != "" {
		if err := m.Kind.Validate(); err != nil {
			return err
		}
	}
	if m.Period != "" {
		if err := m.Period.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DataChangedMessageFromJSON decodes and validates a message.
func DataChangedMessageFromJSON(data []byte) (*DataChangedMessage, error) {
	var msg DataChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, errors.Join(errors.New("invalid data changed message"), err)
	}
	return &msg, nil
}
