package amqp

import (
	"encoding/json"
	"time"

	"scholarhub/internal/core"
)

// ApplicationStatusMessage announces an admin status change. Consumers
// reconcile and refresh reports from the database, so the message carries
// only what is needed to log and route it.
type ApplicationStatusMessage struct {
	ApplicationID int64     `json:"application_id"`
	Username      string    `json:"username"`
	Scholarship   string    `json:"scholarship"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ScholarStatus string    `json:"scholar_status"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewApplicationStatusMessage builds a message from a committed transition.
func NewApplicationStatusMessage(t core.Transition) *ApplicationStatusMessage {
	return &ApplicationStatusMessage{
		ApplicationID: t.Application.ID,
		Username:      t.Application.Username,
		Scholarship:   t.Application.Scholarship,
		From:          string(t.From),
		To:            string(t.To),
		ScholarStatus: string(t.ScholarStatus),
		Timestamp:     time.Now().UTC(),
	}
}

func (m *ApplicationStatusMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ApplicationStatusMessageFromJSON(data []byte) (*ApplicationStatusMessage, error) {
	var msg ApplicationStatusMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
