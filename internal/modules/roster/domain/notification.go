package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type NotificationKind string

const (
	NotificationAuto NotificationKind = "auto"
	NotificationCall NotificationKind = "call"

	CallMessage = "go go!"
)

func ReminderMessage(lead time.Duration) string {
	return fmt.Sprintf("game starts in %d mins!", int(lead.Minutes()))
}

// Notification is the payload of a scheduled job. The text itself is
// rendered when the job fires so mentions match the roster at that time.
type Notification struct {
	RosterID int64            `json:"rosterId"`
	ChatID   int64            `json:"chatId"`
	Kind     NotificationKind `json:"kind"`
	Sender   string           `json:"sender,omitempty"`
	Message  string           `json:"message"`
	Timezone string           `json:"timezone,omitempty"`
}

func (n Notification) Prefix() string {
	if n.Kind == NotificationAuto || n.Sender == "" {
		return string(NotificationAuto)
	}
	return n.Sender
}

func (n Notification) Marshal() ([]byte, error) {
	return json.Marshal(n)
}

func UnmarshalNotification(payload []byte) (Notification, error) {
	var n Notification
	err := json.Unmarshal(payload, &n)
	return n, err
}
