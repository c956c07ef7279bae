package model

import "time"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// MessageEvent records one lifecycle change of a message. It is both the
// queue payload and the persisted audit row.
type MessageEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MessageID  uint      `gorm:"not null;index" json:"message_id"`
	Action     string    `gorm:"size:16;not null" json:"action"`
	Body       string    `gorm:"type:text" json:"body"`
	Username   string    `gorm:"size:255" json:"username"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
}

func NewMessageEvent(action string, msg Message, at time.Time) MessageEvent {
	return MessageEvent{
		MessageID:  msg.ID,
		Action:     action,
		Body:       msg.Body,
		Username:   msg.Username,
		OccurredAt: at,
	}
}
