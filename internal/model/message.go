package model

import "time"

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Username  string    `gorm:"size:255;not null" json:"username"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
