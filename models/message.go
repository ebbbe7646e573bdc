package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// Message represents a warble posted by a user
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:140;not null"`
	Timestamp time.Time `gorm:"not null;index"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by GORM
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate stamps the message and enforces the text rules
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Text == "" {
		return fmt.Errorf("%w: text", ErrMissingField)
	}
	if utf8.RuneCountInString(m.Text) > MaxMessageLength {
		return ErrTextTooLong
	}
	if m.UserID == 0 {
		return fmt.Errorf("%w: user_id", ErrMissingField)
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
