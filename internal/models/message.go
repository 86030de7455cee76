package models

import "time"

// Message represents a direct message. PPV messages start locked and the
// IsUnlocked flag transitions false to true exactly once, on purchase.
type Message struct {
	ID         int       `json:"id" db:"id"`
	SenderID   int       `json:"sender_id" db:"sender_id"`
	ReceiverID int       `json:"receiver_id" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	IsPPV      bool      `json:"is_ppv" db:"is_ppv"`
	PPVPrice   int64     `json:"ppv_price" db:"ppv_price"`
	IsUnlocked bool      `json:"is_unlocked" db:"is_unlocked"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Conversation pairs a peer user with the most recent message exchanged
type Conversation struct {
	UserID      int     `json:"user_id"`
	User        *User   `json:"user,omitempty"`
	LastMessage Message `json:"last_message"`
}
