package models

import "time"

// Tip represents a voluntary transfer between users, optionally tied to
// a post or message. Tip records are append-only.
type Tip struct {
	ID         int       `json:"id" db:"id"`
	SenderID   int       `json:"sender_id" db:"sender_id"`
	ReceiverID int       `json:"receiver_id" db:"receiver_id"`
	Amount     int64     `json:"amount" db:"amount"`
	PostID     *int      `json:"post_id,omitempty" db:"post_id"`
	MessageID  *int      `json:"message_id,omitempty" db:"message_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PurchasedContent is the unlock receipt for a premium post or PPV
// message. Exactly one of PostID and MessageID is set; existence implies
// permanent access for the buyer.
type PurchasedContent struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	PostID    *int      `json:"post_id,omitempty" db:"post_id"`
	MessageID *int      `json:"message_id,omitempty" db:"message_id"`
	Amount    int64     `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
