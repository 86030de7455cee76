package models

import "time"

// PaymentRequest status values. The transition pending -> approved or
// pending -> rejected is terminal; the store rejects re-resolution.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// PaymentRequest represents a manual wallet top-up request resolved by
// an admin. Approval credits the requester's balance exactly once.
type PaymentRequest struct {
	ID            int       `json:"id" db:"id"`
	UserID        int       `json:"user_id" db:"user_id"`
	Amount        int64     `json:"amount" db:"amount"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// LedgerEntry records a single balance movement. Every transfer writes a
// DEBIT row for the payer and a CREDIT row for the payee under the same
// reference; admin top-ups write a single CREDIT row.
type LedgerEntry struct {
	ID        int       `json:"id" db:"id"`
	Reference string    `json:"reference" db:"reference"`
	UserID    int       `json:"user_id" db:"user_id"`
	Amount    int64     `json:"amount" db:"amount"`         // in cents, negative for debits
	EntryType string    `json:"entry_type" db:"entry_type"` // DEBIT or CREDIT
	Balance   int64     `json:"balance" db:"balance"`       // balance after the movement
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
