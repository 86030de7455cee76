package models

import "time"

// CreatorRequest status values
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusDeclined  = "declined"
	RequestStatusCompleted = "completed"
)

// CreatorRequest represents a user-submitted custom content request that
// the creator (admin) responds to.
type CreatorRequest struct {
	ID            int       `json:"id" db:"id"`
	UserID        int       `json:"user_id" db:"user_id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	IsPublic      bool      `json:"is_public" db:"is_public"`
	Status        string    `json:"status" db:"status"`
	AdminResponse string    `json:"admin_response" db:"admin_response"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
