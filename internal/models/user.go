package models

import "time"

// Role values for User.Role
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a platform account. WalletBalance is cent-denominated
// and is only ever mutated through the store's ledger primitives.
type User struct {
	ID            int       `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Password      string    `json:"-" db:"password"`
	Name          string    `json:"name" db:"name"`
	Bio           string    `json:"bio" db:"bio"`
	Role          string    `json:"role" db:"role"`
	WalletBalance int64     `json:"wallet_balance" db:"wallet_balance"`
	IsVerified    bool      `json:"is_verified" db:"is_verified"`
	AvatarURL     string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
