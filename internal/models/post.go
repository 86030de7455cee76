package models

import "time"

// Post represents a feed post. Premium posts carry a one-time unlock
// price in cents and their content is redacted for viewers without a
// purchase receipt or active subscription.
type Post struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Content      string    `json:"content" db:"content"`
	MediaURL     string    `json:"media_url" db:"media_url"`
	IsPremium    bool      `json:"is_premium" db:"is_premium"`
	PremiumPrice int64     `json:"premium_price" db:"premium_price"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Comment represents a comment on a post
type Comment struct {
	ID        int       `json:"id" db:"id"`
	PostID    int       `json:"post_id" db:"post_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Like represents a user liking a post, at most one per (user, post)
type Like struct {
	ID        int       `json:"id" db:"id"`
	PostID    int       `json:"post_id" db:"post_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
