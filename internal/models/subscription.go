package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Plan duration values
const (
	DurationWeekly  = "weekly"
	DurationMonthly = "monthly"
	DurationYearly  = "yearly"
)

// SubscriptionPlan represents a purchasable subscription tier
type SubscriptionPlan struct {
	ID       int      `json:"id" db:"id"`
	Name     string   `json:"name" db:"name"`
	Duration string   `json:"duration" db:"duration"` // weekly, monthly, yearly
	Price    int64    `json:"price" db:"price"`       // in cents
	Features Features `json:"features" db:"features"`
}

// Subscription represents a user's time-bounded subscription to a plan.
// At most one row per user is active at a time; subscribing deactivates
// earlier rows.
type Subscription struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	PlanID    int       `json:"plan_id" db:"plan_id"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	IsActive  bool      `json:"is_active" db:"is_active"`
}

// Features type for JSONB plan feature lists
type Features []string

// Value implements driver.Valuer for Features
func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for Features
func (f *Features) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(b, f)
}
