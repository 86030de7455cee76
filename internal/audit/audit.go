package audit

import (
	"encoding/json"
	"log"
	"time"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Reference string    `json:"reference"`
	UserID    int       `json:"user_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// Logger emits a structured JSON line for every wallet movement so the
// ledger can be reconciled from the log stream alone.
type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (a *Logger) LogTransfer(reference string, fromID, toID int, amount int64, status string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "TRANSFER",
		Reference: reference,
		Amount:    amount,
		Status:    status,
		Details: map[string]int{
			"from_user": fromID,
			"to_user":   toID,
		},
	})
}

func (a *Logger) LogCredit(reference string, userID int, amount int64, status string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "CREDIT",
		Reference: reference,
		UserID:    userID,
		Amount:    amount,
		Status:    status,
	})
}

func (a *Logger) LogResolution(reference string, requestID, userID int, status string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "PAYMENT_REQUEST",
		Reference: reference,
		UserID:    userID,
		Status:    status,
		Details:   map[string]int{"request_id": requestID},
	})
}

func (a *Logger) LogError(reference string, userID int, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "ERROR",
		Reference: reference,
		UserID:    userID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
