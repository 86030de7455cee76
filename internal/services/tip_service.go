package services

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fanvault/backend/internal/audit"
	"github.com/fanvault/backend/internal/metrics"
	"github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

type TipService struct {
	store     store.Store
	audit     *audit.Logger
	validator *validator.Validate
}

func NewTipService(s store.Store, auditLogger *audit.Logger) *TipService {
	return &TipService{
		store:     s,
		audit:     auditLogger,
		validator: validator.New(),
	}
}

// TipRequest represents the tip request payload
// @Description Tip request structure
type TipRequest struct {
	ReceiverID int   `json:"receiver_id" validate:"required" example:"2"`   // Receiving user ID
	Amount     int64 `json:"amount" validate:"required,gt=0" example:"500"` // Amount in cents
	PostID     *int  `json:"post_id,omitempty" example:"3"`                 // Optional post reference
	MessageID  *int  `json:"message_id,omitempty" example:"7"`              // Optional message reference
}

// SendTip transfers funds from the caller to another user
// @Summary Send a tip
// @Description Transfer funds to another user. The sender must be verified.
// @Tags tips
// @Accept json
// @Produce json
// @Param request body TipRequest true "Tip request"
// @Success 201 {object} models.Tip "Tip sent"
// @Failure 400 {object} ErrorResponse "Invalid amount or insufficient balance"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Sender not verified"
// @Failure 404 {object} ErrorResponse "Receiver not found"
// @Router /tips [post]
func (s *TipService) SendTip(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req TipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Printf("[TIP] Invalid request from user %d: %v", userID, err)
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if req.ReceiverID == userID {
		SendErrorResponse(w, "Cannot tip yourself", http.StatusBadRequest, nil)
		return
	}

	sender, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	if !sender.IsVerified {
		log.Printf("[TIP] Unverified user %d attempted to tip", userID)
		SendErrorResponse(w, "Only verified users can send tips", http.StatusForbidden, nil)
		return
	}

	if _, err := s.store.GetUser(r.Context(), req.ReceiverID); err != nil {
		SendErrorResponse(w, "Receiver not found", storeErrorStatus(err), nil)
		return
	}

	reference := uuid.New().String()
	err = s.store.Transfer(r.Context(), userID, req.ReceiverID, req.Amount, reference)
	metrics.RecordWalletOperation("tip", req.Amount, err)
	if err != nil {
		s.audit.LogError(reference, userID, err)
		log.Printf("[TIP] Transfer failed from user %d to %d: %v", userID, req.ReceiverID, err)
		if errors.Is(err, store.ErrInsufficientBalance) {
			SendErrorResponse(w, "Insufficient balance", http.StatusBadRequest, nil)
			return
		}
		SendErrorResponse(w, "Failed to send tip", storeErrorStatus(err), nil)
		return
	}

	tip := &models.Tip{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		PostID:     req.PostID,
		MessageID:  req.MessageID,
	}
	if err := s.store.CreateTip(r.Context(), tip); err != nil {
		// Funds already moved; the ledger entries still carry the trail.
		log.Printf("[TIP] Tip record creation failed after transfer %s: %v", reference, err)
	}

	s.audit.LogTransfer(reference, userID, req.ReceiverID, req.Amount, "SUCCESS")
	log.Printf("[TIP] User %d tipped user %d %d cents", userID, req.ReceiverID, req.Amount)
	sendJSON(w, http.StatusCreated, tip)
}

// ListReceivedTips lists tips received by the caller
// @Summary List received tips
// @Description List tips the authenticated user has received, newest first
// @Tags tips
// @Produce json
// @Success 200 {array} models.Tip "Tips"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /tips/received [get]
func (s *TipService) ListReceivedTips(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	tips, err := s.store.ListTipsByReceiver(r.Context(), userID)
	if err != nil {
		log.Printf("[TIP] Failed to list tips for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch tips", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, tips)
}
