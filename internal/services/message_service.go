package services

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

type MessageService struct {
	store     store.Store
	validator *validator.Validate
}

func NewMessageService(s store.Store) *MessageService {
	return &MessageService{
		store:     s,
		validator: validator.New(),
	}
}

// SendMessageRequest represents the message payload
// @Description Message structure
type SendMessageRequest struct {
	ReceiverID int    `json:"receiver_id" validate:"required" example:"1"` // Receiving user ID
	Content    string `json:"content" validate:"required" example:"hey"`   // Message body
	IsPPV      bool   `json:"is_ppv" example:"false"`                      // Pay-per-view flag
	PPVPrice   int64  `json:"ppv_price" validate:"gte=0" example:"0"`      // PPV price in cents
}

// redactMessage hides locked PPV content from the receiver. The sender
// always sees their own message.
func redactMessage(viewerID int, msg models.Message) models.Message {
	if msg.IsPPV && !msg.IsUnlocked && msg.SenderID != viewerID {
		msg.Content = ""
	}
	return msg
}

// SendMessage sends a direct message
// @Summary Send a message
// @Description Send a direct message. Messaging the platform account requires an active subscription; PPV messages can only be sent by admins.
// @Tags messages
// @Accept json
// @Produce json
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} models.Message "Message sent"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Subscription required or PPV not allowed"
// @Failure 404 {object} ErrorResponse "Receiver not found"
// @Router /messages [post]
func (s *MessageService) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if req.ReceiverID == userID {
		SendErrorResponse(w, "Cannot message yourself", http.StatusBadRequest, nil)
		return
	}

	sender, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	receiver, err := s.store.GetUser(r.Context(), req.ReceiverID)
	if err != nil {
		SendErrorResponse(w, "Receiver not found", storeErrorStatus(err), nil)
		return
	}

	if req.IsPPV && !sender.IsAdmin() {
		SendErrorResponse(w, "Only the platform account can send pay-per-view messages", http.StatusForbidden, nil)
		return
	}

	// Fans need an active subscription to reach the platform account.
	if receiver.IsAdmin() && !sender.IsAdmin() {
		if _, err := s.store.GetActiveSubscription(r.Context(), userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				SendErrorResponse(w, "An active subscription is required to send messages", http.StatusForbidden, nil)
				return
			}
			SendErrorResponse(w, "Failed to send message", http.StatusInternalServerError, nil)
			return
		}
	}

	msg := &models.Message{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		IsPPV:      req.IsPPV,
		PPVPrice:   req.PPVPrice,
	}
	if !msg.IsPPV {
		msg.PPVPrice = 0
	}

	if err := s.store.CreateMessage(r.Context(), msg); err != nil {
		log.Printf("[MESSAGE] Send failed from user %d to %d: %v", userID, req.ReceiverID, err)
		SendErrorResponse(w, "Failed to send message", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[MESSAGE] User %d messaged user %d (ppv=%t)", userID, req.ReceiverID, msg.IsPPV)
	sendJSON(w, http.StatusCreated, msg)
}

// ListConversations lists the caller's conversations
// @Summary List conversations
// @Description List the caller's conversations with the latest message of each, newest first
// @Tags messages
// @Produce json
// @Success 200 {array} models.Conversation "Conversations"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /conversations [get]
func (s *MessageService) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	conversations, err := s.store.ListConversations(r.Context(), userID)
	if err != nil {
		log.Printf("[MESSAGE] Conversation list failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch conversations", http.StatusInternalServerError, nil)
		return
	}

	for i := range conversations {
		conversations[i].LastMessage = redactMessage(userID, conversations[i].LastMessage)
		if peer, err := s.store.GetUser(r.Context(), conversations[i].UserID); err == nil {
			conversations[i].User = peer
		}
	}

	sendJSON(w, http.StatusOK, conversations)
}

// ListMessages lists messages with another user
// @Summary List messages
// @Description List messages between the caller and another user, oldest first. Locked PPV bodies are hidden.
// @Tags messages
// @Produce json
// @Param userId path int true "Other user ID"
// @Success 200 {array} models.Message "Messages"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /messages/{userId} [get]
func (s *MessageService) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	otherID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}

	messages, err := s.store.ListMessagesBetween(r.Context(), userID, otherID)
	if err != nil {
		log.Printf("[MESSAGE] List failed between users %d and %d: %v", userID, otherID, err)
		SendErrorResponse(w, "Failed to fetch messages", http.StatusInternalServerError, nil)
		return
	}

	for i := range messages {
		messages[i] = redactMessage(userID, messages[i])
	}

	sendJSON(w, http.StatusOK, messages)
}
