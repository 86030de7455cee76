package services

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fanvault/backend/internal/audit"
	"github.com/fanvault/backend/internal/metrics"
	"github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

// WalletService owns balance reads and the paid-content unlock flow.
// All money movement goes through the store's atomic primitives.
type WalletService struct {
	store store.Store
	audit *audit.Logger
}

func NewWalletService(s store.Store, auditLogger *audit.Logger) *WalletService {
	return &WalletService{store: s, audit: auditLogger}
}

// WalletResponse represents the wallet balance payload
// @Description Wallet balance in integer cents
type WalletResponse struct {
	Balance int64 `json:"balance" example:"2500"` // Balance in cents
}

// GetWallet returns the caller's balance
// @Summary Get wallet balance
// @Description Get the authenticated user's wallet balance in cents
// @Tags wallet
// @Produce json
// @Success 200 {object} WalletResponse "Wallet balance"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /wallet [get]
func (s *WalletService) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	balance, err := s.store.Balance(r.Context(), userID)
	if err != nil {
		log.Printf("[WALLET] Balance lookup failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch balance", storeErrorStatus(err), nil)
		return
	}

	sendJSON(w, http.StatusOK, WalletResponse{Balance: balance})
}

// GetWalletHistory returns recent ledger entries
// @Summary Get wallet history
// @Description Get the authenticated user's recent ledger entries, newest first
// @Tags wallet
// @Produce json
// @Param limit query int false "Maximum entries to return" default(50)
// @Success 200 {array} models.LedgerEntry "Ledger entries"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /wallet/history [get]
func (s *WalletService) GetWalletHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	entries, err := s.store.ListLedgerEntries(r.Context(), userID, limit)
	if err != nil {
		log.Printf("[WALLET] History lookup failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch history", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, entries)
}

// ListPurchases returns the caller's unlock receipts
// @Summary List purchases
// @Description List the authenticated user's unlock receipts, newest first. With post_id or message_id set, answers whether that item is unlocked instead.
// @Tags wallet
// @Produce json
// @Param post_id query int false "Check a single post receipt"
// @Param message_id query int false "Check a single message receipt"
// @Success 200 {array} models.PurchasedContent "Purchase receipts"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /purchases [get]
func (s *WalletService) ListPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	// Receipt check for a single item.
	postID, _ := strconv.Atoi(r.URL.Query().Get("post_id"))
	messageID, _ := strconv.Atoi(r.URL.Query().Get("message_id"))
	if postID > 0 || messageID > 0 {
		owned, err := s.store.HasPurchased(r.Context(), userID, postID, messageID)
		if err != nil {
			log.Printf("[WALLET] Receipt check failed for user %d: %v", userID, err)
			SendErrorResponse(w, "Failed to check purchase", http.StatusInternalServerError, nil)
			return
		}
		sendJSON(w, http.StatusOK, map[string]bool{"purchased": owned})
		return
	}

	purchases, err := s.store.ListPurchasesByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[WALLET] Purchase list failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch purchases", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, purchases)
}

// UnlockPost unlocks a premium post for the caller
// @Summary Unlock a premium post
// @Description Pay the post's price to permanently unlock it. A repeat call is a no-op.
// @Tags wallet
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string "Unlocked"
// @Failure 400 {object} ErrorResponse "Not premium or insufficient balance"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id}/unlock [post]
func (s *WalletService) UnlockPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid post ID", http.StatusBadRequest, nil)
		return
	}

	post, err := s.store.GetPost(r.Context(), postID)
	if err != nil {
		SendErrorResponse(w, "Post not found", storeErrorStatus(err), nil)
		return
	}

	if !post.IsPremium {
		SendErrorResponse(w, "Post is not premium", http.StatusBadRequest, nil)
		return
	}

	// The author always has access to their own post.
	if post.UserID == userID {
		sendJSON(w, http.StatusOK, map[string]string{"message": "Already unlocked"})
		return
	}

	if owned, err := s.store.HasPurchased(r.Context(), userID, postID, 0); err == nil && owned {
		sendJSON(w, http.StatusOK, map[string]string{"message": "Already unlocked"})
		return
	}

	reference := uuid.New().String()
	purchase := &models.PurchasedContent{UserID: userID, PostID: &post.ID, Amount: post.PremiumPrice}
	err = s.store.PurchaseContent(r.Context(), purchase, post.UserID, reference)
	metrics.RecordWalletOperation("unlock_post", post.PremiumPrice, err)
	if err != nil {
		if errors.Is(err, store.ErrDuplicatePurchase) {
			sendJSON(w, http.StatusOK, map[string]string{"message": "Already unlocked"})
			return
		}
		s.audit.LogError(reference, userID, err)
		log.Printf("[WALLET] Post unlock failed for user %d, post %d: %v", userID, postID, err)
		if errors.Is(err, store.ErrInsufficientBalance) {
			SendErrorResponse(w, "Insufficient balance", http.StatusBadRequest, nil)
			return
		}
		SendErrorResponse(w, "Failed to unlock post", storeErrorStatus(err), nil)
		return
	}

	s.audit.LogTransfer(reference, userID, post.UserID, post.PremiumPrice, "SUCCESS")
	log.Printf("[WALLET] User %d unlocked post %d for %d cents", userID, postID, post.PremiumPrice)
	sendJSON(w, http.StatusOK, map[string]string{"message": "Post unlocked successfully"})
}

// UnlockMessage unlocks a PPV message for the caller
// @Summary Unlock a PPV message
// @Description Pay the message's price to reveal it. Only the receiver may unlock; proceeds go to the platform account.
// @Tags wallet
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} map[string]string "Unlocked"
// @Failure 400 {object} ErrorResponse "Not PPV or insufficient balance"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the receiver"
// @Failure 404 {object} ErrorResponse "Message not found"
// @Router /messages/{id}/unlock [post]
func (s *WalletService) UnlockMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	messageID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid message ID", http.StatusBadRequest, nil)
		return
	}

	msg, err := s.store.GetMessage(r.Context(), messageID)
	if err != nil {
		SendErrorResponse(w, "Message not found", storeErrorStatus(err), nil)
		return
	}

	if msg.ReceiverID != userID {
		SendErrorResponse(w, "Only the receiver can unlock this message", http.StatusForbidden, nil)
		return
	}

	if !msg.IsPPV {
		SendErrorResponse(w, "Message is not pay-per-view", http.StatusBadRequest, nil)
		return
	}

	if owned, err := s.store.HasPurchased(r.Context(), userID, 0, messageID); err == nil && owned {
		sendJSON(w, http.StatusOK, map[string]string{"message": "Already unlocked"})
		return
	}

	// PPV proceeds settle to the platform account rather than the sender.
	platform, err := s.store.GetUserByUsername(r.Context(), "admin")
	if err != nil {
		log.Printf("[WALLET] Platform account missing: %v", err)
		SendErrorResponse(w, "Failed to unlock message", http.StatusInternalServerError, nil)
		return
	}

	reference := uuid.New().String()
	purchase := &models.PurchasedContent{UserID: userID, MessageID: &msg.ID, Amount: msg.PPVPrice}
	err = s.store.PurchaseContent(r.Context(), purchase, platform.ID, reference)
	metrics.RecordWalletOperation("unlock_message", msg.PPVPrice, err)
	if err != nil {
		if errors.Is(err, store.ErrDuplicatePurchase) {
			sendJSON(w, http.StatusOK, map[string]string{"message": "Already unlocked"})
			return
		}
		s.audit.LogError(reference, userID, err)
		log.Printf("[WALLET] Message unlock failed for user %d, message %d: %v", userID, messageID, err)
		if errors.Is(err, store.ErrInsufficientBalance) {
			SendErrorResponse(w, "Insufficient balance", http.StatusBadRequest, nil)
			return
		}
		SendErrorResponse(w, "Failed to unlock message", storeErrorStatus(err), nil)
		return
	}

	s.audit.LogTransfer(reference, userID, platform.ID, msg.PPVPrice, "SUCCESS")
	log.Printf("[WALLET] User %d unlocked message %d for %d cents", userID, messageID, msg.PPVPrice)
	sendJSON(w, http.StatusOK, map[string]string{"message": "Message unlocked successfully"})
}
