package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/fanvault/backend/internal/audit"
	"github.com/fanvault/backend/internal/config"
	"github.com/fanvault/backend/internal/metrics"
	"github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

type PaymentService struct {
	store     store.Store
	redis     *redis.Client
	audit     *audit.Logger
	qrConfig  *config.QRConfig
	validator *validator.Validate
}

func NewPaymentService(s store.Store, redisClient *redis.Client, auditLogger *audit.Logger, qrConfig *config.QRConfig) *PaymentService {
	return &PaymentService{
		store:     s,
		redis:     redisClient,
		audit:     auditLogger,
		qrConfig:  qrConfig,
		validator: validator.New(),
	}
}

// PaymentRequestBody represents the top-up request payload
// @Description Payment request structure
type PaymentRequestBody struct {
	Amount        int64  `json:"amount" validate:"required,gt=0" example:"5000"`             // Amount in cents
	PaymentMethod string `json:"payment_method" validate:"required" example:"bank_transfer"` // Payment method
}

// ResolveRequestBody represents the admin resolution payload
// @Description Payment request resolution structure
type ResolveRequestBody struct {
	Status string `json:"status" validate:"required,oneof=approved rejected" example:"approved"` // Resolution status
}

// CreatePaymentRequest creates a pending top-up request
// @Summary Request a top-up
// @Description Create a pending wallet top-up request for admin review
// @Tags payments
// @Accept json
// @Produce json
// @Param request body PaymentRequestBody true "Payment request"
// @Success 201 {object} models.PaymentRequest "Request created"
// @Failure 400 {object} ErrorResponse "Invalid amount"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /payment-requests [post]
func (s *PaymentService) CreatePaymentRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req PaymentRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	paymentRequest := &models.PaymentRequest{
		UserID:        userID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	}
	if err := s.store.CreatePaymentRequest(r.Context(), paymentRequest); err != nil {
		log.Printf("[PAYMENT] Request creation failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to create payment request", storeErrorStatus(err), nil)
		return
	}

	log.Printf("[PAYMENT] User %d requested top-up of %d cents via %s", userID, req.Amount, req.PaymentMethod)
	sendJSON(w, http.StatusCreated, paymentRequest)
}

// ListMyPaymentRequests lists the caller's top-up requests
// @Summary List payment requests
// @Description List the caller's top-up requests, newest first
// @Tags payments
// @Produce json
// @Success 200 {array} models.PaymentRequest "Requests"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /payment-requests [get]
func (s *PaymentService) ListMyPaymentRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	requests, err := s.store.ListPaymentRequestsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[PAYMENT] List failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch payment requests", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, requests)
}

// GetPaymentRequestQR renders a payment request as a QR code
// @Summary Get payment request QR code
// @Description Render the caller's payment request as a PNG QR code for offline settlement
// @Tags payments
// @Produce png
// @Param id path int true "Payment request ID"
// @Success 200 {file} binary "QR code PNG"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the requester"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Router /payment-requests/{id}/qr [get]
func (s *PaymentService) GetPaymentRequestQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	requestID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid request ID", http.StatusBadRequest, nil)
		return
	}

	paymentRequest, err := s.store.GetPaymentRequest(r.Context(), requestID)
	if err != nil {
		SendErrorResponse(w, "Payment request not found", storeErrorStatus(err), nil)
		return
	}
	if paymentRequest.UserID != userID {
		SendErrorResponse(w, "Not your payment request", http.StatusForbidden, nil)
		return
	}

	cacheKey := fmt.Sprintf("qr:payment_request:%d", requestID)
	if s.redis != nil {
		if cached, err := s.redis.Get(r.Context(), cacheKey).Bytes(); err == nil {
			w.Header().Set("Content-Type", "image/png")
			w.Write(cached)
			return
		}
	}

	payload, err := json.Marshal(map[string]any{
		"scheme":     s.qrConfig.PayloadScheme,
		"request_id": paymentRequest.ID,
		"user_id":    paymentRequest.UserID,
		"amount":     paymentRequest.Amount,
		"method":     paymentRequest.PaymentMethod,
		"issued_at":  time.Now().Unix(),
	})
	if err != nil {
		SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	qr, err := qrcode.New(string(payload), qrcode.Medium)
	if err != nil {
		log.Printf("[PAYMENT] QR generation failed for request %d: %v", requestID, err)
		SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(s.qrConfig.ImageSize)); err != nil {
		SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	if s.redis != nil {
		if err := s.redis.Set(r.Context(), cacheKey, buf.Bytes(), s.qrConfig.CacheTTL).Err(); err != nil {
			log.Printf("[PAYMENT] QR cache write failed for request %d: %v", requestID, err)
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// ListPendingPaymentRequests lists pending requests for admin review
// @Summary List pending payment requests
// @Description List all pending top-up requests, oldest first (admin only)
// @Tags admin
// @Produce json
// @Success 200 {array} models.PaymentRequest "Pending requests"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Router /admin/payment-requests [get]
func (s *PaymentService) ListPendingPaymentRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.ListPendingPaymentRequests(r.Context())
	if err != nil {
		log.Printf("[PAYMENT] Pending list failed: %v", err)
		SendErrorResponse(w, "Failed to fetch payment requests", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, requests)
}

// ResolvePaymentRequest approves or rejects a pending request
// @Summary Resolve a payment request
// @Description Approve or reject a pending top-up request. Approval credits the requester exactly once; resolution is terminal.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Payment request ID"
// @Param request body ResolveRequestBody true "Resolution"
// @Success 200 {object} models.PaymentRequest "Resolved request"
// @Failure 400 {object} ErrorResponse "Invalid status or already resolved"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Router /admin/payment-requests/{id} [put]
func (s *PaymentService) ResolvePaymentRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid request ID", http.StatusBadRequest, nil)
		return
	}

	var req ResolveRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	reference := uuid.New().String()
	resolved, err := s.store.ResolvePaymentRequest(r.Context(), requestID, req.Status, reference)
	credited := int64(0)
	if err == nil && resolved.Status == models.PaymentStatusApproved {
		credited = resolved.Amount
	}
	metrics.RecordWalletOperation("top_up", credited, err)
	if err != nil {
		log.Printf("[PAYMENT] Resolution failed for request %d: %v", requestID, err)
		switch {
		case errors.Is(err, store.ErrAlreadyResolved):
			SendErrorResponse(w, "Payment request already resolved", http.StatusBadRequest, nil)
		case errors.Is(err, store.ErrInvalidStatus):
			SendErrorResponse(w, "Status must be approved or rejected", http.StatusBadRequest, nil)
		default:
			SendErrorResponse(w, "Failed to resolve payment request", storeErrorStatus(err), nil)
		}
		return
	}

	s.audit.LogResolution(reference, resolved.ID, resolved.UserID, resolved.Status)
	if resolved.Status == models.PaymentStatusApproved {
		s.audit.LogCredit(reference, resolved.UserID, resolved.Amount, "SUCCESS")
	}

	log.Printf("[PAYMENT] Request %d resolved as %s", resolved.ID, resolved.Status)
	sendJSON(w, http.StatusOK, resolved)
}
