package services

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fanvault/backend/internal/audit"
	"github.com/fanvault/backend/internal/metrics"
	"github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

type SubscriptionService struct {
	store     store.Store
	audit     *audit.Logger
	validator *validator.Validate
}

func NewSubscriptionService(s store.Store, auditLogger *audit.Logger) *SubscriptionService {
	return &SubscriptionService{
		store:     s,
		audit:     auditLogger,
		validator: validator.New(),
	}
}

// SubscribeRequest represents the subscribe request payload
// @Description Subscribe request structure
type SubscribeRequest struct {
	PlanID int `json:"plan_id" validate:"required" example:"2"` // Subscription plan ID
}

// planEndDate computes when a subscription starting at start runs out.
// Weekly plans add exactly seven days; monthly and yearly plans follow
// calendar arithmetic.
func planEndDate(start time.Time, duration string) time.Time {
	switch duration {
	case models.DurationWeekly:
		return start.AddDate(0, 0, 7)
	case models.DurationMonthly:
		return start.AddDate(0, 1, 0)
	case models.DurationYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start
	}
}

// ListPlans lists available subscription plans
// @Summary List subscription plans
// @Description List all available subscription plans
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.SubscriptionPlan "Plans"
// @Router /subscription-plans [get]
func (s *SubscriptionService) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		log.Printf("[SUBSCRIPTION] Failed to list plans: %v", err)
		SendErrorResponse(w, "Failed to fetch plans", http.StatusInternalServerError, nil)
		return
	}
	sendJSON(w, http.StatusOK, plans)
}

// Subscribe charges the caller for a plan and activates it
// @Summary Subscribe to a plan
// @Description Charge the caller the plan price and create an active subscription. Any prior active subscription is retired.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body SubscribeRequest true "Subscribe request"
// @Success 201 {object} models.Subscription "Subscription created"
// @Failure 400 {object} ErrorResponse "Insufficient balance"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Plan not found"
// @Router /subscribe [post]
func (s *SubscriptionService) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	plan, err := s.store.GetPlan(r.Context(), req.PlanID)
	if err != nil {
		SendErrorResponse(w, "Plan not found", storeErrorStatus(err), nil)
		return
	}

	// Subscription revenue settles to the platform account.
	platform, err := s.store.GetUserByUsername(r.Context(), "admin")
	if err != nil {
		log.Printf("[SUBSCRIPTION] Platform account missing: %v", err)
		SendErrorResponse(w, "Failed to subscribe", http.StatusInternalServerError, nil)
		return
	}
	if platform.ID == userID {
		SendErrorResponse(w, "Platform account cannot subscribe", http.StatusBadRequest, nil)
		return
	}

	reference := uuid.New().String()
	err = s.store.Transfer(r.Context(), userID, platform.ID, plan.Price, reference)
	metrics.RecordWalletOperation("subscription", plan.Price, err)
	if err != nil {
		s.audit.LogError(reference, userID, err)
		log.Printf("[SUBSCRIPTION] Charge failed for user %d, plan %d: %v", userID, plan.ID, err)
		if errors.Is(err, store.ErrInsufficientBalance) {
			SendErrorResponse(w, "Insufficient balance", http.StatusBadRequest, nil)
			return
		}
		SendErrorResponse(w, "Failed to subscribe", storeErrorStatus(err), nil)
		return
	}

	now := time.Now()
	sub := &models.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		StartDate: now,
		EndDate:   planEndDate(now, plan.Duration),
	}
	if err := s.store.CreateSubscription(r.Context(), sub); err != nil {
		log.Printf("[SUBSCRIPTION] Row creation failed after charge %s: %v", reference, err)
		SendErrorResponse(w, "Failed to subscribe", http.StatusInternalServerError, nil)
		return
	}

	s.audit.LogTransfer(reference, userID, platform.ID, plan.Price, "SUCCESS")
	log.Printf("[SUBSCRIPTION] User %d subscribed to plan %d until %s", userID, plan.ID, sub.EndDate.Format(time.RFC3339))
	sendJSON(w, http.StatusCreated, sub)
}

// GetMySubscription returns the caller's active subscription
// @Summary Get active subscription
// @Description Get the caller's active, unexpired subscription
// @Tags subscriptions
// @Produce json
// @Success 200 {object} models.Subscription "Active subscription"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "No active subscription"
// @Router /subscriptions/me [get]
func (s *SubscriptionService) GetMySubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	sub, err := s.store.GetActiveSubscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			SendErrorResponse(w, "No active subscription", http.StatusNotFound, nil)
			return
		}
		log.Printf("[SUBSCRIPTION] Lookup failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch subscription", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, sub)
}

// ListMySubscriptions returns the caller's subscription history
// @Summary List subscriptions
// @Description List all of the caller's subscriptions, newest first
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.Subscription "Subscriptions"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /subscriptions [get]
func (s *SubscriptionService) ListMySubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	subs, err := s.store.ListSubscriptionsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[SUBSCRIPTION] List failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch subscriptions", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, subs)
}
