package services

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

// RequestService handles custom content requests fans submit to the
// creator.
type RequestService struct {
	store     store.Store
	validator *validator.Validate
}

func NewRequestService(s store.Store) *RequestService {
	return &RequestService{
		store:     s,
		validator: validator.New(),
	}
}

// CreatorRequestBody represents the creator request payload
// @Description Creator request structure
type CreatorRequestBody struct {
	Title       string `json:"title" validate:"required,min=3" example:"Custom video"`           // Request title
	Description string `json:"description" validate:"required" example:"A 5 minute video of..."` // Request details
	IsPublic    bool   `json:"is_public" example:"true"`                                         // Visible to other fans
}

// RespondRequestBody represents the admin response payload
// @Description Creator request response structure
type RespondRequestBody struct {
	Status        string `json:"status" validate:"required,oneof=accepted declined completed" example:"accepted"` // New status
	AdminResponse string `json:"admin_response" example:"Happy to do this next week"`                             // Response text
}

// CreateRequest submits a new creator request
// @Summary Submit a creator request
// @Description Submit a custom content request to the creator
// @Tags requests
// @Accept json
// @Produce json
// @Param request body CreatorRequestBody true "Creator request"
// @Success 201 {object} models.CreatorRequest "Request created"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /creator-requests [post]
func (s *RequestService) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CreatorRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	creatorRequest := &models.CreatorRequest{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := s.store.CreateCreatorRequest(r.Context(), creatorRequest); err != nil {
		log.Printf("[REQUEST] Creation failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to create request", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[REQUEST] User %d submitted request %d", userID, creatorRequest.ID)
	sendJSON(w, http.StatusCreated, creatorRequest)
}

// ListMyRequests lists the caller's creator requests
// @Summary List own creator requests
// @Description List the caller's creator requests, newest first
// @Tags requests
// @Produce json
// @Success 200 {array} models.CreatorRequest "Requests"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /creator-requests/mine [get]
func (s *RequestService) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	requests, err := s.store.ListCreatorRequestsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[REQUEST] List failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch requests", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, requests)
}

// GetRequest returns a single creator request
// @Summary Get a creator request
// @Description Get a creator request by id. Visible to its owner, admins, and everyone when public.
// @Tags requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} models.CreatorRequest "Request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not visible to the caller"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Router /creator-requests/{id} [get]
func (s *RequestService) GetRequest(w http.ResponseWriter, r *http.Request) {
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

	creatorRequest, err := s.store.GetCreatorRequest(r.Context(), requestID)
	if err != nil {
		SendErrorResponse(w, "Request not found", storeErrorStatus(err), nil)
		return
	}

	if !creatorRequest.IsPublic && creatorRequest.UserID != userID {
		caller, err := s.store.GetUser(r.Context(), userID)
		if err != nil || !caller.IsAdmin() {
			SendErrorResponse(w, "Request is not visible to you", http.StatusForbidden, nil)
			return
		}
	}

	sendJSON(w, http.StatusOK, creatorRequest)
}

// UpdateMyRequest lets the requester edit their own request
// @Summary Edit own creator request
// @Description Edit the title, description and visibility of the caller's own request. Status and response are admin-only.
// @Tags requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body CreatorRequestBody true "Updated request"
// @Success 200 {object} models.CreatorRequest "Updated request"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the requester"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Router /creator-requests/{id} [put]
func (s *RequestService) UpdateMyRequest(w http.ResponseWriter, r *http.Request) {
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

	var req CreatorRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	creatorRequest, err := s.store.GetCreatorRequest(r.Context(), requestID)
	if err != nil {
		SendErrorResponse(w, "Request not found", storeErrorStatus(err), nil)
		return
	}
	if creatorRequest.UserID != userID {
		SendErrorResponse(w, "Only the requester can edit this request", http.StatusForbidden, nil)
		return
	}

	creatorRequest.Title = req.Title
	creatorRequest.Description = req.Description
	creatorRequest.IsPublic = req.IsPublic
	if err := s.store.UpdateCreatorRequest(r.Context(), creatorRequest); err != nil {
		log.Printf("[REQUEST] Edit failed for request %d: %v", requestID, err)
		SendErrorResponse(w, "Failed to update request", storeErrorStatus(err), nil)
		return
	}

	sendJSON(w, http.StatusOK, creatorRequest)
}

// ListPublicRequests lists publicly visible creator requests
// @Summary List public creator requests
// @Description List creator requests their authors made public, newest first
// @Tags requests
// @Produce json
// @Success 200 {array} models.CreatorRequest "Public requests"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /creator-requests [get]
func (s *RequestService) ListPublicRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.ListPublicCreatorRequests(r.Context())
	if err != nil {
		log.Printf("[REQUEST] Public list failed: %v", err)
		SendErrorResponse(w, "Failed to fetch requests", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, requests)
}

// ListAllRequests lists every creator request
// @Summary List all creator requests
// @Description List all creator requests regardless of visibility (admin only)
// @Tags admin
// @Produce json
// @Success 200 {array} models.CreatorRequest "All requests"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Router /admin/creator-requests [get]
func (s *RequestService) ListAllRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.ListAllCreatorRequests(r.Context())
	if err != nil {
		log.Printf("[REQUEST] Admin list failed: %v", err)
		SendErrorResponse(w, "Failed to fetch requests", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, requests)
}

// RespondToRequest updates a creator request's status and response
// @Summary Respond to a creator request
// @Description Accept, decline or complete a creator request with an optional response message (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body RespondRequestBody true "Response"
// @Success 200 {object} models.CreatorRequest "Updated request"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Router /admin/creator-requests/{id} [put]
func (s *RequestService) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid request ID", http.StatusBadRequest, nil)
		return
	}

	var req RespondRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	creatorRequest, err := s.store.GetCreatorRequest(r.Context(), requestID)
	if err != nil {
		SendErrorResponse(w, "Request not found", storeErrorStatus(err), nil)
		return
	}

	creatorRequest.Status = req.Status
	creatorRequest.AdminResponse = req.AdminResponse
	if err := s.store.UpdateCreatorRequest(r.Context(), creatorRequest); err != nil {
		log.Printf("[REQUEST] Response failed for request %d: %v", requestID, err)
		SendErrorResponse(w, "Failed to update request", storeErrorStatus(err), nil)
		return
	}

	log.Printf("[REQUEST] Request %d marked %s", requestID, req.Status)
	sendJSON(w, http.StatusOK, creatorRequest)
}
