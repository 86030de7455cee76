package services

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/store"
)

type UserService struct {
	store     store.Store
	validator *validator.Validate
}

func NewUserService(s store.Store) *UserService {
	return &UserService{
		store:     s,
		validator: validator.New(),
	}
}

// UpdateProfileRequest represents the profile update payload
// @Description Profile update structure
type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"omitempty,min=2" example:"Alice Doe"` // Display name
	Bio       string `json:"bio" validate:"max=500" example:"Creator of things"`  // Profile bio
	AvatarURL string `json:"avatar_url" example:"/static/avatars/1.png"`          // Avatar URL
}

// PublicProfile is a user without credentials or wallet state.
type PublicProfile struct {
	ID         int    `json:"id" example:"1"`
	Username   string `json:"username" example:"alice"`
	Name       string `json:"name" example:"Alice Doe"`
	Bio        string `json:"bio" example:"Creator of things"`
	Role       string `json:"role" example:"user"`
	IsVerified bool   `json:"is_verified" example:"true"`
	AvatarURL  string `json:"avatar_url" example:"/static/avatars/1.png"`
	PostCount  int    `json:"post_count" example:"12"`
}

// GetProfile returns a user's public profile
// @Summary Get a user profile
// @Description Get a user's public profile by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} PublicProfile "Profile"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [get]
func (s *UserService) GetProfile(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}

	user, err := s.store.GetUser(r.Context(), targetID)
	if err != nil {
		SendErrorResponse(w, "User not found", storeErrorStatus(err), nil)
		return
	}

	posts, err := s.store.ListPostsByUser(r.Context(), targetID)
	if err != nil {
		log.Printf("[USER] Post count lookup failed for user %d: %v", targetID, err)
		SendErrorResponse(w, "Failed to fetch profile", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, PublicProfile{
		ID:         user.ID,
		Username:   user.Username,
		Name:       user.Name,
		Bio:        user.Bio,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		AvatarURL:  user.AvatarURL,
		PostCount:  len(posts),
	})
}

// UpdateProfile updates the caller's profile
// @Summary Update profile
// @Description Update the caller's display name, bio and avatar. Username, role, verification and balance are not touchable here.
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile update"
// @Success 200 {object} models.User "Updated user"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /users/me [put]
func (s *UserService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		SendErrorResponse(w, "User not found", storeErrorStatus(err), nil)
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		log.Printf("[USER] Profile update failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to update profile", storeErrorStatus(err), nil)
		return
	}

	sendJSON(w, http.StatusOK, user)
}

// VerifyUser marks a user as verified
// @Summary Verify a user
// @Description Mark a user as verified, allowing them to send tips (admin only)
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User "Verified user"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/users/{id}/verify [put]
func (s *UserService) VerifyUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}

	user, err := s.store.GetUser(r.Context(), targetID)
	if err != nil {
		SendErrorResponse(w, "User not found", storeErrorStatus(err), nil)
		return
	}

	user.IsVerified = true
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		log.Printf("[USER] Verification failed for user %d: %v", targetID, err)
		SendErrorResponse(w, "Failed to verify user", storeErrorStatus(err), nil)
		return
	}

	log.Printf("[USER] User %d verified", targetID)
	sendJSON(w, http.StatusOK, user)
}

// GetStats returns platform statistics
// @Summary Get platform stats
// @Description Get user, post, subscriber and earnings totals (admin only)
// @Tags admin
// @Produce json
// @Success 200 {object} store.Stats "Platform stats"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Router /admin/stats [get]
func (s *UserService) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		log.Printf("[USER] Stats fetch failed: %v", err)
		SendErrorResponse(w, "Failed to fetch stats", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, stats)
}
