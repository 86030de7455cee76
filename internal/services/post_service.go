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

type PostService struct {
	store     store.Store
	validator *validator.Validate
}

func NewPostService(s store.Store) *PostService {
	return &PostService{
		store:     s,
		validator: validator.New(),
	}
}

// CreatePostRequest represents the post creation payload
// @Description Post creation structure
type CreatePostRequest struct {
	Content      string `json:"content" validate:"required" example:"New drop!"` // Post body
	MediaURL     string `json:"media_url" example:"/static/media/1.jpg"`         // Optional media URL
	IsPremium    bool   `json:"is_premium" example:"true"`                       // Premium gate flag
	PremiumPrice int64  `json:"premium_price" validate:"gte=0" example:"250"`    // Unlock price in cents
}

// CommentRequest represents the comment payload
// @Description Comment structure
type CommentRequest struct {
	Content string `json:"content" validate:"required" example:"Love this"` // Comment body
}

// PostResponse is a post with view-dependent lock state. Premium bodies
// are blanked for viewers without access.
type PostResponse struct {
	models.Post
	IsLocked bool `json:"is_locked" example:"true"` // True when the viewer has not unlocked the post
}

func (s *PostService) redactPost(r *http.Request, viewerID int, post models.Post) PostResponse {
	resp := PostResponse{Post: post}
	if !post.IsPremium || post.UserID == viewerID {
		return resp
	}

	if owned, err := s.store.HasPurchased(r.Context(), viewerID, post.ID, 0); err == nil && owned {
		return resp
	}

	// An active subscription opens the premium feed without per-post unlocks.
	if _, err := s.store.GetActiveSubscription(r.Context(), viewerID); err == nil {
		return resp
	}

	resp.IsLocked = true
	resp.Content = ""
	resp.MediaURL = ""
	return resp
}

// CreatePost creates a new post
// @Summary Create a post
// @Description Create a post, optionally premium-gated behind an unlock price
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} models.Post "Post created"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /posts [post]
func (s *PostService) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if req.IsPremium && req.PremiumPrice < 0 {
		SendErrorResponse(w, "Premium price must not be negative", http.StatusBadRequest, nil)
		return
	}

	post := &models.Post{
		UserID:       userID,
		Content:      req.Content,
		MediaURL:     req.MediaURL,
		IsPremium:    req.IsPremium,
		PremiumPrice: req.PremiumPrice,
	}
	if !post.IsPremium {
		post.PremiumPrice = 0
	}

	if err := s.store.CreatePost(r.Context(), post); err != nil {
		log.Printf("[POST] Creation failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to create post", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[POST] User %d created post %d (premium=%t)", userID, post.ID, post.IsPremium)
	sendJSON(w, http.StatusCreated, post)
}

// ListPosts returns the feed
// @Summary List posts
// @Description List all posts newest first. Premium bodies are hidden until unlocked.
// @Tags posts
// @Produce json
// @Success 200 {array} PostResponse "Posts"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /posts [get]
func (s *PostService) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		log.Printf("[POST] Feed fetch failed: %v", err)
		SendErrorResponse(w, "Failed to fetch posts", http.StatusInternalServerError, nil)
		return
	}

	feed := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		feed = append(feed, s.redactPost(r, userID, post))
	}
	sendJSON(w, http.StatusOK, feed)
}

// ListUserPosts returns one user's posts
// @Summary List a user's posts
// @Description List a user's posts newest first. Premium bodies are hidden until unlocked.
// @Tags posts
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} PostResponse "Posts"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id}/posts [get]
func (s *PostService) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	authorID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}

	if _, err := s.store.GetUser(r.Context(), authorID); err != nil {
		SendErrorResponse(w, "User not found", storeErrorStatus(err), nil)
		return
	}

	posts, err := s.store.ListPostsByUser(r.Context(), authorID)
	if err != nil {
		log.Printf("[POST] User feed fetch failed for user %d: %v", authorID, err)
		SendErrorResponse(w, "Failed to fetch posts", http.StatusInternalServerError, nil)
		return
	}

	feed := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		feed = append(feed, s.redactPost(r, userID, post))
	}
	sendJSON(w, http.StatusOK, feed)
}

// GetPost returns a single post
// @Summary Get a post
// @Description Get a post by id. Premium bodies are hidden until unlocked.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse "Post"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func (s *PostService) GetPost(w http.ResponseWriter, r *http.Request) {
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

	sendJSON(w, http.StatusOK, s.redactPost(r, userID, *post))
}

// DeletePost removes a post
// @Summary Delete a post
// @Description Delete a post. Only the author or an admin may delete.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string "Deleted"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id} [delete]
func (s *PostService) DeletePost(w http.ResponseWriter, r *http.Request) {
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

	if post.UserID != userID {
		caller, err := s.store.GetUser(r.Context(), userID)
		if err != nil || !caller.IsAdmin() {
			SendErrorResponse(w, "Only the author can delete this post", http.StatusForbidden, nil)
			return
		}
	}

	if err := s.store.DeletePost(r.Context(), postID); err != nil {
		SendErrorResponse(w, "Failed to delete post", storeErrorStatus(err), nil)
		return
	}

	log.Printf("[POST] User %d deleted post %d", userID, postID)
	sendJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// CreateComment adds a comment to a post
// @Summary Comment on a post
// @Description Add a comment to a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} models.Comment "Comment created"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id}/comments [post]
func (s *PostService) CreateComment(w http.ResponseWriter, r *http.Request) {
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

	if _, err := s.store.GetPost(r.Context(), postID); err != nil {
		SendErrorResponse(w, "Post not found", storeErrorStatus(err), nil)
		return
	}

	var req CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: req.Content}
	if err := s.store.CreateComment(r.Context(), comment); err != nil {
		log.Printf("[POST] Comment creation failed for user %d on post %d: %v", userID, postID, err)
		SendErrorResponse(w, "Failed to create comment", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusCreated, comment)
}

// ListComments returns a post's comments
// @Summary List comments
// @Description List a post's comments, oldest first
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Comment "Comments"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id}/comments [get]
func (s *PostService) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid post ID", http.StatusBadRequest, nil)
		return
	}

	if _, err := s.store.GetPost(r.Context(), postID); err != nil {
		SendErrorResponse(w, "Post not found", storeErrorStatus(err), nil)
		return
	}

	comments, err := s.store.ListCommentsByPost(r.Context(), postID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch comments", http.StatusInternalServerError, nil)
		return
	}

	sendJSON(w, http.StatusOK, comments)
}

// ToggleLike likes or unlikes a post
// @Summary Toggle a like
// @Description Like a post, or remove the caller's existing like
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]bool "Current like state"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id}/like [post]
func (s *PostService) ToggleLike(w http.ResponseWriter, r *http.Request) {
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

	if _, err := s.store.GetPost(r.Context(), postID); err != nil {
		SendErrorResponse(w, "Post not found", storeErrorStatus(err), nil)
		return
	}

	existing, err := s.store.GetLikeByUserAndPost(r.Context(), userID, postID)
	if err == nil {
		if err := s.store.DeleteLike(r.Context(), existing.ID); err != nil {
			SendErrorResponse(w, "Failed to unlike post", storeErrorStatus(err), nil)
			return
		}
		sendJSON(w, http.StatusOK, map[string]bool{"liked": false})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		SendErrorResponse(w, "Failed to like post", http.StatusInternalServerError, nil)
		return
	}

	like := &models.Like{PostID: postID, UserID: userID}
	if err := s.store.CreateLike(r.Context(), like); err != nil {
		if errors.Is(err, store.ErrDuplicateLike) {
			sendJSON(w, http.StatusOK, map[string]bool{"liked": true})
			return
		}
		SendErrorResponse(w, "Failed to like post", storeErrorStatus(err), nil)
		return
	}

	sendJSON(w, http.StatusOK, map[string]bool{"liked": true})
}
