package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

func TestPostService_CreatePost(t *testing.T) {
	s, _ := testStore(t)
	creator := createUser(t, s, "creator", true, 0)
	svc := NewPostService(s)

	t.Run("creates a premium post", func(t *testing.T) {
		rec := serve("/posts", svc.CreatePost,
			authedRequest(t, http.MethodPost, "/posts", creator.ID,
				CreatePostRequest{Content: "exclusive", IsPremium: true, PremiumPrice: 250}))
		assert.Equal(t, http.StatusCreated, rec.Code)

		post := decodeBody[models.Post](t, rec)
		assert.True(t, post.IsPremium)
		assert.Equal(t, int64(250), post.PremiumPrice)
	})

	t.Run("non-premium posts never carry a price", func(t *testing.T) {
		rec := serve("/posts", svc.CreatePost,
			authedRequest(t, http.MethodPost, "/posts", creator.ID,
				CreatePostRequest{Content: "free for all", IsPremium: false, PremiumPrice: 999}))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, int64(0), decodeBody[models.Post](t, rec).PremiumPrice)
	})

	t.Run("empty content fails validation", func(t *testing.T) {
		rec := serve("/posts", svc.CreatePost,
			authedRequest(t, http.MethodPost, "/posts", creator.ID, CreatePostRequest{}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPostService_PremiumRedaction(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	creator := createUser(t, s, "creator", true, 0)
	fan := createUser(t, s, "fan", true, 1000)
	svc := NewPostService(s)

	post := &models.Post{UserID: creator.ID, Content: "secret", MediaURL: "/static/media/1.jpg", IsPremium: true, PremiumPrice: 250}
	assert.NoError(t, s.CreatePost(ctx, post))

	fetch := func(viewerID int) PostResponse {
		rec := serve("/posts/{id}", svc.GetPost,
			authedRequest(t, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), viewerID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		return decodeBody[PostResponse](t, rec)
	}

	t.Run("locked for a fan without purchase", func(t *testing.T) {
		got := fetch(fan.ID)
		assert.True(t, got.IsLocked)
		assert.Empty(t, got.Content)
		assert.Empty(t, got.MediaURL)
	})

	t.Run("always open for the author", func(t *testing.T) {
		got := fetch(creator.ID)
		assert.False(t, got.IsLocked)
		assert.Equal(t, "secret", got.Content)
	})

	t.Run("open for an active subscriber", func(t *testing.T) {
		subscriber := createUser(t, s, "subscriber", true, 0)
		assert.NoError(t, s.CreateSubscription(ctx, &models.Subscription{
			UserID:    subscriber.ID,
			PlanID:    1,
			StartDate: time.Now(),
			EndDate:   time.Now().Add(7 * 24 * time.Hour),
			IsActive:  true,
		}))

		got := fetch(subscriber.ID)
		assert.False(t, got.IsLocked)
		assert.Equal(t, "secret", got.Content)
	})

	t.Run("open after purchase", func(t *testing.T) {
		err := s.PurchaseContent(ctx, &models.PurchasedContent{
			UserID: fan.ID, PostID: &post.ID, Amount: post.PremiumPrice,
		}, creator.ID, uuid.New().String())
		assert.NoError(t, err)

		got := fetch(fan.ID)
		assert.False(t, got.IsLocked)
		assert.Equal(t, "secret", got.Content)
	})
}

func TestPostService_ListUserPosts(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	creator := createUser(t, s, "creator", true, 0)
	other := createUser(t, s, "other", true, 0)
	svc := NewPostService(s)

	assert.NoError(t, s.CreatePost(ctx, &models.Post{UserID: creator.ID, Content: "one"}))
	assert.NoError(t, s.CreatePost(ctx, &models.Post{UserID: creator.ID, Content: "two"}))
	assert.NoError(t, s.CreatePost(ctx, &models.Post{UserID: other.ID, Content: "elsewhere"}))

	rec := serve("/users/{id}/posts", svc.ListUserPosts,
		authedRequest(t, http.MethodGet, fmt.Sprintf("/users/%d/posts", creator.ID), other.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]PostResponse](t, rec), 2)

	missing := serve("/users/{id}/posts", svc.ListUserPosts,
		authedRequest(t, http.MethodGet, "/users/999/posts", other.ID, nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestPostService_DeletePost(t *testing.T) {
	ctx := context.Background()
	s, admin := testStore(t)
	creator := createUser(t, s, "creator", true, 0)
	other := createUser(t, s, "other", true, 0)
	svc := NewPostService(s)

	newPost := func(t *testing.T) *models.Post {
		post := &models.Post{UserID: creator.ID, Content: "hello"}
		assert.NoError(t, s.CreatePost(ctx, post))
		return post
	}

	t.Run("author can delete", func(t *testing.T) {
		post := newPost(t)
		rec := serve("/posts/{id}", svc.DeletePost,
			authedRequest(t, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), creator.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		_, err := s.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("admin can delete", func(t *testing.T) {
		post := newPost(t)
		rec := serve("/posts/{id}", svc.DeletePost,
			authedRequest(t, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), admin.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("others cannot", func(t *testing.T) {
		post := newPost(t)
		rec := serve("/posts/{id}", svc.DeletePost,
			authedRequest(t, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), other.ID, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		_, err := s.GetPost(ctx, post.ID)
		assert.NoError(t, err)
	})
}

func TestPostService_Comments(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	creator := createUser(t, s, "creator", true, 0)
	fan := createUser(t, s, "fan", true, 0)
	svc := NewPostService(s)

	post := &models.Post{UserID: creator.ID, Content: "hello"}
	assert.NoError(t, s.CreatePost(ctx, post))

	rec := serve("/posts/{id}/comments", svc.CreateComment,
		authedRequest(t, http.MethodPost, fmt.Sprintf("/posts/%d/comments", post.ID), fan.ID,
			CommentRequest{Content: "first"}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	list := serve("/posts/{id}/comments", svc.ListComments,
		authedRequest(t, http.MethodGet, fmt.Sprintf("/posts/%d/comments", post.ID), fan.ID, nil))
	assert.Equal(t, http.StatusOK, list.Code)

	comments := decodeBody[[]models.Comment](t, list)
	if assert.Len(t, comments, 1) {
		assert.Equal(t, "first", comments[0].Content)
		assert.Equal(t, fan.ID, comments[0].UserID)
	}

	missing := serve("/posts/{id}/comments", svc.CreateComment,
		authedRequest(t, http.MethodPost, "/posts/999/comments", fan.ID, CommentRequest{Content: "hi"}))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestPostService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	creator := createUser(t, s, "creator", true, 0)
	fan := createUser(t, s, "fan", true, 0)
	svc := NewPostService(s)

	post := &models.Post{UserID: creator.ID, Content: "hello"}
	assert.NoError(t, s.CreatePost(ctx, post))

	toggle := func() map[string]bool {
		rec := serve("/posts/{id}/like", svc.ToggleLike,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/posts/%d/like", post.ID), fan.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		return decodeBody[map[string]bool](t, rec)
	}

	assert.True(t, toggle()["liked"])
	assert.False(t, toggle()["liked"])
	assert.True(t, toggle()["liked"])

	missing := serve("/posts/{id}/like", svc.ToggleLike,
		authedRequest(t, http.MethodPost, "/posts/999/like", fan.ID, nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}
