package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	creator := createUser(t, s, "creator", true, 5000)
	svc := NewUserService(s)

	assert.NoError(t, s.CreatePost(ctx, &models.Post{UserID: creator.ID, Content: "one"}))
	assert.NoError(t, s.CreatePost(ctx, &models.Post{UserID: creator.ID, Content: "two"}))

	rec := serve("/users/{id}", svc.GetProfile,
		authedRequest(t, http.MethodGet, fmt.Sprintf("/users/%d", creator.ID), creator.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	profile := decodeBody[PublicProfile](t, rec)
	assert.Equal(t, "creator", profile.Username)
	assert.Equal(t, 2, profile.PostCount)

	// Wallet state never leaks into the public profile.
	assert.NotContains(t, rec.Body.String(), "wallet_balance")

	missing := serve("/users/{id}", svc.GetProfile,
		authedRequest(t, http.MethodGet, "/users/999", creator.ID, nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	user := createUser(t, s, "alice", true, 1500)
	svc := NewUserService(s)

	rec := serve("/users/me", svc.UpdateProfile,
		authedRequest(t, http.MethodPut, "/users/me", user.ID,
			UpdateProfileRequest{Name: "Alice Doe", Bio: "Creator of things"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	updated, err := s.GetUser(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Alice Doe", updated.Name)
	assert.Equal(t, "Creator of things", updated.Bio)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, int64(1500), updated.WalletBalance)
}

func TestUserService_VerifyUser(t *testing.T) {
	ctx := context.Background()
	s, admin := testStore(t)
	user := createUser(t, s, "alice", false, 0)
	svc := NewUserService(s)

	rec := serve("/admin/users/{id}/verify", svc.VerifyUser,
		authedRequest(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/verify", user.ID), admin.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	verified, err := s.GetUser(ctx, user.ID)
	assert.NoError(t, err)
	assert.True(t, verified.IsVerified)

	missing := serve("/admin/users/{id}/verify", svc.VerifyUser,
		authedRequest(t, http.MethodPut, "/admin/users/999/verify", admin.ID, nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestUserService_GetStats(t *testing.T) {
	ctx := context.Background()
	s, admin := testStore(t)
	creator := createUser(t, s, "creator", true, 0)
	fan := createUser(t, s, "fan", true, 1000)
	svc := NewUserService(s)

	post := &models.Post{UserID: creator.ID, Content: "secret", IsPremium: true, PremiumPrice: 250}
	assert.NoError(t, s.CreatePost(ctx, post))
	assert.NoError(t, s.PurchaseContent(ctx, &models.PurchasedContent{
		UserID: fan.ID, PostID: &post.ID, Amount: 250,
	}, creator.ID, "stats-unlock-1"))

	rec := serve("/admin/stats", svc.GetStats,
		authedRequest(t, http.MethodGet, "/admin/stats", admin.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	stats := decodeBody[store.Stats](t, rec)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalPosts)
	assert.Equal(t, int64(250), stats.TotalEarnings)
}
