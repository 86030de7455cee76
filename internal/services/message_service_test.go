package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fanvault/backend/internal/models"
)

func TestMessageService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers between fans", func(t *testing.T) {
		s, _ := testStore(t)
		alice := createUser(t, s, "alice", true, 0)
		bob := createUser(t, s, "bob", true, 0)
		svc := NewMessageService(s)

		rec := serve("/messages", svc.SendMessage,
			authedRequest(t, http.MethodPost, "/messages", alice.ID,
				SendMessageRequest{ReceiverID: bob.ID, Content: "hey"}))
		assert.Equal(t, http.StatusCreated, rec.Code)

		msg := decodeBody[models.Message](t, rec)
		assert.Equal(t, alice.ID, msg.SenderID)
		assert.Equal(t, bob.ID, msg.ReceiverID)
		assert.False(t, msg.IsPPV)
	})

	t.Run("cannot message yourself", func(t *testing.T) {
		s, _ := testStore(t)
		alice := createUser(t, s, "alice", true, 0)
		svc := NewMessageService(s)

		rec := serve("/messages", svc.SendMessage,
			authedRequest(t, http.MethodPost, "/messages", alice.ID,
				SendMessageRequest{ReceiverID: alice.ID, Content: "me"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("fans cannot send pay-per-view", func(t *testing.T) {
		s, _ := testStore(t)
		alice := createUser(t, s, "alice", true, 0)
		bob := createUser(t, s, "bob", true, 0)
		svc := NewMessageService(s)

		rec := serve("/messages", svc.SendMessage,
			authedRequest(t, http.MethodPost, "/messages", alice.ID,
				SendMessageRequest{ReceiverID: bob.ID, Content: "pay me", IsPPV: true, PPVPrice: 300}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admins send pay-per-view locked", func(t *testing.T) {
		s, admin := testStore(t)
		bob := createUser(t, s, "bob", true, 0)
		svc := NewMessageService(s)

		rec := serve("/messages", svc.SendMessage,
			authedRequest(t, http.MethodPost, "/messages", admin.ID,
				SendMessageRequest{ReceiverID: bob.ID, Content: "exclusive", IsPPV: true, PPVPrice: 300}))
		assert.Equal(t, http.StatusCreated, rec.Code)

		msg := decodeBody[models.Message](t, rec)
		assert.True(t, msg.IsPPV)
		assert.Equal(t, int64(300), msg.PPVPrice)
		assert.False(t, msg.IsUnlocked)
	})

	t.Run("messaging the platform requires an active subscription", func(t *testing.T) {
		s, admin := testStore(t)
		alice := createUser(t, s, "alice", true, 0)
		svc := NewMessageService(s)

		rec := serve("/messages", svc.SendMessage,
			authedRequest(t, http.MethodPost, "/messages", alice.ID,
				SendMessageRequest{ReceiverID: admin.ID, Content: "hello"}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "An active subscription is required to send messages", decodeBody[ErrorResponse](t, rec).Error)

		assert.NoError(t, s.CreateSubscription(ctx, &models.Subscription{
			UserID:    alice.ID,
			PlanID:    1,
			StartDate: time.Now(),
			EndDate:   time.Now().Add(7 * 24 * time.Hour),
			IsActive:  true,
		}))

		again := serve("/messages", svc.SendMessage,
			authedRequest(t, http.MethodPost, "/messages", alice.ID,
				SendMessageRequest{ReceiverID: admin.ID, Content: "hello"}))
		assert.Equal(t, http.StatusCreated, again.Code)
	})

	t.Run("unknown receiver is 404", func(t *testing.T) {
		s, _ := testStore(t)
		alice := createUser(t, s, "alice", true, 0)
		svc := NewMessageService(s)

		rec := serve("/messages", svc.SendMessage,
			authedRequest(t, http.MethodPost, "/messages", alice.ID,
				SendMessageRequest{ReceiverID: 999, Content: "hello"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMessageService_PPVRedaction(t *testing.T) {
	ctx := context.Background()
	s, admin := testStore(t)
	bob := createUser(t, s, "bob", true, 300)
	svc := NewMessageService(s)

	msg := &models.Message{SenderID: admin.ID, ReceiverID: bob.ID, Content: "secret", IsPPV: true, PPVPrice: 300}
	assert.NoError(t, s.CreateMessage(ctx, msg))

	t.Run("receiver sees a blank body until unlocked", func(t *testing.T) {
		rec := serve("/messages/{userId}", svc.ListMessages,
			authedRequest(t, http.MethodGet, fmt.Sprintf("/messages/%d", admin.ID), bob.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		msgs := decodeBody[[]models.Message](t, rec)
		if assert.Len(t, msgs, 1) {
			assert.Empty(t, msgs[0].Content)
			assert.True(t, msgs[0].IsPPV)
		}
	})

	t.Run("sender always sees the body", func(t *testing.T) {
		rec := serve("/messages/{userId}", svc.ListMessages,
			authedRequest(t, http.MethodGet, fmt.Sprintf("/messages/%d", bob.ID), admin.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		msgs := decodeBody[[]models.Message](t, rec)
		if assert.Len(t, msgs, 1) {
			assert.Equal(t, "secret", msgs[0].Content)
		}
	})

	t.Run("unlocking reveals the body", func(t *testing.T) {
		assert.NoError(t, s.PurchaseContent(ctx, &models.PurchasedContent{
			UserID: bob.ID, MessageID: &msg.ID, Amount: msg.PPVPrice,
		}, admin.ID, "ppv-unlock-1"))

		rec := serve("/messages/{userId}", svc.ListMessages,
			authedRequest(t, http.MethodGet, fmt.Sprintf("/messages/%d", admin.ID), bob.ID, nil))
		msgs := decodeBody[[]models.Message](t, rec)
		if assert.Len(t, msgs, 1) {
			assert.Equal(t, "secret", msgs[0].Content)
		}
	})
}

func TestMessageService_ListConversations(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	alice := createUser(t, s, "alice", true, 0)
	bob := createUser(t, s, "bob", true, 0)
	carol := createUser(t, s, "carol", true, 0)
	svc := NewMessageService(s)

	assert.NoError(t, s.CreateMessage(ctx, &models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi bob"}))
	assert.NoError(t, s.CreateMessage(ctx, &models.Message{SenderID: carol.ID, ReceiverID: alice.ID, Content: "hi alice"}))

	rec := serve("/conversations", svc.ListConversations,
		authedRequest(t, http.MethodGet, "/conversations", alice.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	conversations := decodeBody[[]models.Conversation](t, rec)
	if assert.Len(t, conversations, 2) {
		// Newest conversation first.
		assert.Equal(t, carol.ID, conversations[0].UserID)
		assert.Equal(t, "hi alice", conversations[0].LastMessage.Content)
		assert.Equal(t, bob.ID, conversations[1].UserID)
		if assert.NotNil(t, conversations[1].User) {
			assert.Equal(t, "bob", conversations[1].User.Username)
		}
	}
}
