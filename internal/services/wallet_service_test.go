package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fanvault/backend/internal/models"
)

func TestWalletService_GetWallet(t *testing.T) {
	s, _ := testStore(t)
	buyer := createUser(t, s, "buyer", true, 1234)
	svc := NewWalletService(s, newAuditLogger())

	rec := serve("/wallet", svc.GetWallet, authedRequest(t, http.MethodGet, "/wallet", buyer.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1234), decodeBody[WalletResponse](t, rec).Balance)
}

func TestWalletService_UnlockPost(t *testing.T) {
	setup := func(t *testing.T) (*WalletService, *models.User, *models.User, *models.Post, func() (int64, int64)) {
		s, _ := testStore(t)
		creator := createUser(t, s, "creator", true, 0)
		buyer := createUser(t, s, "buyer", true, 1000)

		post := &models.Post{UserID: creator.ID, Content: "secret", IsPremium: true, PremiumPrice: 250}
		assert.NoError(t, s.CreatePost(context.Background(), post))

		balances := func() (int64, int64) {
			b, _ := s.Balance(context.Background(), buyer.ID)
			c, _ := s.Balance(context.Background(), creator.ID)
			return b, c
		}
		return NewWalletService(s, newAuditLogger()), buyer, creator, post, balances
	}

	t.Run("debits buyer and credits creator by the same amount", func(t *testing.T) {
		svc, buyer, _, post, balances := setup(t)

		rec := serve("/posts/{id}/unlock", svc.UnlockPost,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/posts/%d/unlock", post.ID), buyer.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		buyerBalance, creatorBalance := balances()
		assert.Equal(t, int64(750), buyerBalance)
		assert.Equal(t, int64(250), creatorBalance)
		assert.Equal(t, int64(1000), buyerBalance+creatorBalance)
	})

	t.Run("second unlock is a no-op", func(t *testing.T) {
		svc, buyer, _, post, balances := setup(t)

		first := serve("/posts/{id}/unlock", svc.UnlockPost,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/posts/%d/unlock", post.ID), buyer.ID, nil))
		assert.Equal(t, http.StatusOK, first.Code)

		second := serve("/posts/{id}/unlock", svc.UnlockPost,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/posts/%d/unlock", post.ID), buyer.ID, nil))
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "Already unlocked", decodeBody[map[string]string](t, second)["message"])

		// Only one debit happened.
		buyerBalance, creatorBalance := balances()
		assert.Equal(t, int64(750), buyerBalance)
		assert.Equal(t, int64(250), creatorBalance)
	})

	t.Run("insufficient balance leaves everything untouched", func(t *testing.T) {
		svc, buyer, _, _, balances := setup(t)

		expensive := &models.Post{UserID: 2, Content: "big", IsPremium: true, PremiumPrice: 5000}
		assert.NoError(t, svc.store.CreatePost(context.Background(), expensive))

		rec := serve("/posts/{id}/unlock", svc.UnlockPost,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/posts/%d/unlock", expensive.ID), buyer.ID, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Insufficient balance", decodeBody[ErrorResponse](t, rec).Error)

		buyerBalance, _ := balances()
		assert.Equal(t, int64(1000), buyerBalance)
	})

	t.Run("non-premium post is rejected", func(t *testing.T) {
		svc, buyer, creator, _, _ := setup(t)

		free := &models.Post{UserID: creator.ID, Content: "free"}
		assert.NoError(t, svc.store.CreatePost(context.Background(), free))

		rec := serve("/posts/{id}/unlock", svc.UnlockPost,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/posts/%d/unlock", free.ID), buyer.ID, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing post is 404", func(t *testing.T) {
		svc, buyer, _, _, _ := setup(t)

		rec := serve("/posts/{id}/unlock", svc.UnlockPost,
			authedRequest(t, http.MethodPost, "/posts/999/unlock", buyer.ID, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("author sees their own post as unlocked", func(t *testing.T) {
		svc, _, creator, post, balances := setup(t)

		rec := serve("/posts/{id}/unlock", svc.UnlockPost,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/posts/%d/unlock", post.ID), creator.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		_, creatorBalance := balances()
		assert.Equal(t, int64(0), creatorBalance)
	})
}

func TestWalletService_UnlockMessage(t *testing.T) {
	setup := func(t *testing.T) (*WalletService, *models.User, *models.User, *models.Message) {
		s, admin := testStore(t)
		fan := createUser(t, s, "fan", true, 1000)

		msg := &models.Message{SenderID: admin.ID, ReceiverID: fan.ID, Content: "exclusive", IsPPV: true, PPVPrice: 300}
		assert.NoError(t, s.CreateMessage(context.Background(), msg))

		return NewWalletService(s, newAuditLogger()), fan, admin, msg
	}

	t.Run("unlock reveals the message and pays the platform", func(t *testing.T) {
		svc, fan, admin, msg := setup(t)

		rec := serve("/messages/{id}/unlock", svc.UnlockMessage,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/messages/%d/unlock", msg.ID), fan.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		unlocked, err := svc.store.GetMessage(context.Background(), msg.ID)
		assert.NoError(t, err)
		assert.True(t, unlocked.IsUnlocked)

		fanBalance, _ := svc.store.Balance(context.Background(), fan.ID)
		adminBalance, _ := svc.store.Balance(context.Background(), admin.ID)
		assert.Equal(t, int64(700), fanBalance)
		assert.Equal(t, int64(300), adminBalance)
	})

	t.Run("only the receiver may unlock", func(t *testing.T) {
		svc, _, admin, msg := setup(t)

		rec := serve("/messages/{id}/unlock", svc.UnlockMessage,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/messages/%d/unlock", msg.ID), admin.ID, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-ppv message is rejected", func(t *testing.T) {
		svc, fan, admin, _ := setup(t)

		plain := &models.Message{SenderID: admin.ID, ReceiverID: fan.ID, Content: "hi"}
		assert.NoError(t, svc.store.CreateMessage(context.Background(), plain))

		rec := serve("/messages/{id}/unlock", svc.UnlockMessage,
			authedRequest(t, http.MethodPost, fmt.Sprintf("/messages/%d/unlock", plain.ID), fan.ID, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWalletService_ReceiptCheck(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	creator := createUser(t, s, "creator", true, 0)
	fan := createUser(t, s, "fan", true, 1000)
	svc := NewWalletService(s, newAuditLogger())

	post := &models.Post{UserID: creator.ID, Content: "secret", IsPremium: true, PremiumPrice: 250}
	assert.NoError(t, s.CreatePost(ctx, post))

	check := func(query string) map[string]bool {
		rec := serve("/purchases", svc.ListPurchases,
			authedRequest(t, http.MethodGet, "/purchases?"+query, fan.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		return decodeBody[map[string]bool](t, rec)
	}

	assert.False(t, check(fmt.Sprintf("post_id=%d", post.ID))["purchased"])

	assert.NoError(t, s.PurchaseContent(ctx, &models.PurchasedContent{
		UserID: fan.ID, PostID: &post.ID, Amount: 250,
	}, creator.ID, "receipt-check-1"))

	assert.True(t, check(fmt.Sprintf("post_id=%d", post.ID))["purchased"])
	assert.False(t, check("message_id=999")["purchased"])
}

func TestWalletService_GetWalletHistory(t *testing.T) {
	s, _ := testStore(t)
	user := createUser(t, s, "user", true, 500)
	svc := NewWalletService(s, newAuditLogger())

	rec := serve("/wallet/history", svc.GetWalletHistory,
		authedRequest(t, http.MethodGet, "/wallet/history", user.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	entries := decodeBody[[]models.LedgerEntry](t, rec)
	assert.Len(t, entries, 1)
	assert.Equal(t, "CREDIT", entries[0].EntryType)
	assert.Equal(t, int64(500), entries[0].Amount)
}
