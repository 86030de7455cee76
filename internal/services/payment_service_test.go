package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fanvault/backend/internal/config"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

func newPaymentService(s store.Store) *PaymentService {
	return NewPaymentService(s, nil, newAuditLogger(), config.LoadQRConfig())
}

func TestPaymentService_CreatePaymentRequest(t *testing.T) {
	t.Run("creates a pending request", func(t *testing.T) {
		s, _ := testStore(t)
		user := createUser(t, s, "user", true, 0)
		svc := newPaymentService(s)

		rec := serve("/payment-requests", svc.CreatePaymentRequest,
			authedRequest(t, http.MethodPost, "/payment-requests", user.ID,
				PaymentRequestBody{Amount: 5000, PaymentMethod: "bank_transfer"}))
		assert.Equal(t, http.StatusCreated, rec.Code)

		created := decodeBody[models.PaymentRequest](t, rec)
		assert.Equal(t, models.PaymentStatusPending, created.Status)
		assert.Equal(t, int64(5000), created.Amount)

		// Creation never credits.
		balance, _ := s.Balance(context.Background(), user.ID)
		assert.Equal(t, int64(0), balance)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		s, _ := testStore(t)
		user := createUser(t, s, "user", true, 0)
		svc := newPaymentService(s)

		rec := serve("/payment-requests", svc.CreatePaymentRequest,
			authedRequest(t, http.MethodPost, "/payment-requests", user.ID,
				PaymentRequestBody{Amount: 0, PaymentMethod: "bank_transfer"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPaymentService_ResolvePaymentRequest(t *testing.T) {
	setup := func(t *testing.T) (*PaymentService, *store.MemoryStore, *models.User, *models.PaymentRequest) {
		s, _ := testStore(t)
		user := createUser(t, s, "user", true, 0)

		request := &models.PaymentRequest{UserID: user.ID, Amount: 5000, PaymentMethod: "bank_transfer"}
		assert.NoError(t, s.CreatePaymentRequest(context.Background(), request))

		return newPaymentService(s), s, user, request
	}

	t.Run("approval credits exactly the requested amount", func(t *testing.T) {
		svc, s, user, request := setup(t)

		rec := serve("/admin/payment-requests/{id}", svc.ResolvePaymentRequest,
			authedRequest(t, http.MethodPut, fmt.Sprintf("/admin/payment-requests/%d", request.ID), 1,
				ResolveRequestBody{Status: "approved"}))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.PaymentStatusApproved, decodeBody[models.PaymentRequest](t, rec).Status)

		balance, _ := s.Balance(context.Background(), user.ID)
		assert.Equal(t, int64(5000), balance)
	})

	t.Run("re-resolving never double-credits", func(t *testing.T) {
		svc, s, user, request := setup(t)

		first := serve("/admin/payment-requests/{id}", svc.ResolvePaymentRequest,
			authedRequest(t, http.MethodPut, fmt.Sprintf("/admin/payment-requests/%d", request.ID), 1,
				ResolveRequestBody{Status: "approved"}))
		assert.Equal(t, http.StatusOK, first.Code)

		second := serve("/admin/payment-requests/{id}", svc.ResolvePaymentRequest,
			authedRequest(t, http.MethodPut, fmt.Sprintf("/admin/payment-requests/%d", request.ID), 1,
				ResolveRequestBody{Status: "approved"}))
		assert.Equal(t, http.StatusBadRequest, second.Code)
		assert.Equal(t, "Payment request already resolved", decodeBody[ErrorResponse](t, second).Error)

		balance, _ := s.Balance(context.Background(), user.ID)
		assert.Equal(t, int64(5000), balance)
	})

	t.Run("rejection never credits", func(t *testing.T) {
		svc, s, user, request := setup(t)

		rec := serve("/admin/payment-requests/{id}", svc.ResolvePaymentRequest,
			authedRequest(t, http.MethodPut, fmt.Sprintf("/admin/payment-requests/%d", request.ID), 1,
				ResolveRequestBody{Status: "rejected"}))
		assert.Equal(t, http.StatusOK, rec.Code)

		balance, _ := s.Balance(context.Background(), user.ID)
		assert.Equal(t, int64(0), balance)
	})

	t.Run("invalid status fails validation", func(t *testing.T) {
		svc, _, _, request := setup(t)

		rec := serve("/admin/payment-requests/{id}", svc.ResolvePaymentRequest,
			authedRequest(t, http.MethodPut, fmt.Sprintf("/admin/payment-requests/%d", request.ID), 1,
				ResolveRequestBody{Status: "pending"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown request is 404", func(t *testing.T) {
		svc, _, _, _ := setup(t)

		rec := serve("/admin/payment-requests/{id}", svc.ResolvePaymentRequest,
			authedRequest(t, http.MethodPut, "/admin/payment-requests/999", 1,
				ResolveRequestBody{Status: "approved"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPaymentService_GetPaymentRequestQR(t *testing.T) {
	s, _ := testStore(t)
	user := createUser(t, s, "user", true, 0)
	other := createUser(t, s, "other", true, 0)
	svc := newPaymentService(s)

	request := &models.PaymentRequest{UserID: user.ID, Amount: 5000, PaymentMethod: "bank_transfer"}
	assert.NoError(t, s.CreatePaymentRequest(context.Background(), request))

	t.Run("renders a PNG for the requester", func(t *testing.T) {
		rec := serve("/payment-requests/{id}/qr", svc.GetPaymentRequestQR,
			authedRequest(t, http.MethodGet, fmt.Sprintf("/payment-requests/%d/qr", request.ID), user.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Body.Bytes())
	})

	t.Run("other users cannot fetch it", func(t *testing.T) {
		rec := serve("/payment-requests/{id}/qr", svc.GetPaymentRequestQR,
			authedRequest(t, http.MethodGet, fmt.Sprintf("/payment-requests/%d/qr", request.ID), other.ID, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
