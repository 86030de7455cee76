package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

func setupAuthConfig(t *testing.T) {
	t.Helper()
	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.expiry_hours", 72)
	viper.Set("argon2.time", 1)
	viper.Set("argon2.memory", 64*1024)
	viper.Set("argon2.threads", 4)
	viper.Set("argon2.key_length", 32)
	viper.Set("argon2.salt_length", 16)
}

func TestHashPassword(t *testing.T) {
	setupAuthConfig(t)

	hashed, err := HashPassword("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)

	assert.True(t, verifyPassword("password123", hashed))
	assert.False(t, verifyPassword("wrong-password", hashed))
	assert.False(t, verifyPassword("password123", "not$even$a$hash"))

	// A fresh salt every time.
	again, err := HashPassword("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, hashed, again)
}

func TestAuthService_Register(t *testing.T) {
	setupAuthConfig(t)

	t.Run("creates a user and returns a token", func(t *testing.T) {
		s := store.NewMemoryStore()
		svc := NewAuthService(s, nil)

		rec := serve("/auth/register", svc.Register,
			authedRequest(t, http.MethodPost, "/auth/register", 0,
				RegisterRequest{Username: "Alice", Password: "password123", Name: "Alice Doe"}))
		assert.Equal(t, http.StatusCreated, rec.Code)

		resp := decodeBody[AuthResponse](t, rec)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, models.RoleUser, resp.User.Role)
		assert.Equal(t, int64(0), resp.User.WalletBalance)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		s := store.NewMemoryStore()
		svc := NewAuthService(s, nil)

		first := serve("/auth/register", svc.Register,
			authedRequest(t, http.MethodPost, "/auth/register", 0,
				RegisterRequest{Username: "alice", Password: "password123", Name: "Alice Doe"}))
		assert.Equal(t, http.StatusCreated, first.Code)

		second := serve("/auth/register", svc.Register,
			authedRequest(t, http.MethodPost, "/auth/register", 0,
				RegisterRequest{Username: "ALICE", Password: "password123", Name: "Alice Two"}))
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Equal(t, "Username already exists", decodeBody[ErrorResponse](t, second).Error)
	})

	t.Run("admin username claims the admin role", func(t *testing.T) {
		s := store.NewMemoryStore()
		svc := NewAuthService(s, nil)

		rec := serve("/auth/register", svc.Register,
			authedRequest(t, http.MethodPost, "/auth/register", 0,
				RegisterRequest{Username: "admin", Password: "password123", Name: "Platform"}))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, models.RoleAdmin, decodeBody[AuthResponse](t, rec).User.Role)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		s := store.NewMemoryStore()
		svc := NewAuthService(s, nil)

		rec := serve("/auth/register", svc.Register,
			authedRequest(t, http.MethodPost, "/auth/register", 0,
				RegisterRequest{Username: "alice", Password: "short", Name: "Alice Doe"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	setupAuthConfig(t)

	register := func(t *testing.T, svc *AuthService) {
		rec := serve("/auth/register", svc.Register,
			authedRequest(t, http.MethodPost, "/auth/register", 0,
				RegisterRequest{Username: "alice", Password: "password123", Name: "Alice Doe"}))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("valid credentials return a token", func(t *testing.T) {
		svc := NewAuthService(store.NewMemoryStore(), nil)
		register(t, svc)

		rec := serve("/auth/login", svc.Login,
			authedRequest(t, http.MethodPost, "/auth/login", 0,
				LoginRequest{Username: "alice", Password: "password123"}))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decodeBody[AuthResponse](t, rec).Token)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		svc := NewAuthService(store.NewMemoryStore(), nil)
		register(t, svc)

		rec := serve("/auth/login", svc.Login,
			authedRequest(t, http.MethodPost, "/auth/login", 0,
				LoginRequest{Username: "alice", Password: "wrong-password"}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeBody[ErrorResponse](t, rec).Error)
	})

	t.Run("unknown username is unauthorized", func(t *testing.T) {
		svc := NewAuthService(store.NewMemoryStore(), nil)

		rec := serve("/auth/login", svc.Login,
			authedRequest(t, http.MethodPost, "/auth/login", 0,
				LoginRequest{Username: "nobody", Password: "password123"}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthService_Logout(t *testing.T) {
	setupAuthConfig(t)

	client, mock := redismock.NewClientMock()
	mock.ExpectSet("blacklist:some-token", "1", 72*time.Hour).SetVal("OK")

	svc := NewAuthService(store.NewMemoryStore(), client)

	req := authedRequest(t, http.MethodPost, "/auth/logout", 0, nil)
	req.Header.Set("Authorization", "Bearer some-token")

	rec := serve("/auth/logout", svc.Logout, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Me(t *testing.T) {
	s, _ := testStore(t)
	user := createUser(t, s, "alice", true, 1500)
	svc := NewAuthService(s, nil)

	rec := serve("/auth/me", svc.Me, authedRequest(t, http.MethodGet, "/auth/me", user.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	me := decodeBody[models.User](t, rec)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, int64(1500), me.WalletBalance)
}
