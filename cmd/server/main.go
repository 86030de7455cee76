package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fanvault/backend/docs"
	"github.com/fanvault/backend/internal/audit"
	"github.com/fanvault/backend/internal/config"
	"github.com/fanvault/backend/internal/database"
	mW "github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/services"
	"github.com/fanvault/backend/internal/store"
)

// @title FanVault API
// @version 1.0
// @description Creator content platform with an internal wallet ledger
// @host localhost:8080
// @BasePath /api
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env
	viper.ReadInConfig()        // read .env file

	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("store.driver", "STORE_DRIVER")
	viper.BindEnv("admin.password", "ADMIN_PASSWORD")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("jwt.expiry_hours", 72)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "FanVault API"
	docs.SwaggerInfo.Description = "Creator content platform with an internal wallet ledger"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Pick the ledger store driver
	var ledger store.Store
	switch viper.GetString("store.driver") {
	case "postgres":
		db := database.InitDatabase()
		defer db.Close()
		ledger = store.NewPostgresStore(db)
		log.Println("Using postgres ledger store")
	default:
		ledger = store.NewMemoryStore()
		log.Println("Using in-memory ledger store")
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	ensurePlatformAccount(ledger)

	auditLogger := audit.NewLogger()
	qrConfig := config.LoadQRConfig()

	authService := services.NewAuthService(ledger, redisClient)
	walletService := services.NewWalletService(ledger, auditLogger)
	tipService := services.NewTipService(ledger, auditLogger)
	subscriptionService := services.NewSubscriptionService(ledger, auditLogger)
	paymentService := services.NewPaymentService(ledger, redisClient, auditLogger, qrConfig)
	postService := services.NewPostService(ledger)
	messageService := services.NewMessageService(ledger)
	userService := services.NewUserService(ledger)
	requestService := services.NewRequestService(ledger)

	authMW := mW.NewAuthMiddleware(redisClient, ledger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(mW.Metrics)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Static file server for avatars and media
	r.Handle("/static/*", http.StripPrefix("/static/",
		mW.StaticFileServer("./static")))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Get("/auth/me", authService.Me)

			// Wallet and unlocks
			r.Get("/wallet", walletService.GetWallet)
			r.Get("/wallet/history", walletService.GetWalletHistory)
			r.Get("/purchases", walletService.ListPurchases)
			r.Post("/posts/{id}/unlock", walletService.UnlockPost)
			r.Post("/messages/{id}/unlock", walletService.UnlockMessage)

			// Tips
			r.Post("/tips", tipService.SendTip)
			r.Get("/tips/received", tipService.ListReceivedTips)

			// Subscriptions
			r.Get("/subscription-plans", subscriptionService.ListPlans)
			r.Post("/subscribe", subscriptionService.Subscribe)
			r.Get("/subscriptions", subscriptionService.ListMySubscriptions)
			r.Get("/subscriptions/me", subscriptionService.GetMySubscription)

			// Payment requests
			r.Post("/payment-requests", paymentService.CreatePaymentRequest)
			r.Get("/payment-requests", paymentService.ListMyPaymentRequests)
			r.Get("/payment-requests/{id}/qr", paymentService.GetPaymentRequestQR)

			// Posts, comments, likes
			r.Post("/posts", postService.CreatePost)
			r.Get("/posts", postService.ListPosts)
			r.Get("/posts/{id}", postService.GetPost)
			r.Delete("/posts/{id}", postService.DeletePost)
			r.Post("/posts/{id}/comments", postService.CreateComment)
			r.Get("/posts/{id}/comments", postService.ListComments)
			r.Post("/posts/{id}/like", postService.ToggleLike)

			// Messaging
			r.Post("/messages", messageService.SendMessage)
			r.Get("/conversations", messageService.ListConversations)
			r.Get("/messages/{userId}", messageService.ListMessages)

			// Users
			r.Get("/users/{id}", userService.GetProfile)
			r.Get("/users/{id}/posts", postService.ListUserPosts)
			r.Put("/users/me", userService.UpdateProfile)

			// Creator requests
			r.Post("/creator-requests", requestService.CreateRequest)
			r.Get("/creator-requests", requestService.ListPublicRequests)
			r.Get("/creator-requests/mine", requestService.ListMyRequests)
			r.Get("/creator-requests/{id}", requestService.GetRequest)
			r.Put("/creator-requests/{id}", requestService.UpdateMyRequest)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAdmin)

				r.Get("/admin/payment-requests", paymentService.ListPendingPaymentRequests)
				r.Put("/admin/payment-requests/{id}", paymentService.ResolvePaymentRequest)
				r.Put("/admin/users/{id}/verify", userService.VerifyUser)
				r.Get("/admin/stats", userService.GetStats)
				r.Get("/admin/creator-requests", requestService.ListAllRequests)
				r.Put("/admin/creator-requests/{id}", requestService.RespondToRequest)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}

// ensurePlatformAccount guarantees the admin account PPV and
// subscription revenue settles to exists.
func ensurePlatformAccount(ledger store.Store) {
	ctx := context.Background()
	if _, err := ledger.GetUserByUsername(ctx, "admin"); err == nil {
		return
	}

	password := viper.GetString("admin.password")
	if password == "" {
		log.Println("No admin account and no ADMIN_PASSWORD set; skipping platform account bootstrap")
		return
	}

	admin := &models.User{
		Username:   "admin",
		Name:       "Platform",
		Role:       models.RoleAdmin,
		IsVerified: true,
	}
	var err error
	if admin.Password, err = services.HashPassword(password); err != nil {
		log.Printf("Platform account bootstrap failed: %v", err)
		return
	}
	if err := ledger.CreateUser(ctx, admin); err != nil {
		log.Printf("Platform account bootstrap failed: %v", err)
		return
	}
	log.Printf("Platform account created with ID %d", admin.ID)
}
