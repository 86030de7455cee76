package store

import (
	"context"

	"github.com/fanvault/backend/internal/models"
)

// Stats aggregates the admin dashboard counters. TotalEarnings sums
// subscription, tip and content-purchase revenue in cents.
type Stats struct {
	TotalUsers       int   `json:"totalUsers"`
	TotalPosts       int   `json:"totalPosts"`
	TotalSubscribers int   `json:"totalSubscribers"`
	TotalEarnings    int64 `json:"totalEarnings"`
}

// Store is the repository owning all platform state. It is the single
// owner of wallet balances: UpdateUser never touches WalletBalance, and
// every balance mutation goes through Transfer, Credit or the composed
// PurchaseContent / ResolvePaymentRequest operations, which are atomic
// in every driver.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Ledger operations. Transfer moves amount from one wallet to
	// another, failing with ErrInsufficientBalance before any mutation;
	// Credit is the top-up path. Both record ledger entries under the
	// given reference.
	Balance(ctx context.Context, userID int) (int64, error)
	Transfer(ctx context.Context, fromID, toID int, amount int64, reference string) error
	Credit(ctx context.Context, userID int, amount int64, reference string) error
	ListLedgerEntries(ctx context.Context, userID, limit int) ([]models.LedgerEntry, error)

	// Post operations
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id int) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListPostsByUser(ctx context.Context, userID int) ([]models.Post, error)
	DeletePost(ctx context.Context, id int) error

	// Comment operations
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByPost(ctx context.Context, postID int) ([]models.Comment, error)

	// Like operations
	GetLikeByUserAndPost(ctx context.Context, userID, postID int) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id int) error

	// Subscription plan operations
	CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)

	// Subscription operations. CreateSubscription deactivates any prior
	// active rows for the user, so GetActiveSubscription is
	// deterministic.
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	ListSubscriptionsByUser(ctx context.Context, userID int) ([]models.Subscription, error)
	GetActiveSubscription(ctx context.Context, userID int) (*models.Subscription, error)

	// Message operations
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id int) (*models.Message, error)
	ListMessagesBetween(ctx context.Context, userID, otherID int) ([]models.Message, error)
	ListConversations(ctx context.Context, userID int) ([]models.Conversation, error)

	// Tip operations
	CreateTip(ctx context.Context, tip *models.Tip) error
	ListTipsByReceiver(ctx context.Context, receiverID int) ([]models.Tip, error)

	// Payment request operations. ResolvePaymentRequest enforces the
	// pending -> approved|rejected state machine, returning
	// ErrAlreadyResolved on a second resolution, and credits the
	// requester atomically with the approval.
	CreatePaymentRequest(ctx context.Context, req *models.PaymentRequest) error
	GetPaymentRequest(ctx context.Context, id int) (*models.PaymentRequest, error)
	ListPaymentRequestsByUser(ctx context.Context, userID int) ([]models.PaymentRequest, error)
	ListPendingPaymentRequests(ctx context.Context) ([]models.PaymentRequest, error)
	ResolvePaymentRequest(ctx context.Context, id int, status, reference string) (*models.PaymentRequest, error)

	// Purchased content operations. PurchaseContent atomically records
	// the receipt, transfers the price from buyer to owner and, for
	// messages, flips the unlocked flag; a receipt already covering the
	// content fails the whole operation with ErrDuplicatePurchase.
	HasPurchased(ctx context.Context, userID, postID, messageID int) (bool, error)
	PurchaseContent(ctx context.Context, purchase *models.PurchasedContent, ownerID int, reference string) error
	ListPurchasesByUser(ctx context.Context, userID int) ([]models.PurchasedContent, error)

	// Creator request operations
	CreateCreatorRequest(ctx context.Context, req *models.CreatorRequest) error
	GetCreatorRequest(ctx context.Context, id int) (*models.CreatorRequest, error)
	ListCreatorRequestsByUser(ctx context.Context, userID int) ([]models.CreatorRequest, error)
	ListAllCreatorRequests(ctx context.Context) ([]models.CreatorRequest, error)
	ListPublicCreatorRequests(ctx context.Context) ([]models.CreatorRequest, error)
	UpdateCreatorRequest(ctx context.Context, req *models.CreatorRequest) error

	// Admin stats
	GetStats(ctx context.Context) (*Stats, error)
}
