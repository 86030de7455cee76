package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fanvault/backend/internal/models"
)

// MemoryStore is the default single-process driver: plain maps guarded
// by one mutex, so every operation — including the composed purchase and
// resolution flows — runs under mutual exclusion and balance updates
// cannot interleave.
type MemoryStore struct {
	mu sync.Mutex

	users            map[int]*models.User
	posts            map[int]*models.Post
	comments         map[int]*models.Comment
	likes            map[int]*models.Like
	plans            map[int]*models.SubscriptionPlan
	subscriptions    map[int]*models.Subscription
	messages         map[int]*models.Message
	tips             map[int]*models.Tip
	paymentRequests  map[int]*models.PaymentRequest
	purchasedContent map[int]*models.PurchasedContent
	creatorRequests  map[int]*models.CreatorRequest
	ledgerEntries    []models.LedgerEntry

	nextUserID           int
	nextPostID           int
	nextCommentID        int
	nextLikeID           int
	nextPlanID           int
	nextSubscriptionID   int
	nextMessageID        int
	nextTipID            int
	nextPaymentRequestID int
	nextPurchaseID       int
	nextCreatorRequestID int
	nextLedgerEntryID    int
}

// NewMemoryStore creates an empty store seeded with the default
// subscription plans.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		users:            make(map[int]*models.User),
		posts:            make(map[int]*models.Post),
		comments:         make(map[int]*models.Comment),
		likes:            make(map[int]*models.Like),
		plans:            make(map[int]*models.SubscriptionPlan),
		subscriptions:    make(map[int]*models.Subscription),
		messages:         make(map[int]*models.Message),
		tips:             make(map[int]*models.Tip),
		paymentRequests:  make(map[int]*models.PaymentRequest),
		purchasedContent: make(map[int]*models.PurchasedContent),
		creatorRequests:  make(map[int]*models.CreatorRequest),

		nextUserID:           1,
		nextPostID:           1,
		nextCommentID:        1,
		nextLikeID:           1,
		nextPlanID:           1,
		nextSubscriptionID:   1,
		nextMessageID:        1,
		nextTipID:            1,
		nextPaymentRequestID: 1,
		nextPurchaseID:       1,
		nextCreatorRequestID: 1,
		nextLedgerEntryID:    1,
	}
	s.seedPlans()
	return s
}

func (s *MemoryStore) seedPlans() {
	seed := []models.SubscriptionPlan{
		{
			Name:     "Weekly Plan",
			Duration: models.DurationWeekly,
			Price:    799,
			Features: models.Features{"Access to all premium content", "Direct messaging", "Weekly exclusive updates", "Cancel anytime"},
		},
		{
			Name:     "Monthly Plan",
			Duration: models.DurationMonthly,
			Price:    2499,
			Features: models.Features{"Access to all premium content", "Direct messaging", "Monthly exclusive updates", "22% savings compared to weekly", "Cancel anytime"},
		},
		{
			Name:     "Yearly Plan",
			Duration: models.DurationYearly,
			Price:    19999,
			Features: models.Features{"Access to all premium content", "Direct messaging", "Yearly exclusive updates", "33% savings compared to monthly", "Cancel anytime"},
		},
	}
	for i := range seed {
		plan := seed[i]
		plan.ID = s.nextPlanID
		s.nextPlanID++
		s.plans[plan.ID] = &plan
	}
}

// User operations

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return ErrUserExists
		}
	}

	user.ID = s.nextUserID
	s.nextUserID++
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.WalletBalance = 0
	user.CreatedAt = time.Now()

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLocked(id)
}

func (s *MemoryStore) userLocked(id int) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *user
	return &out, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			out := *user
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}

	updated := *user
	// Balance state belongs to the ledger primitives only.
	updated.WalletBalance = existing.WalletBalance
	updated.CreatedAt = existing.CreatedAt
	s.users[user.ID] = &updated
	*user = updated
	return nil
}

// Ledger operations

func (s *MemoryStore) Balance(_ context.Context, userID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	return user.WalletBalance, nil
}

func (s *MemoryStore) Transfer(_ context.Context, fromID, toID int, amount int64, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transferLocked(fromID, toID, amount, reference)
}

func (s *MemoryStore) transferLocked(fromID, toID int, amount int64, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	from, ok := s.users[fromID]
	if !ok {
		return ErrNotFound
	}
	to, ok := s.users[toID]
	if !ok {
		return ErrNotFound
	}

	if from.WalletBalance < amount {
		return ErrInsufficientBalance
	}

	from.WalletBalance -= amount
	to.WalletBalance += amount
	s.appendEntryLocked(reference, fromID, -amount, "DEBIT", from.WalletBalance)
	s.appendEntryLocked(reference, toID, amount, "CREDIT", to.WalletBalance)
	return nil
}

func (s *MemoryStore) Credit(_ context.Context, userID int, amount int64, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creditLocked(userID, amount, reference)
}

func (s *MemoryStore) creditLocked(userID int, amount int64, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}

	user.WalletBalance += amount
	s.appendEntryLocked(reference, userID, amount, "CREDIT", user.WalletBalance)
	return nil
}

func (s *MemoryStore) appendEntryLocked(reference string, userID int, amount int64, entryType string, balance int64) {
	s.ledgerEntries = append(s.ledgerEntries, models.LedgerEntry{
		ID:        s.nextLedgerEntryID,
		Reference: reference,
		UserID:    userID,
		Amount:    amount,
		EntryType: entryType,
		Balance:   balance,
		CreatedAt: time.Now(),
	})
	s.nextLedgerEntryID++
}

func (s *MemoryStore) ListLedgerEntries(_ context.Context, userID, limit int) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []models.LedgerEntry{}
	for i := len(s.ledgerEntries) - 1; i >= 0 && len(entries) < limit; i-- {
		if s.ledgerEntries[i].UserID == userID {
			entries = append(entries, s.ledgerEntries[i])
		}
	}
	return entries, nil
}

// Post operations

func (s *MemoryStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = s.nextPostID
	s.nextPostID++
	post.CreatedAt = time.Now()

	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

func (s *MemoryStore) GetPost(_ context.Context, id int) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *post
	return &out, nil
}

func (s *MemoryStore) ListPosts(_ context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]models.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (s *MemoryStore) ListPostsByUser(_ context.Context, userID int) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := []models.Post{}
	for _, post := range s.posts {
		if post.UserID == userID {
			posts = append(posts, *post)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// Comment operations

func (s *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment.ID = s.nextCommentID
	s.nextCommentID++
	comment.CreatedAt = time.Now()

	stored := *comment
	s.comments[comment.ID] = &stored
	return nil
}

func (s *MemoryStore) ListCommentsByPost(_ context.Context, postID int) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := []models.Comment{}
	for _, comment := range s.comments {
		if comment.PostID == postID {
			comments = append(comments, *comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

// Like operations

func (s *MemoryStore) GetLikeByUserAndPost(_ context.Context, userID, postID int) (*models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, like := range s.likes {
		if like.UserID == userID && like.PostID == postID {
			out := *like
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateLike(_ context.Context, like *models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.likes {
		if existing.UserID == like.UserID && existing.PostID == like.PostID {
			return ErrDuplicateLike
		}
	}

	like.ID = s.nextLikeID
	s.nextLikeID++
	like.CreatedAt = time.Now()

	stored := *like
	s.likes[like.ID] = &stored
	return nil
}

func (s *MemoryStore) DeleteLike(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.likes[id]; !ok {
		return ErrNotFound
	}
	delete(s.likes, id)
	return nil
}

// Subscription plan operations

func (s *MemoryStore) CreatePlan(_ context.Context, plan *models.SubscriptionPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan.ID = s.nextPlanID
	s.nextPlanID++

	stored := *plan
	s.plans[plan.ID] = &stored
	return nil
}

func (s *MemoryStore) GetPlan(_ context.Context, id int) (*models.SubscriptionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *plan
	return &out, nil
}

func (s *MemoryStore) ListPlans(_ context.Context) ([]models.SubscriptionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans := make([]models.SubscriptionPlan, 0, len(s.plans))
	for _, plan := range s.plans {
		plans = append(plans, *plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, nil
}

// Subscription operations

func (s *MemoryStore) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One active subscription per user: retire earlier rows.
	for _, existing := range s.subscriptions {
		if existing.UserID == sub.UserID && existing.IsActive {
			existing.IsActive = false
		}
	}

	sub.ID = s.nextSubscriptionID
	s.nextSubscriptionID++
	if sub.StartDate.IsZero() {
		sub.StartDate = time.Now()
	}
	sub.IsActive = true

	stored := *sub
	s.subscriptions[sub.ID] = &stored
	return nil
}

func (s *MemoryStore) ListSubscriptionsByUser(_ context.Context, userID int) ([]models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := []models.Subscription{}
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].StartDate.After(subs[j].StartDate) })
	return subs, nil
}

func (s *MemoryStore) GetActiveSubscription(_ context.Context, userID int) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.IsActive && sub.EndDate.After(now) {
			out := *sub
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Message operations

func (s *MemoryStore) CreateMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextMessageID
	s.nextMessageID++
	msg.IsUnlocked = !msg.IsPPV // free messages are readable immediately
	msg.CreatedAt = time.Now()

	stored := *msg
	s.messages[msg.ID] = &stored
	return nil
}

func (s *MemoryStore) GetMessage(_ context.Context, id int) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *msg
	return &out, nil
}

func (s *MemoryStore) ListMessagesBetween(_ context.Context, userID, otherID int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := []models.Message{}
	for _, msg := range s.messages {
		if (msg.SenderID == userID && msg.ReceiverID == otherID) ||
			(msg.SenderID == otherID && msg.ReceiverID == userID) {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

func (s *MemoryStore) ListConversations(_ context.Context, userID int) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := map[int]models.Message{}
	for _, msg := range s.messages {
		if msg.SenderID != userID && msg.ReceiverID != userID {
			continue
		}
		peerID := msg.ReceiverID
		if msg.SenderID != userID {
			peerID = msg.SenderID
		}
		if existing, ok := latest[peerID]; !ok || msg.CreatedAt.After(existing.CreatedAt) {
			latest[peerID] = *msg
		}
	}

	conversations := make([]models.Conversation, 0, len(latest))
	for peerID, msg := range latest {
		conversations = append(conversations, models.Conversation{UserID: peerID, LastMessage: msg})
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations, nil
}

// Tip operations

func (s *MemoryStore) CreateTip(_ context.Context, tip *models.Tip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tip.ID = s.nextTipID
	s.nextTipID++
	tip.CreatedAt = time.Now()

	stored := *tip
	s.tips[tip.ID] = &stored
	return nil
}

func (s *MemoryStore) ListTipsByReceiver(_ context.Context, receiverID int) ([]models.Tip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tips := []models.Tip{}
	for _, tip := range s.tips {
		if tip.ReceiverID == receiverID {
			tips = append(tips, *tip)
		}
	}
	sort.Slice(tips, func(i, j int) bool { return tips[i].CreatedAt.After(tips[j].CreatedAt) })
	return tips, nil
}

// Payment request operations

func (s *MemoryStore) CreatePaymentRequest(_ context.Context, req *models.PaymentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Amount <= 0 {
		return ErrInvalidAmount
	}

	req.ID = s.nextPaymentRequestID
	s.nextPaymentRequestID++
	req.Status = models.PaymentStatusPending
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	stored := *req
	s.paymentRequests[req.ID] = &stored
	return nil
}

func (s *MemoryStore) GetPaymentRequest(_ context.Context, id int) (*models.PaymentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.paymentRequests[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *req
	return &out, nil
}

func (s *MemoryStore) ListPaymentRequestsByUser(_ context.Context, userID int) ([]models.PaymentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := []models.PaymentRequest{}
	for _, req := range s.paymentRequests {
		if req.UserID == userID {
			reqs = append(reqs, *req)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

func (s *MemoryStore) ListPendingPaymentRequests(_ context.Context) ([]models.PaymentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := []models.PaymentRequest{}
	for _, req := range s.paymentRequests {
		if req.Status == models.PaymentStatusPending {
			reqs = append(reqs, *req)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.Before(reqs[j].CreatedAt) })
	return reqs, nil
}

func (s *MemoryStore) ResolvePaymentRequest(_ context.Context, id int, status, reference string) (*models.PaymentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status != models.PaymentStatusApproved && status != models.PaymentStatusRejected {
		return nil, ErrInvalidStatus
	}

	req, ok := s.paymentRequests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Status != models.PaymentStatusPending {
		return nil, ErrAlreadyResolved
	}

	if status == models.PaymentStatusApproved {
		if err := s.creditLocked(req.UserID, req.Amount, reference); err != nil {
			return nil, err
		}
	}

	req.Status = status
	req.UpdatedAt = time.Now()
	out := *req
	return &out, nil
}

// Purchased content operations

func (s *MemoryStore) HasPurchased(_ context.Context, userID, postID, messageID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPurchasedLocked(userID, postID, messageID), nil
}

func (s *MemoryStore) hasPurchasedLocked(userID, postID, messageID int) bool {
	for _, purchase := range s.purchasedContent {
		if purchase.UserID != userID {
			continue
		}
		if postID != 0 && purchase.PostID != nil && *purchase.PostID == postID {
			return true
		}
		if messageID != 0 && purchase.MessageID != nil && *purchase.MessageID == messageID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) PurchaseContent(_ context.Context, purchase *models.PurchasedContent, ownerID int, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var postID, messageID int
	if purchase.PostID != nil {
		postID = *purchase.PostID
	}
	if purchase.MessageID != nil {
		messageID = *purchase.MessageID
	}

	if s.hasPurchasedLocked(purchase.UserID, postID, messageID) {
		return ErrDuplicatePurchase
	}

	// Free content still gets a receipt, just no money movement.
	if purchase.Amount > 0 {
		if err := s.transferLocked(purchase.UserID, ownerID, purchase.Amount, reference); err != nil {
			return err
		}
	}

	purchase.ID = s.nextPurchaseID
	s.nextPurchaseID++
	purchase.CreatedAt = time.Now()
	stored := *purchase
	s.purchasedContent[purchase.ID] = &stored

	if messageID != 0 {
		if msg, ok := s.messages[messageID]; ok {
			msg.IsUnlocked = true
		}
	}
	return nil
}

func (s *MemoryStore) ListPurchasesByUser(_ context.Context, userID int) ([]models.PurchasedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchases := []models.PurchasedContent{}
	for _, purchase := range s.purchasedContent {
		if purchase.UserID == userID {
			purchases = append(purchases, *purchase)
		}
	}
	sort.Slice(purchases, func(i, j int) bool { return purchases[i].CreatedAt.After(purchases[j].CreatedAt) })
	return purchases, nil
}

// Creator request operations

func (s *MemoryStore) CreateCreatorRequest(_ context.Context, req *models.CreatorRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = s.nextCreatorRequestID
	s.nextCreatorRequestID++
	req.Status = models.RequestStatusPending
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	stored := *req
	s.creatorRequests[req.ID] = &stored
	return nil
}

func (s *MemoryStore) GetCreatorRequest(_ context.Context, id int) (*models.CreatorRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.creatorRequests[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *req
	return &out, nil
}

func (s *MemoryStore) ListCreatorRequestsByUser(_ context.Context, userID int) ([]models.CreatorRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := []models.CreatorRequest{}
	for _, req := range s.creatorRequests {
		if req.UserID == userID {
			reqs = append(reqs, *req)
		}
	}
	sortCreatorRequests(reqs)
	return reqs, nil
}

func (s *MemoryStore) ListAllCreatorRequests(_ context.Context) ([]models.CreatorRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := make([]models.CreatorRequest, 0, len(s.creatorRequests))
	for _, req := range s.creatorRequests {
		reqs = append(reqs, *req)
	}
	sortCreatorRequests(reqs)
	return reqs, nil
}

func (s *MemoryStore) ListPublicCreatorRequests(_ context.Context) ([]models.CreatorRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := []models.CreatorRequest{}
	for _, req := range s.creatorRequests {
		if req.IsPublic {
			reqs = append(reqs, *req)
		}
	}
	sortCreatorRequests(reqs)
	return reqs, nil
}

func sortCreatorRequests(reqs []models.CreatorRequest) {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
}

func (s *MemoryStore) UpdateCreatorRequest(_ context.Context, req *models.CreatorRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.creatorRequests[req.ID]
	if !ok {
		return ErrNotFound
	}

	updated := *req
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	s.creatorRequests[req.ID] = &updated
	*req = updated
	return nil
}

// Admin stats

func (s *MemoryStore) GetStats(_ context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &Stats{
		TotalUsers: len(s.users),
		TotalPosts: len(s.posts),
	}

	now := time.Now()
	for _, sub := range s.subscriptions {
		if sub.IsActive && sub.EndDate.After(now) {
			stats.TotalSubscribers++
		}
		if plan, ok := s.plans[sub.PlanID]; ok {
			stats.TotalEarnings += plan.Price
		}
	}
	for _, tip := range s.tips {
		stats.TotalEarnings += tip.Amount
	}
	for _, purchase := range s.purchasedContent {
		stats.TotalEarnings += purchase.Amount
	}
	return stats, nil
}
