package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fanvault/backend/internal/models"
)

// PostgresStore implements Store on a transactional database. Balance
// mutations run inside a single transaction with wallet rows locked in
// ascending id order, so concurrent transfers cannot deadlock or lose
// updates.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// User operations

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.WalletBalance = 0
	user.CreatedAt = time.Now()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password, name, bio, role, wallet_balance, is_verified, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8)
		RETURNING id`,
		user.Username, user.Password, user.Name, user.Bio, user.Role,
		user.IsVerified, user.AvatarURL, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// isUniqueViolation matches the lib/pq unique_violation SQLSTATE without
// depending on the driver's error type.
func isUniqueViolation(err error) bool {
	type coder interface{ SQLState() string }
	var c coder
	if errors.As(err, &c) {
		return c.SQLState() == "23505"
	}
	return false
}

const userColumns = `id, username, password, name, bio, role, wallet_balance, is_verified, avatar_url, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Name, &user.Bio,
		&user.Role, &user.WalletBalance, &user.IsVerified, &user.AvatarURL, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username))
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	// wallet_balance deliberately missing: only ledger primitives move it.
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $1, password = $2, name = $3, bio = $4, role = $5, is_verified = $6, avatar_url = $7
		WHERE id = $8`,
		user.Username, user.Password, user.Name, user.Bio, user.Role,
		user.IsVerified, user.AvatarURL, user.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Ledger operations

func (s *PostgresStore) Balance(ctx context.Context, userID int) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (s *PostgresStore) Transfer(ctx context.Context, fromID, toID int, amount int64, reference string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.transferTx(ctx, tx, fromID, toID, amount, reference); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) transferTx(ctx context.Context, tx *sql.Tx, fromID, toID int, amount int64, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	// Lock wallets in consistent order to prevent deadlocks.
	firstLock, secondLock := fromID, toID
	if fromID > toID {
		firstLock, secondLock = toID, fromID
	}

	firstBalance, err := s.lockWallet(ctx, tx, firstLock)
	if err != nil {
		return err
	}
	secondBalance, err := s.lockWallet(ctx, tx, secondLock)
	if err != nil {
		return err
	}

	fromBalance, toBalance := firstBalance, secondBalance
	if firstLock != fromID {
		fromBalance, toBalance = secondBalance, firstBalance
	}

	if fromBalance < amount {
		return ErrInsufficientBalance
	}

	if err := s.createLedgerEntry(ctx, tx, reference, fromID, -amount, "DEBIT", fromBalance-amount); err != nil {
		return err
	}
	if err := s.createLedgerEntry(ctx, tx, reference, toID, amount, "CREDIT", toBalance+amount); err != nil {
		return err
	}

	if err := s.setWalletBalance(ctx, tx, fromID, fromBalance-amount); err != nil {
		return err
	}
	return s.setWalletBalance(ctx, tx, toID, toBalance+amount)
}

func (s *PostgresStore) Credit(ctx context.Context, userID int, amount int64, reference string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.creditTx(ctx, tx, userID, amount, reference); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) creditTx(ctx context.Context, tx *sql.Tx, userID int, amount int64, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	balance, err := s.lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}
	if err := s.createLedgerEntry(ctx, tx, reference, userID, amount, "CREDIT", balance+amount); err != nil {
		return err
	}
	return s.setWalletBalance(ctx, tx, userID, balance+amount)
}

func (s *PostgresStore) lockWallet(ctx context.Context, tx *sql.Tx, userID int) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (s *PostgresStore) setWalletBalance(ctx context.Context, tx *sql.Tx, userID int, balance int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET wallet_balance = $1 WHERE id = $2`, balance, userID)
	return err
}

func (s *PostgresStore) createLedgerEntry(ctx context.Context, tx *sql.Tx, reference string, userID int, amount int64, entryType string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (reference, user_id, amount, entry_type, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reference, userID, amount, entryType, balance, time.Now())
	return err
}

func (s *PostgresStore) ListLedgerEntries(ctx context.Context, userID, limit int) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reference, user_id, amount, entry_type, balance, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Reference, &e.UserID, &e.Amount, &e.EntryType, &e.Balance, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Post operations

const postColumns = `id, user_id, content, media_url, is_premium, premium_price, created_at`

func (s *PostgresStore) CreatePost(ctx context.Context, post *models.Post) error {
	post.CreatedAt = time.Now()
	return s.db.QueryRowContext(ctx, `
		INSERT INTO posts (user_id, content, media_url, is_premium, premium_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		post.UserID, post.Content, post.MediaURL, post.IsPremium, post.PremiumPrice, post.CreatedAt).Scan(&post.ID)
}

func (s *PostgresStore) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id).
		Scan(&post.ID, &post.UserID, &post.Content, &post.MediaURL, &post.IsPremium, &post.PremiumPrice, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostgresStore) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.UserID, &post.Content, &post.MediaURL, &post.IsPremium, &post.PremiumPrice, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
}

func (s *PostgresStore) ListPostsByUser(ctx context.Context, userID int) ([]models.Post, error) {
	return s.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresStore) DeletePost(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Comment operations

func (s *PostgresStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.CreatedAt = time.Now()
	return s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		comment.PostID, comment.UserID, comment.Content, comment.CreatedAt).Scan(&comment.ID)
}

func (s *PostgresStore) ListCommentsByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, user_id, content, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Like operations

func (s *PostgresStore) GetLikeByUserAndPost(ctx context.Context, userID, postID int) (*models.Like, error) {
	var like models.Like
	err := s.db.QueryRowContext(ctx, `
		SELECT id, post_id, user_id, created_at
		FROM likes
		WHERE user_id = $1 AND post_id = $2`, userID, postID).
		Scan(&like.ID, &like.PostID, &like.UserID, &like.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &like, nil
}

func (s *PostgresStore) CreateLike(ctx context.Context, like *models.Like) error {
	like.CreatedAt = time.Now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO likes (post_id, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		like.PostID, like.UserID, like.CreatedAt).Scan(&like.ID)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateLike
	}
	return err
}

func (s *PostgresStore) DeleteLike(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscription plan operations

func (s *PostgresStore) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO subscription_plans (name, duration, price, features)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		plan.Name, plan.Duration, plan.Price, plan.Features).Scan(&plan.ID)
}

func (s *PostgresStore) GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, duration, price, features
		FROM subscription_plans WHERE id = $1`, id).
		Scan(&plan.ID, &plan.Name, &plan.Duration, &plan.Price, &plan.Features)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, duration, price, features
		FROM subscription_plans ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []models.SubscriptionPlan{}
	for rows.Next() {
		var plan models.SubscriptionPlan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.Duration, &plan.Price, &plan.Features); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Subscription operations

func (s *PostgresStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// One active subscription per user: retire earlier rows.
	if _, err := tx.ExecContext(ctx, `
		UPDATE user_subscriptions SET is_active = FALSE
		WHERE user_id = $1 AND is_active`, sub.UserID); err != nil {
		return err
	}

	if sub.StartDate.IsZero() {
		sub.StartDate = time.Now()
	}
	sub.IsActive = true
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO user_subscriptions (user_id, plan_id, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id`,
		sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate).Scan(&sub.ID); err != nil {
		return err
	}
	return tx.Commit()
}

const subscriptionColumns = `id, user_id, plan_id, start_date, end_date, is_active`

func (s *PostgresStore) ListSubscriptionsByUser(ctx context.Context, userID int) ([]models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = $1
		ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.Subscription{}
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.StartDate, &sub.EndDate, &sub.IsActive); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *PostgresStore) GetActiveSubscription(ctx context.Context, userID int) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = $1 AND is_active AND end_date > NOW()
		ORDER BY start_date DESC
		LIMIT 1`, userID).
		Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.StartDate, &sub.EndDate, &sub.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// Message operations

const messageColumns = `id, sender_id, receiver_id, content, is_ppv, ppv_price, is_unlocked, created_at`

func scanMessage(scan func(...any) error) (models.Message, error) {
	var msg models.Message
	err := scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.IsPPV, &msg.PPVPrice, &msg.IsUnlocked, &msg.CreatedAt)
	return msg, err
}

func (s *PostgresStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	msg.IsUnlocked = !msg.IsPPV
	msg.CreatedAt = time.Now()
	return s.db.QueryRowContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content, is_ppv, ppv_price, is_unlocked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		msg.SenderID, msg.ReceiverID, msg.Content, msg.IsPPV, msg.PPVPrice, msg.IsUnlocked, msg.CreatedAt).Scan(&msg.ID)
}

func (s *PostgresStore) GetMessage(ctx context.Context, id int) (*models.Message, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (s *PostgresStore) ListMessagesBetween(ctx context.Context, userID, otherID int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC`, userID, otherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *PostgresStore) ListConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE id IN (
			SELECT MAX(id) FROM (
				SELECT id, CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id
				FROM messages
				WHERE sender_id = $1 OR receiver_id = $1
			) peers
			GROUP BY peer_id
		)
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		peerID := msg.ReceiverID
		if msg.SenderID != userID {
			peerID = msg.SenderID
		}
		conversations = append(conversations, models.Conversation{UserID: peerID, LastMessage: msg})
	}
	return conversations, rows.Err()
}

// Tip operations

func (s *PostgresStore) CreateTip(ctx context.Context, tip *models.Tip) error {
	tip.CreatedAt = time.Now()
	return s.db.QueryRowContext(ctx, `
		INSERT INTO tips (sender_id, receiver_id, amount, post_id, message_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		tip.SenderID, tip.ReceiverID, tip.Amount, tip.PostID, tip.MessageID, tip.CreatedAt).Scan(&tip.ID)
}

func (s *PostgresStore) ListTipsByReceiver(ctx context.Context, receiverID int) ([]models.Tip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, amount, post_id, message_id, created_at
		FROM tips
		WHERE receiver_id = $1
		ORDER BY created_at DESC`, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tips := []models.Tip{}
	for rows.Next() {
		var tip models.Tip
		if err := rows.Scan(&tip.ID, &tip.SenderID, &tip.ReceiverID, &tip.Amount, &tip.PostID, &tip.MessageID, &tip.CreatedAt); err != nil {
			return nil, err
		}
		tips = append(tips, tip)
	}
	return tips, rows.Err()
}

// Payment request operations

const paymentRequestColumns = `id, user_id, amount, payment_method, status, created_at, updated_at`

func scanPaymentRequest(scan func(...any) error) (models.PaymentRequest, error) {
	var req models.PaymentRequest
	err := scan(&req.ID, &req.UserID, &req.Amount, &req.PaymentMethod, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	return req, err
}

func (s *PostgresStore) CreatePaymentRequest(ctx context.Context, req *models.PaymentRequest) error {
	if req.Amount <= 0 {
		return ErrInvalidAmount
	}
	req.Status = models.PaymentStatusPending
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	return s.db.QueryRowContext(ctx, `
		INSERT INTO payment_requests (user_id, amount, payment_method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		req.UserID, req.Amount, req.PaymentMethod, req.Status, req.CreatedAt, req.UpdatedAt).Scan(&req.ID)
}

func (s *PostgresStore) GetPaymentRequest(ctx context.Context, id int) (*models.PaymentRequest, error) {
	req, err := scanPaymentRequest(s.db.QueryRowContext(ctx,
		`SELECT `+paymentRequestColumns+` FROM payment_requests WHERE id = $1`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (s *PostgresStore) queryPaymentRequests(ctx context.Context, query string, args ...any) ([]models.PaymentRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs := []models.PaymentRequest{}
	for rows.Next() {
		req, err := scanPaymentRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (s *PostgresStore) ListPaymentRequestsByUser(ctx context.Context, userID int) ([]models.PaymentRequest, error) {
	return s.queryPaymentRequests(ctx,
		`SELECT `+paymentRequestColumns+` FROM payment_requests WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresStore) ListPendingPaymentRequests(ctx context.Context) ([]models.PaymentRequest, error) {
	return s.queryPaymentRequests(ctx,
		`SELECT `+paymentRequestColumns+` FROM payment_requests WHERE status = 'pending' ORDER BY created_at ASC`)
}

func (s *PostgresStore) ResolvePaymentRequest(ctx context.Context, id int, status, reference string) (*models.PaymentRequest, error) {
	if status != models.PaymentStatusApproved && status != models.PaymentStatusRejected {
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	req, err := scanPaymentRequest(tx.QueryRowContext(ctx,
		`SELECT `+paymentRequestColumns+` FROM payment_requests WHERE id = $1 FOR UPDATE`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.Status != models.PaymentStatusPending {
		return nil, ErrAlreadyResolved
	}

	if status == models.PaymentStatusApproved {
		if err := s.creditTx(ctx, tx, req.UserID, req.Amount, reference); err != nil {
			return nil, err
		}
	}

	req.Status = status
	req.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE payment_requests SET status = $1, updated_at = $2
		WHERE id = $3`, req.Status, req.UpdatedAt, req.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Purchased content operations

func (s *PostgresStore) HasPurchased(ctx context.Context, userID, postID, messageID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM purchased_content
			WHERE user_id = $1
			  AND (($2 > 0 AND post_id = $2) OR ($3 > 0 AND message_id = $3))
		)`, userID, postID, messageID).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) PurchaseContent(ctx context.Context, purchase *models.PurchasedContent, ownerID int, reference string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var postID, messageID int
	if purchase.PostID != nil {
		postID = *purchase.PostID
	}
	if purchase.MessageID != nil {
		messageID = *purchase.MessageID
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM purchased_content
			WHERE user_id = $1
			  AND (($2 > 0 AND post_id = $2) OR ($3 > 0 AND message_id = $3))
		)`, purchase.UserID, postID, messageID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicatePurchase
	}

	// Free content still gets a receipt, just no money movement.
	if purchase.Amount > 0 {
		if err := s.transferTx(ctx, tx, purchase.UserID, ownerID, purchase.Amount, reference); err != nil {
			return err
		}
	}

	purchase.CreatedAt = time.Now()
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO purchased_content (user_id, post_id, message_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		purchase.UserID, purchase.PostID, purchase.MessageID, purchase.Amount, purchase.CreatedAt).Scan(&purchase.ID); err != nil {
		return err
	}

	if messageID > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE messages SET is_unlocked = TRUE WHERE id = $1`, messageID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) ListPurchasesByUser(ctx context.Context, userID int) ([]models.PurchasedContent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, post_id, message_id, amount, created_at
		FROM purchased_content
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := []models.PurchasedContent{}
	for rows.Next() {
		var p models.PurchasedContent
		if err := rows.Scan(&p.ID, &p.UserID, &p.PostID, &p.MessageID, &p.Amount, &p.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// Creator request operations

const creatorRequestColumns = `id, user_id, title, description, is_public, status, admin_response, created_at, updated_at`

func scanCreatorRequest(scan func(...any) error) (models.CreatorRequest, error) {
	var req models.CreatorRequest
	err := scan(&req.ID, &req.UserID, &req.Title, &req.Description, &req.IsPublic,
		&req.Status, &req.AdminResponse, &req.CreatedAt, &req.UpdatedAt)
	return req, err
}

func (s *PostgresStore) CreateCreatorRequest(ctx context.Context, req *models.CreatorRequest) error {
	req.Status = models.RequestStatusPending
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	return s.db.QueryRowContext(ctx, `
		INSERT INTO creator_requests (user_id, title, description, is_public, status, admin_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '', $6, $7)
		RETURNING id`,
		req.UserID, req.Title, req.Description, req.IsPublic, req.Status, req.CreatedAt, req.UpdatedAt).Scan(&req.ID)
}

func (s *PostgresStore) GetCreatorRequest(ctx context.Context, id int) (*models.CreatorRequest, error) {
	req, err := scanCreatorRequest(s.db.QueryRowContext(ctx,
		`SELECT `+creatorRequestColumns+` FROM creator_requests WHERE id = $1`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (s *PostgresStore) queryCreatorRequests(ctx context.Context, query string, args ...any) ([]models.CreatorRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs := []models.CreatorRequest{}
	for rows.Next() {
		req, err := scanCreatorRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (s *PostgresStore) ListCreatorRequestsByUser(ctx context.Context, userID int) ([]models.CreatorRequest, error) {
	return s.queryCreatorRequests(ctx,
		`SELECT `+creatorRequestColumns+` FROM creator_requests WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresStore) ListAllCreatorRequests(ctx context.Context) ([]models.CreatorRequest, error) {
	return s.queryCreatorRequests(ctx,
		`SELECT `+creatorRequestColumns+` FROM creator_requests ORDER BY created_at DESC`)
}

func (s *PostgresStore) ListPublicCreatorRequests(ctx context.Context) ([]models.CreatorRequest, error) {
	return s.queryCreatorRequests(ctx,
		`SELECT `+creatorRequestColumns+` FROM creator_requests WHERE is_public ORDER BY created_at DESC`)
}

func (s *PostgresStore) UpdateCreatorRequest(ctx context.Context, req *models.CreatorRequest) error {
	req.UpdatedAt = time.Now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE creator_requests
		SET title = $1, description = $2, is_public = $3, status = $4, admin_response = $5, updated_at = $6
		WHERE id = $7`,
		req.Title, req.Description, req.IsPublic, req.Status, req.AdminResponse, req.UpdatedAt, req.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Admin stats

func (s *PostgresStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&stats.TotalPosts); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_subscriptions
		WHERE is_active AND end_date > NOW()`).Scan(&stats.TotalSubscribers); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE((SELECT SUM(p.price) FROM user_subscriptions us JOIN subscription_plans p ON p.id = us.plan_id), 0)
		     + COALESCE((SELECT SUM(amount) FROM tips), 0)
		     + COALESCE((SELECT SUM(amount) FROM purchased_content), 0)`).Scan(&stats.TotalEarnings); err != nil {
		return nil, err
	}
	return stats, nil
}

// Ensure both drivers satisfy the interface.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
