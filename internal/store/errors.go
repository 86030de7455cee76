package store

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUserExists          = errors.New("user already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrDuplicatePurchase   = errors.New("content already purchased")
	ErrDuplicateLike       = errors.New("already liked")
	ErrAlreadyResolved     = errors.New("payment request already resolved")
	ErrInvalidStatus       = errors.New("invalid status")
)
