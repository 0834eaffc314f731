package domain

import "context"

type UserAccountRepository interface {
	// Add fails with ErrAccountAlreadyInitialized if the key is taken.
	Add(ctx context.Context, account UserAccount) error
	// Get fails with ErrAccountNotInitialized if the key is unknown.
	Get(ctx context.Context, key string) (*UserAccount, error)
	Update(ctx context.Context, account UserAccount) error
	// GetPendingBefore returns the accounts whose current round is pending
	// and was initiated before the given unix timestamp.
	GetPendingBefore(ctx context.Context, timestamp int64) ([]UserAccount, error)
	Close()
}

type GlobalAggregateRepository interface {
	// Init creates the aggregate with a zero count if it does not exist yet.
	Init(ctx context.Context) error
	Get(ctx context.Context) (*GlobalAggregate, error)
	// Increment adds delta to the aggregate and returns the new count.
	Increment(ctx context.Context, delta uint64) (uint64, error)
	Close()
}
