package ports

import (
	"context"

	"github.com/ark-network/counter/internal/core/domain"
)

type RepoManager interface {
	Events() domain.EventRepository
	Users() domain.UserAccountRepository
	Global() domain.GlobalAggregateRepository
	// RunInTx commits every repository write made with the ctx passed to fn
	// atomically, or none of them if fn returns an error.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close()
}
