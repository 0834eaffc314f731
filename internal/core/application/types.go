package application

import (
	"context"

	"github.com/ark-network/counter/internal/core/domain"
)

const (
	// WagerCost is the amount that must sit in the wager wallet for a round
	// to start.
	WagerCost uint64 = 100_000
	// MaxGuess is the upper bound of the random outcome.
	MaxGuess uint8 = 255

	ComputeBudget   uint32 = 1000
	ResponseSizeCap uint32 = 512
)

type Service interface {
	Start() error
	Stop()
	Initialize(ctx context.Context, authority string) (*domain.UserAccount, error)
	InitiateRound(ctx context.Context, authority string, guess uint8) (*domain.Round, error)
	SettleRound(ctx context.Context, req SettleRoundRequest) (*domain.Round, error)
	GetUserAccount(ctx context.Context, authority string) (*domain.UserAccount, error)
	GetUserAccountByKey(ctx context.Context, key string) (*domain.UserAccount, error)
	GetGlobalAggregate(ctx context.Context) (*domain.GlobalAggregate, error)
	ListStalePendingRounds(ctx context.Context) ([]domain.UserAccount, error)
}

// SettleRoundRequest carries the result reported by the oracle for the
// current round of authority, along with the hex encoded x-only key of the
// enclave that computed it and its schnorr signature of the result.
type SettleRoundRequest struct {
	Authority string
	Result    uint8
	Signer    string
	Signature string
}

type Config struct {
	ProgramID  string
	FunctionID string
	// InitialFunding is credited to the funding source of every newly
	// initialized authority. Zero disables it.
	InitialFunding uint64
	// AutoSettle makes the service settle rounds as soon as the oracle
	// reports a completion.
	AutoSettle bool
	// StaleRoundThreshold is the age, in seconds, after which a pending
	// round gets reported.
	StaleRoundThreshold int64
	// StaleCheckInterval is how often, in seconds, pending rounds are
	// checked. Zero disables the check.
	StaleCheckInterval int64
}
