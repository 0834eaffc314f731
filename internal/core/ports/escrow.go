package ports

import (
	"context"
	"errors"
)

var (
	ErrInsufficientAuthority = errors.New("authority is not allowed to move funds of wallet")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrWalletNotFound        = errors.New("wallet not found")
)

// EscrowLedger holds the value wagered by users. Every user account owns a
// single wager wallet, and only the owner can move funds in or out of it.
type EscrowLedger interface {
	// OpenWallet returns the wager wallet of owner, creating it if needed.
	OpenWallet(ctx context.Context, owner string) (string, error)
	BalanceOf(ctx context.Context, wallet string) (uint64, error)
	// Fund credits the funding source of a payer.
	Fund(ctx context.Context, payer string, amount uint64) (uint64, error)
	FundsOf(ctx context.Context, payer string) (uint64, error)
	// Deposit moves amount from the payer's funds to the wallet and returns
	// the new wallet balance.
	Deposit(ctx context.Context, req DepositRequest) (uint64, error)
	// Withdraw moves amount from the wallet back to the payer's funds and
	// returns the new wallet balance.
	Withdraw(ctx context.Context, req WithdrawRequest) (uint64, error)
	Close()
}

type DepositRequest struct {
	Wallet    string
	From      string
	Amount    uint64
	Authority string
}

type WithdrawRequest struct {
	Wallet    string
	To        string
	Amount    uint64
	Authority string
}
