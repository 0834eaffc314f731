package appconfig_test

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	appconfig "github.com/ark-network/counter/internal/app-config"
	"github.com/ark-network/counter/internal/core/application"
	"github.com/ark-network/counter/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			cfg         appconfig.Config
			expectedErr string
		}{
			{
				cfg:         appconfig.Config{EventDbType: "badger"},
				expectedErr: "event db type not supported",
			},
			{
				cfg:         appconfig.Config{EventDbType: "watermill", DbType: "postgres"},
				expectedErr: "db type not supported",
			},
			{
				cfg: appconfig.Config{
					EventDbType: "watermill", DbType: "badger", EscrowType: "vault",
				},
				expectedErr: "escrow type not supported",
			},
			{
				cfg: appconfig.Config{
					EventDbType: "watermill", DbType: "badger", EscrowType: "inmemory",
					OracleType: "switchboard",
				},
				expectedErr: "oracle type not supported",
			},
			{
				cfg: appconfig.Config{
					EventDbType: "watermill", DbType: "sqlite", EscrowType: "inmemory",
					OracleType: "local",
				},
				expectedErr: "missing db dir",
			},
			{
				cfg: appconfig.Config{
					EventDbType: "watermill", DbType: "badger", EscrowType: "redis",
					OracleType: "local", RedisURL: "http://localhost",
				},
				expectedErr: "invalid redis url",
			},
		}

		for _, f := range fixtures {
			f := f
			t.Run(f.expectedErr, func(t *testing.T) {
				err := f.cfg.Validate()
				require.ErrorContains(t, err, f.expectedErr)
			})
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := newConfig()
		cfg.DbType = "sqlite"
		cfg.DbDir = t.TempDir()

		require.NoError(t, cfg.Validate())
		svc := cfg.AppService()
		require.NotNil(t, svc)
		require.NoError(t, svc.Start())
		svc.Stop()
	})
}

func TestAutoSettlement(t *testing.T) {
	cfg := newConfig()
	cfg.OracleFulfillDelay = 50 * time.Millisecond
	cfg.OracleAutoSettle = true

	require.NoError(t, cfg.Validate())
	svc := cfg.AppService()
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)

	ctx := context.Background()
	buf := sha256.Sum256([]byte("player"))
	authority := domain.EncodeKey(buf[:])

	_, err := svc.Initialize(ctx, authority)
	require.NoError(t, err)

	round, err := svc.InitiateRound(ctx, authority, 128)
	require.NoError(t, err)
	require.True(t, round.IsPending())

	var settled domain.Round
	require.Eventually(t, func() bool {
		account, err := svc.GetUserAccount(ctx, authority)
		if err != nil {
			return false
		}
		settled = account.CurrentRound
		return settled.IsSettled()
	}, 5*time.Second, 50*time.Millisecond)

	require.Equal(t, round.Request, settled.Request)
	global, err := svc.GetGlobalAggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, 1+uint64(settled.Result), global.Count)
}

func TestRestartWithVolatileEscrow(t *testing.T) {
	ctx := context.Background()
	buf := sha256.Sum256([]byte("restarted player"))
	authority := domain.EncodeKey(buf[:])
	dir := t.TempDir()

	cfg := newConfig()
	cfg.DbDir = dir
	require.NoError(t, cfg.Validate())
	svc := cfg.AppService()
	require.NoError(t, svc.Start())

	account, err := svc.Initialize(ctx, authority)
	require.NoError(t, err)
	pending, err := svc.InitiateRound(ctx, authority, 7)
	require.NoError(t, err)
	svc.Stop()

	cfg = newConfig()
	cfg.DbDir = dir
	require.NoError(t, cfg.Validate())
	svc = cfg.AppService()
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)

	restored, err := svc.GetUserAccount(ctx, authority)
	require.NoError(t, err)
	require.Equal(t, pending.Request, restored.CurrentRound.Request)
	require.True(t, restored.HasPendingRound())

	// The new oracle doesn't know the request of the pending round.
	_, err = svc.SettleRound(ctx, application.SettleRoundRequest{
		Authority: authority, Result: 7, Signer: "signer", Signature: "signature",
	})
	require.ErrorIs(t, err, domain.ErrRequestNotSuccessful)

	_, err = svc.Initialize(ctx, authority)
	require.ErrorIs(t, err, domain.ErrAccountAlreadyInitialized)

	_, err = cfg.EscrowLedger().Fund(ctx, authority, 1_000_000)
	require.NoError(t, err)

	round, err := svc.InitiateRound(ctx, authority, 9)
	require.NoError(t, err)
	require.True(t, round.IsPending())
	require.NotEqual(t, pending.Request, round.Request)
	require.Equal(t, pending.Slot+1, round.Slot)

	balance, err := cfg.EscrowLedger().BalanceOf(ctx, account.WagerWallet)
	require.NoError(t, err)
	require.Equal(t, application.WagerCost, balance)

	global, err := svc.GetGlobalAggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), global.Count)
}

func newConfig() *appconfig.Config {
	return &appconfig.Config{
		DbType:         "badger",
		EventDbType:    "watermill",
		EscrowType:     "inmemory",
		InitialFunding: 1_000_000,
		OracleType:     "local",
		ProgramID:      domain.DefaultProgramID,
		FunctionID:     "randomness",
	}
}
