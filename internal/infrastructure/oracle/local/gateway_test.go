package localoracle_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/core/ports"
	localoracle "github.com/ark-network/counter/internal/infrastructure/oracle/local"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"
)

const functionID = "randomness"

var descriptor = ports.RequestDescriptor{
	ProgramID: domain.DefaultProgramID,
	MaxGuess:  255,
	User:      newKey("user"),
}

func TestGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("submit_and_fulfill", func(t *testing.T) {
		gateway, err := localoracle.NewOracleGateway(0, functionID)
		require.NoError(t, err)
		defer gateway.Close()

		completions := make(chan ports.RequestCompletion, 1)
		gateway.RegisterCompletionHandler(func(c ports.RequestCompletion) {
			completions <- c
		})

		handle, err := gateway.Submit(ctx, functionID, descriptor, 1000, 512)
		require.NoError(t, err)
		require.NotEmpty(t, handle)

		status, err := gateway.StatusOf(ctx, handle)
		require.NoError(t, err)
		require.Equal(t, ports.RequestPending, status)

		_, err = gateway.Completion(ctx, handle)
		require.Error(t, err)

		completion, err := gateway.Fulfill(ctx, handle)
		require.NoError(t, err)
		require.Equal(t, handle, completion.Request)
		require.Equal(t, descriptor.User, completion.User)

		status, err = gateway.StatusOf(ctx, handle)
		require.NoError(t, err)
		require.Equal(t, ports.RequestSuccess, status)

		notified := <-completions
		require.Equal(t, *completion, notified)

		signer, err := gateway.Signer(functionID)
		require.NoError(t, err)
		require.Equal(t, signer, completion.Signer)
		verifySignature(t, *completion)

		ok, err := gateway.ValidateSigner(ctx, handle, functionID, completion.Signer)
		require.NoError(t, err)
		require.True(t, ok)

		stored, err := gateway.Completion(ctx, handle)
		require.NoError(t, err)
		require.Equal(t, *completion, *stored)

		_, err = gateway.Fulfill(ctx, handle)
		require.Error(t, err)
	})

	t.Run("result_within_max_guess", func(t *testing.T) {
		gateway, err := localoracle.NewOracleGateway(0, functionID)
		require.NoError(t, err)

		small := descriptor
		small.MaxGuess = 3
		for i := 0; i < 20; i++ {
			handle, err := gateway.Submit(ctx, functionID, small, 1000, 512)
			require.NoError(t, err)
			completion, err := gateway.Fulfill(ctx, handle)
			require.NoError(t, err)
			require.LessOrEqual(t, completion.Result, uint8(3))
		}
	})

	t.Run("auto_fulfill", func(t *testing.T) {
		gateway, err := localoracle.NewOracleGateway(10*time.Millisecond, functionID)
		require.NoError(t, err)
		defer gateway.Close()

		handle, err := gateway.Submit(ctx, functionID, descriptor, 1000, 512)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			status, err := gateway.StatusOf(ctx, handle)
			return err == nil && status == ports.RequestSuccess
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("fail_and_cancel", func(t *testing.T) {
		gateway, err := localoracle.NewOracleGateway(0, functionID)
		require.NoError(t, err)

		handle, err := gateway.Submit(ctx, functionID, descriptor, 1000, 512)
		require.NoError(t, err)
		require.NoError(t, gateway.Fail(ctx, handle))

		status, err := gateway.StatusOf(ctx, handle)
		require.NoError(t, err)
		require.Equal(t, ports.RequestFailure, status)

		require.Error(t, gateway.Fail(ctx, handle))
		require.Error(t, gateway.Cancel(ctx, handle))
		_, err = gateway.Fulfill(ctx, handle)
		require.Error(t, err)

		handle, err = gateway.Submit(ctx, functionID, descriptor, 1000, 512)
		require.NoError(t, err)
		require.NoError(t, gateway.Cancel(ctx, handle))
		_, err = gateway.StatusOf(ctx, handle)
		require.ErrorIs(t, err, ports.ErrRequestNotFound)
	})

	t.Run("unknown_request", func(t *testing.T) {
		gateway, err := localoracle.NewOracleGateway(0, functionID)
		require.NoError(t, err)
		handle := newKey("unknown request")

		_, err = gateway.StatusOf(ctx, handle)
		require.ErrorIs(t, err, ports.ErrRequestNotFound)
		_, err = gateway.ValidateSigner(ctx, handle, functionID, "signer")
		require.ErrorIs(t, err, ports.ErrRequestNotFound)
		_, err = gateway.Fulfill(ctx, handle)
		require.ErrorIs(t, err, ports.ErrRequestNotFound)
		_, err = gateway.Completion(ctx, handle)
		require.ErrorIs(t, err, ports.ErrRequestNotFound)
		require.ErrorIs(t, gateway.Fail(ctx, handle), ports.ErrRequestNotFound)
		require.ErrorIs(t, gateway.Cancel(ctx, handle), ports.ErrRequestNotFound)
	})

	t.Run("validate_signer", func(t *testing.T) {
		gateway, err := localoracle.NewOracleGateway(0, functionID, "other")
		require.NoError(t, err)

		handle, err := gateway.Submit(ctx, functionID, descriptor, 1000, 512)
		require.NoError(t, err)
		completion, err := gateway.Fulfill(ctx, handle)
		require.NoError(t, err)

		otherSigner, err := gateway.Signer("other")
		require.NoError(t, err)
		ok, err := gateway.ValidateSigner(ctx, handle, functionID, otherSigner)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = gateway.ValidateSigner(ctx, handle, "other", otherSigner)
		require.NoError(t, err)
		require.False(t, ok)

		_, err = gateway.RotateEnclave(functionID)
		require.NoError(t, err)
		ok, err = gateway.ValidateSigner(ctx, handle, functionID, completion.Signer)
		require.NoError(t, err)
		require.False(t, ok)

		_, err = gateway.ValidateSigner(ctx, "unknown", functionID, completion.Signer)
		require.Error(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := localoracle.NewOracleGateway(0)
		require.Error(t, err)

		gateway, err := localoracle.NewOracleGateway(0, functionID)
		require.NoError(t, err)

		fixtures := []struct {
			name            string
			function        string
			descriptor      ports.RequestDescriptor
			computeBudget   uint32
			responseSizeCap uint32
		}{
			{"unknown_function", "unknown", descriptor, 1000, 512},
			{"missing_compute_budget", functionID, descriptor, 0, 512},
			{"small_response_cap", functionID, descriptor, 1000, 64},
			{
				"invalid_user", functionID,
				ports.RequestDescriptor{ProgramID: domain.DefaultProgramID, MaxGuess: 255, User: "user"},
				1000, 512,
			},
			{
				"invalid_program", functionID,
				ports.RequestDescriptor{ProgramID: "program", MaxGuess: 255, User: descriptor.User},
				1000, 512,
			},
		}
		for _, f := range fixtures {
			f := f
			t.Run(f.name, func(t *testing.T) {
				_, err := gateway.Submit(ctx, f.function, f.descriptor, f.computeBudget, f.responseSizeCap)
				require.Error(t, err)
			})
		}
	})
}

func TestRequestDescriptorParams(t *testing.T) {
	params := descriptor.Params()
	require.Equal(
		t,
		"PID="+domain.DefaultProgramID+",MAX_GUESS=255,USER="+descriptor.User,
		string(params),
	)
}

func verifySignature(t *testing.T, completion ports.RequestCompletion) {
	buf, err := hex.DecodeString(completion.Signer)
	require.NoError(t, err)
	pubkey, err := schnorr.ParsePubKey(buf)
	require.NoError(t, err)

	buf, err = hex.DecodeString(completion.Signature)
	require.NoError(t, err)
	sig, err := schnorr.ParseSignature(buf)
	require.NoError(t, err)

	digest := domain.SettlementDigest(completion.Request, completion.Result)
	require.True(t, sig.Verify(digest, pubkey))
}

func newKey(seed string) string {
	buf := sha256.Sum256([]byte(seed))
	return domain.EncodeKey(buf[:])
}
