package application

import (
	"encoding/hex"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// validateUserAccount checks the constraints every round operation relies
// on: the caller owns the account, the account lives at the address derived
// from its authority, and the wager wallet is the one associated to it.
func validateUserAccount(account *domain.UserAccount, authority, programID string) error {
	if account.Authority != authority {
		return domain.ErrConstraintHasOne
	}
	if err := domain.VerifyUserAccountKey(*account, programID); err != nil {
		return err
	}
	wallet, err := domain.WagerWalletAddress(account.Key)
	if err != nil || wallet != account.WagerWallet {
		return domain.ErrConstraintRaw
	}
	return nil
}

// verifyCompletion makes sure result has been signed by signer for the
// given request.
func verifyCompletion(request string, result uint8, signer, signature string) error {
	buf, err := hex.DecodeString(signer)
	if err != nil {
		return domain.ErrFunctionValidationFailed
	}
	pubkey, err := schnorr.ParsePubKey(buf)
	if err != nil {
		return domain.ErrFunctionValidationFailed
	}

	buf, err = hex.DecodeString(signature)
	if err != nil {
		return domain.ErrFunctionValidationFailed
	}
	sig, err := schnorr.ParseSignature(buf)
	if err != nil {
		return domain.ErrFunctionValidationFailed
	}

	if !sig.Verify(domain.SettlementDigest(request, result), pubkey) {
		return domain.ErrFunctionValidationFailed
	}
	return nil
}
