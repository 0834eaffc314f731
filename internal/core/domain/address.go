package domain

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// ProgramSeed prefixes the seeds of every user account address.
	ProgramSeed = "CUSTOM_RANDOMNESS"
	// DefaultProgramID identifies the counter program when none is configured.
	DefaultProgramID = "7vdpJaVD83HZPSroATuxfkYfrg72yfxe35cC4xMkFUNM"
	// EscrowProgramID owns every wager wallet.
	EscrowProgramID = "C3dNnC3P1WbsaGGoiM1ZnM1pFLcRZ3LJ3edjCBXrnepQ"

	wagerWalletSeed = "wager_wallet"

	KeySize = 32

	maxSeeds      = 16
	maxSeedLength = 32
)

var (
	pdaTag = []byte("ProgramDerivedAddress")

	errOnCurve = errors.New("derived address is a valid public key")
)

func EncodeKey(key []byte) string {
	return base58.Encode(key)
}

func DecodeKey(key string) ([]byte, error) {
	buf := base58.Decode(key)
	if len(buf) != KeySize {
		return nil, fmt.Errorf("invalid key %q: expected %d bytes", key, KeySize)
	}
	return buf, nil
}

// CreateProgramAddress hashes seeds and program id into an address that is
// guaranteed not to be an x-only secp256k1 public key, hence no private key
// can sign for it.
func CreateProgramAddress(seeds [][]byte, programID string) (string, error) {
	if len(seeds) > maxSeeds {
		return "", fmt.Errorf("too many seeds: max %d", maxSeeds)
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return "", fmt.Errorf("seed too long: max %d bytes", maxSeedLength)
		}
	}
	program, err := DecodeKey(programID)
	if err != nil {
		return "", fmt.Errorf("invalid program id: %w", err)
	}

	msgs := append(append([][]byte{}, seeds...), program)
	hash := chainhash.TaggedHash(pdaTag, msgs...)

	if isOnCurve(hash[:]) {
		return "", errOnCurve
	}
	return EncodeKey(hash[:]), nil
}

// FindProgramAddress searches the bump, starting from 255, that makes the
// seeds derive a valid program address.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		withBump := append(append([][]byte{}, seeds...), []byte{uint8(bump)})
		address, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return address, uint8(bump), nil
		}
		if !errors.Is(err, errOnCurve) {
			return "", 0, err
		}
	}
	return "", 0, fmt.Errorf("unable to find a viable program address bump")
}

func UserAccountSeeds(authority string) ([][]byte, error) {
	key, err := DecodeKey(authority)
	if err != nil {
		return nil, fmt.Errorf("invalid authority: %w", err)
	}
	return [][]byte{[]byte(ProgramSeed), key}, nil
}

// WagerWalletAddress returns the wallet associated to owner in the escrow
// program. The same owner always gets the same wallet.
func WagerWalletAddress(owner string) (string, error) {
	key, err := DecodeKey(owner)
	if err != nil {
		return "", fmt.Errorf("invalid wallet owner: %w", err)
	}
	address, _, err := FindProgramAddress(
		[][]byte{key, []byte(wagerWalletSeed)}, EscrowProgramID,
	)
	return address, err
}

// VerifyUserAccountKey checks that the account key derives from its own
// authority and bump.
func VerifyUserAccountKey(account UserAccount, programID string) error {
	seeds, err := UserAccountSeeds(account.Authority)
	if err != nil {
		return ErrConstraintSeeds
	}
	seeds = append(seeds, []byte{account.Bump})
	key, err := CreateProgramAddress(seeds, programID)
	if err != nil || key != account.Key {
		return ErrConstraintSeeds
	}
	return nil
}

// SettlementDigest is the message an enclave signs to settle a request
// with the given result.
func SettlementDigest(request string, result uint8) []byte {
	hash := chainhash.TaggedHash([]byte("counter/settle"), []byte(request), []byte{result})
	return hash[:]
}

func isOnCurve(buf []byte) bool {
	_, err := schnorr.ParsePubKey(buf)
	return err == nil
}
