package domain

import (
	"errors"
	"fmt"
)

// Error is a protocol error carrying a stable numeric code.
type Error struct {
	Code    uint32
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

var (
	ErrConstraintHasOne = &Error{
		2001, "ConstraintHasOne", "authority does not match the account authority",
	}
	ErrConstraintRaw = &Error{
		2003, "ConstraintRaw", "wager wallet does not match the account wager wallet",
	}
	ErrConstraintSeeds = &Error{
		2006, "ConstraintSeeds", "account key does not derive from the expected seeds",
	}
	ErrAccountAlreadyInitialized = &Error{
		3000, "AccountAlreadyInitialized", "account already initialized",
	}
	ErrAccountNotInitialized = &Error{
		3012, "AccountNotInitialized", "account not initialized",
	}
	ErrFunctionValidationFailed = &Error{
		6000, "FunctionValidationFailed", "FunctionAccount was not validated successfully",
	}
	ErrRequestNotSuccessful = &Error{
		6001, "SwitchboardRequestNotSuccessful",
		"FunctionRequestAccount status should be 'RequestSuccess'",
	}
	ErrRoundInactive = &Error{
		6002, "RoundInactive", "Round is inactive",
	}
	ErrAggregateOverflow = &Error{
		6003, "AggregateOverflow", "global aggregate would overflow",
	}

	// ErrEscrowUnderfunded is an invariant violation of the escrow ledger,
	// not something a caller can recover from.
	ErrEscrowUnderfunded = errors.New("user escrow is missing funds")
)

// ErrorCode returns the code of the protocol error wrapped by err, if any.
func ErrorCode(err error) (uint32, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

func IsFatal(err error) bool {
	return errors.Is(err, ErrEscrowUnderfunded)
}
