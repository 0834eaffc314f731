package ports

import (
	"context"
	"errors"
	"fmt"
)

// ErrRequestNotFound is returned by the oracle for handles it does not know.
var ErrRequestNotFound = errors.New("request not found")

type RequestStatus uint8

const (
	RequestPending RequestStatus = iota
	RequestSuccess
	RequestFailure
)

func (s RequestStatus) String() string {
	switch s {
	case RequestSuccess:
		return "RequestSuccess"
	case RequestFailure:
		return "RequestFailure"
	default:
		return "RequestPending"
	}
}

// RequestDescriptor is handed over to the oracle function as an opaque
// parameter blob.
type RequestDescriptor struct {
	ProgramID string
	MaxGuess  uint8
	User      string
}

func (d RequestDescriptor) Params() []byte {
	return []byte(fmt.Sprintf(
		"PID=%s,MAX_GUESS=%d,USER=%s", d.ProgramID, d.MaxGuess, d.User,
	))
}

// RequestCompletion is what the oracle reports once a request has been
// fulfilled by the enclave.
type RequestCompletion struct {
	Request   string
	User      string
	Result    uint8
	Signer    string
	Signature string
}

type OracleGateway interface {
	// Submit creates a new request for the given function and returns its
	// handle.
	Submit(
		ctx context.Context, functionRef string, descriptor RequestDescriptor,
		computeBudget, responseSizeCap uint32,
	) (string, error)
	StatusOf(ctx context.Context, handle string) (RequestStatus, error)
	// ValidateSigner tells whether signer is the enclave of functionRef and
	// the request identified by handle was issued for that same function.
	ValidateSigner(ctx context.Context, handle, functionRef, signer string) (bool, error)
	// Cancel drops a request that is still pending.
	Cancel(ctx context.Context, handle string) error
	RegisterCompletionHandler(handler func(completion RequestCompletion))
	Close()
}
