package localoracle

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/core/ports"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// minResponseSize is the room a completion takes: the result byte plus a
// schnorr signature.
const minResponseSize = 1 + schnorr.SignatureSize

type request struct {
	handle     string
	function   string
	descriptor ports.RequestDescriptor
	status     ports.RequestStatus
	result     uint8
	signer     string
	signature  string
	timer      *time.Timer
}

// Gateway is an in-process randomness oracle. Each registered function runs
// in an enclave identified by a secp256k1 key that signs the results.
type Gateway struct {
	lock         *sync.RWMutex
	enclaves     map[string]*secp256k1.PrivateKey // function -> enclave key
	requests     map[string]*request
	handlers     []func(ports.RequestCompletion)
	fulfillDelay time.Duration
}

// NewOracleGateway registers the given functions. Requests are fulfilled
// automatically after fulfillDelay, unless it's zero.
func NewOracleGateway(fulfillDelay time.Duration, functions ...string) (*Gateway, error) {
	if len(functions) <= 0 {
		return nil, fmt.Errorf("missing functions")
	}

	g := &Gateway{
		lock:         &sync.RWMutex{},
		enclaves:     make(map[string]*secp256k1.PrivateKey),
		requests:     make(map[string]*request),
		fulfillDelay: fulfillDelay,
	}
	for _, function := range functions {
		if _, err := g.RotateEnclave(function); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Gateway) Submit(
	_ context.Context, functionRef string, descriptor ports.RequestDescriptor,
	computeBudget, responseSizeCap uint32,
) (string, error) {
	if computeBudget <= 0 {
		return "", fmt.Errorf("missing compute budget")
	}
	if responseSizeCap < minResponseSize {
		return "", fmt.Errorf(
			"response size cap %d too small, must be at least %d",
			responseSizeCap, minResponseSize,
		)
	}
	parsed, err := parseParams(descriptor.Params())
	if err != nil {
		return "", fmt.Errorf("invalid request params: %s", err)
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.enclaves[functionRef]; !ok {
		return "", fmt.Errorf("function %s not found", functionRef)
	}

	id := uuid.New()
	hash := chainhash.TaggedHash([]byte("counter/request"), id[:], []byte(functionRef))
	handle := domain.EncodeKey(hash[:])

	req := &request{
		handle:     handle,
		function:   functionRef,
		descriptor: *parsed,
		status:     ports.RequestPending,
	}
	if g.fulfillDelay > 0 {
		req.timer = time.AfterFunc(g.fulfillDelay, func() {
			if _, err := g.Fulfill(context.Background(), handle); err != nil {
				log.WithError(err).Warnf("failed to fulfill request %s", handle)
			}
		})
	}
	g.requests[handle] = req

	log.WithFields(log.Fields{
		"request":  handle,
		"function": functionRef,
		"user":     parsed.User,
	}).Debug("randomness request submitted")

	return handle, nil
}

func (g *Gateway) StatusOf(_ context.Context, handle string) (ports.RequestStatus, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	req, ok := g.requests[handle]
	if !ok {
		return ports.RequestPending, fmt.Errorf("%w: %s", ports.ErrRequestNotFound, handle)
	}
	return req.status, nil
}

func (g *Gateway) ValidateSigner(
	_ context.Context, handle, functionRef, signer string,
) (bool, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	req, ok := g.requests[handle]
	if !ok {
		return false, fmt.Errorf("%w: %s", ports.ErrRequestNotFound, handle)
	}
	if req.function != functionRef {
		return false, nil
	}
	enclave, ok := g.enclaves[functionRef]
	if !ok {
		return false, nil
	}
	return encodePubkey(enclave) == signer, nil
}

func (g *Gateway) Cancel(_ context.Context, handle string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	req, ok := g.requests[handle]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrRequestNotFound, handle)
	}
	if req.status != ports.RequestPending {
		return fmt.Errorf("request %s already %s", handle, req.status)
	}
	if req.timer != nil {
		req.timer.Stop()
	}
	delete(g.requests, handle)
	return nil
}

func (g *Gateway) RegisterCompletionHandler(handler func(completion ports.RequestCompletion)) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.handlers = append(g.handlers, handler)
}

// Fulfill draws a random result for a pending request, signs it with the
// enclave of its function and notifies the completion handlers.
func (g *Gateway) Fulfill(_ context.Context, handle string) (*ports.RequestCompletion, error) {
	g.lock.Lock()
	req, ok := g.requests[handle]
	if !ok {
		g.lock.Unlock()
		return nil, fmt.Errorf("%w: %s", ports.ErrRequestNotFound, handle)
	}
	if req.status != ports.RequestPending {
		g.lock.Unlock()
		return nil, fmt.Errorf("request %s already %s", handle, req.status)
	}

	result, err := randomResult(req.descriptor.MaxGuess)
	if err != nil {
		g.lock.Unlock()
		return nil, err
	}

	enclave := g.enclaves[req.function]
	sig, err := schnorr.Sign(enclave, domain.SettlementDigest(handle, result))
	if err != nil {
		g.lock.Unlock()
		return nil, fmt.Errorf("failed to sign result: %s", err)
	}

	req.status = ports.RequestSuccess
	req.result = result
	req.signer = encodePubkey(enclave)
	req.signature = hex.EncodeToString(sig.Serialize())

	completion := ports.RequestCompletion{
		Request:   handle,
		User:      req.descriptor.User,
		Result:    result,
		Signer:    req.signer,
		Signature: req.signature,
	}
	handlers := append([]func(ports.RequestCompletion){}, g.handlers...)
	g.lock.Unlock()

	log.WithFields(log.Fields{
		"request": handle,
		"result":  result,
	}).Debug("randomness request fulfilled")

	for _, handler := range handlers {
		handler(completion)
	}
	return &completion, nil
}

// Fail marks a pending request as failed.
func (g *Gateway) Fail(_ context.Context, handle string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	req, ok := g.requests[handle]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrRequestNotFound, handle)
	}
	if req.status != ports.RequestPending {
		return fmt.Errorf("request %s already %s", handle, req.status)
	}
	if req.timer != nil {
		req.timer.Stop()
	}
	req.status = ports.RequestFailure
	return nil
}

// Completion returns what the enclave reported for a fulfilled request.
func (g *Gateway) Completion(_ context.Context, handle string) (*ports.RequestCompletion, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	req, ok := g.requests[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrRequestNotFound, handle)
	}
	if req.status != ports.RequestSuccess {
		return nil, fmt.Errorf("request %s is %s", handle, req.status)
	}
	return &ports.RequestCompletion{
		Request:   handle,
		User:      req.descriptor.User,
		Result:    req.result,
		Signer:    req.signer,
		Signature: req.signature,
	}, nil
}

// RotateEnclave replaces the enclave key of function, registering it if
// needed, and returns the new signer. Results signed by the previous
// enclave no longer validate.
func (g *Gateway) RotateEnclave(function string) (string, error) {
	if len(function) <= 0 {
		return "", fmt.Errorf("missing function")
	}
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate enclave key: %s", err)
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	g.enclaves[function] = key
	return encodePubkey(key), nil
}

func (g *Gateway) Signer(function string) (string, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	key, ok := g.enclaves[function]
	if !ok {
		return "", fmt.Errorf("function %s not found", function)
	}
	return encodePubkey(key), nil
}

func (g *Gateway) Close() {
	g.lock.Lock()
	defer g.lock.Unlock()

	for _, req := range g.requests {
		if req.timer != nil {
			req.timer.Stop()
		}
	}
}

func randomResult(maxGuess uint8) (uint8, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(maxGuess)+1))
	if err != nil {
		return 0, fmt.Errorf("failed to draw random result: %s", err)
	}
	return uint8(n.Uint64()), nil
}

func encodePubkey(key *secp256k1.PrivateKey) string {
	return hex.EncodeToString(schnorr.SerializePubKey(key.PubKey()))
}
