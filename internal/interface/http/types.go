package httpservice

import (
	"errors"
	"net/http"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/core/ports"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type initializeRequest struct {
	Authority string `json:"authority" binding:"required"`
}

type initiateRoundRequest struct {
	Guess *uint8 `json:"guess" binding:"required"`
}

type settleRoundRequest struct {
	Result    *uint8 `json:"result" binding:"required"`
	Signer    string `json:"signer" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type roundJSON struct {
	Request   string `json:"request,omitempty"`
	Guess     uint8  `json:"guess"`
	Status    string `json:"status"`
	Result    uint8  `json:"result"`
	Wager     uint64 `json:"wager"`
	Slot      uint64 `json:"slot"`
	Timestamp int64  `json:"timestamp"`
}

type accountJSON struct {
	Key          string    `json:"key"`
	Bump         uint8     `json:"bump"`
	Authority    string    `json:"authority"`
	WagerWallet  string    `json:"wagerWallet"`
	CurrentRound roundJSON `json:"currentRound"`
	LastRound    roundJSON `json:"lastRound"`
}

type globalJSON struct {
	Label string `json:"label"`
	Count uint64 `json:"count"`
}

type errorJSON struct {
	Error string `json:"error"`
	Code  uint32 `json:"code,omitempty"`
	Name  string `json:"name,omitempty"`
}

func toRoundJSON(r domain.Round) roundJSON {
	return roundJSON{
		Request:   r.Request,
		Guess:     r.Guess,
		Status:    r.Status.String(),
		Result:    r.Result,
		Wager:     r.Wager,
		Slot:      r.Slot,
		Timestamp: r.Timestamp,
	}
}

func toAccountJSON(a domain.UserAccount) accountJSON {
	return accountJSON{
		Key:          a.Key,
		Bump:         a.Bump,
		Authority:    a.Authority,
		WagerWallet:  a.WagerWallet,
		CurrentRound: toRoundJSON(a.CurrentRound),
		LastRound:    toRoundJSON(a.LastRound),
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorJSON{Error: err.Error()})
}

func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	body := errorJSON{Error: err.Error()}

	var e *domain.Error
	if errors.As(err, &e) {
		body.Code = e.Code
		body.Name = e.Name
	}

	if status >= http.StatusInternalServerError {
		log.WithError(err).Errorf("failed to serve %s", c.FullPath())
		if !domain.IsFatal(err) {
			body.Error = "internal error"
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotInitialized),
		errors.Is(err, ports.ErrWalletNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountAlreadyInitialized),
		errors.Is(err, domain.ErrRoundInactive),
		errors.Is(err, domain.ErrRequestNotSuccessful):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFunctionValidationFailed),
		errors.Is(err, domain.ErrConstraintHasOne),
		errors.Is(err, domain.ErrConstraintRaw),
		errors.Is(err, domain.ErrConstraintSeeds),
		errors.Is(err, ports.ErrInsufficientAuthority):
		return http.StatusForbidden
	case errors.Is(err, ports.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAggregateOverflow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
