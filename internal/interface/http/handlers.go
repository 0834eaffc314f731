package httpservice

import (
	"net/http"
	"time"

	"github.com/ark-network/counter/internal/core/application"
	"github.com/ark-network/counter/internal/core/domain"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	svc application.Service
}

// NewHandler exposes the given app service as a JSON API.
func NewHandler(svc application.Service) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handler{svc}

	router.GET("/healthz", h.healthz)

	v1 := router.Group("/v1")
	v1.POST("/accounts", h.initialize)
	v1.GET("/accounts/:authority", h.getAccount)
	v1.POST("/accounts/:authority/rounds", h.initiateRound)
	v1.POST("/accounts/:authority/rounds/settle", h.settleRound)
	v1.GET("/account-keys/:key", h.getAccountByKey)
	v1.GET("/global", h.getGlobalAggregate)
	v1.GET("/rounds/stale", h.listStaleRounds)

	return router
}

func (h *handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := domain.DecodeKey(req.Authority); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.svc.Initialize(c.Request.Context(), req.Authority)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountJSON(*account))
}

func (h *handler) getAccount(c *gin.Context) {
	authority, ok := parseAuthority(c)
	if !ok {
		return
	}

	account, err := h.svc.GetUserAccount(c.Request.Context(), authority)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountJSON(*account))
}

func (h *handler) getAccountByKey(c *gin.Context) {
	key := c.Param("key")
	if _, err := domain.DecodeKey(key); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.svc.GetUserAccountByKey(c.Request.Context(), key)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountJSON(*account))
}

func (h *handler) initiateRound(c *gin.Context) {
	authority, ok := parseAuthority(c)
	if !ok {
		return
	}
	var req initiateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	round, err := h.svc.InitiateRound(c.Request.Context(), authority, *req.Guess)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRoundJSON(*round))
}

func (h *handler) settleRound(c *gin.Context) {
	authority, ok := parseAuthority(c)
	if !ok {
		return
	}
	var req settleRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	round, err := h.svc.SettleRound(c.Request.Context(), application.SettleRoundRequest{
		Authority: authority,
		Result:    *req.Result,
		Signer:    req.Signer,
		Signature: req.Signature,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoundJSON(*round))
}

func (h *handler) getGlobalAggregate(c *gin.Context) {
	global, err := h.svc.GetGlobalAggregate(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, globalJSON{Label: global.Label, Count: global.Count})
}

func (h *handler) listStaleRounds(c *gin.Context) {
	accounts, err := h.svc.ListStalePendingRounds(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	list := make([]accountJSON, 0, len(accounts))
	for _, account := range accounts {
		list = append(list, toAccountJSON(account))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": list})
}

func parseAuthority(c *gin.Context) (string, bool) {
	authority := c.Param("authority")
	if _, err := domain.DecodeKey(authority); err != nil {
		badRequest(c, err)
		return "", false
	}
	return authority, true
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Debug("handled request")
	}
}
