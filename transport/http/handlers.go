package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/service"
)

// Handlers contains the HTTP handlers for the service endpoints
type Handlers struct {
	authService    *service.AuthService
	holdersService *service.HoldersService
	logger         *slog.Logger
}

// NewHandlers creates new handlers
func NewHandlers(authService *service.AuthService, holdersService *service.HoldersService, logger *slog.Logger) *Handlers {
	return &Handlers{
		authService:    authService,
		holdersService: holdersService,
		logger:         logger,
	}
}

// Challenge handles the challenge request
func (h *Handlers) Challenge(c *gin.Context) {
	var req struct {
		AccountID string `json:"accountId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challenge, err := h.authService.IssueChallenge(c.Request.Context(), req.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		h.logger.Error("failed to issue challenge", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payload":         challenge.Payload,
		"serverSignature": challenge.ServerSignature,
		"nonce":           challenge.Payload.Data.Nonce,
	})
}

// Login handles the login request
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		AccountID string          `json:"accountId" binding:"required"`
		Nonce     string          `json:"nonce" binding:"required"`
		Signature json.RawMessage `json:"signature" binding:"required"`
		Challenge core.Challenge  `json:"challenge"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Challenge.ServerSignature == "" || req.Challenge.Payload.Data.Nonce == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.AccountID, req.Nonce, req.Signature, req.Challenge)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Authentication failed"

		// Map domain errors to appropriate status codes
		switch {
		case errors.Is(err, core.ErrInvalidRequest):
			statusCode = http.StatusBadRequest
			errorMsg = "Invalid request"
		case errors.Is(err, core.ErrInvalidNonce):
			statusCode = http.StatusUnauthorized
			errorMsg = "Invalid or consumed nonce"
		case errors.Is(err, core.ErrNonceExpired):
			statusCode = http.StatusUnauthorized
			errorMsg = "Nonce expired"
		case errors.Is(err, core.ErrAccountMismatch):
			statusCode = http.StatusUnauthorized
			errorMsg = "Account mismatch"
		case errors.Is(err, core.ErrInvalidServerSignature):
			statusCode = http.StatusUnauthorized
			errorMsg = "Invalid challenge"
		case errors.Is(err, core.ErrInvalidSignature):
			statusCode = http.StatusUnauthorized
			errorMsg = "Invalid signature"
		default:
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, result)
}

// TopHolders handles the top-holders request
func (h *Handlers) TopHolders(c *gin.Context) {
	tokenID := c.Query("tokenId")
	if tokenID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tokenId"})
		return
	}

	params := core.HolderParams{
		TokenID:    tokenID,
		TopN:       intQuery(c, "topN", 50),
		PageLimit:  intQuery(c, "pageLimit", 100),
		MaxPages:   intQuery(c, "maxPages", 10),
		TTLSeconds: intQuery(c, "ttl", 300),
		Decimals:   intQuery(c, "decimals", -1),
	}

	result, err := h.holdersService.TopHolders(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, core.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		h.logger.Error("failed to aggregate top holders", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top holders"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me returns information about the authenticated user
func (h *Handlers) Me(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}
	accountID, _ := c.Get("accountID")

	c.JSON(http.StatusOK, gin.H{
		"userId":    userID,
		"accountId": accountID,
	})
}

// Healthz is a liveness probe
func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// intQuery parses an integer query parameter, falling back to a default on
// absence or garbage. Range clamping happens in the service layer.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
