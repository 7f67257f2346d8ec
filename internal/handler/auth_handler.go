package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ruteo/delivery-backend-go/internal/middleware"
	"github.com/ruteo/delivery-backend-go/pkg/response"
)

// TokenTTL is how long issued bearer tokens stay valid.
const TokenTTL = 24 * time.Hour

// AuthHandler issues API bearer tokens
type AuthHandler struct {
	secret string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{secret: secret}
}

type tokenRequest struct {
	Subject string `json:"subject" binding:"required"`
	Secret  string `json:"secret" binding:"required"`
}

// IssueToken handles POST /auth/token. The caller proves knowledge of the
// shared deployment secret and receives a signed bearer token for the API.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "subject and secret are required")
		return
	}
	if req.Secret != h.secret {
		response.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := middleware.IssueToken(h.secret, req.Subject, TokenTTL)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_in": int(TokenTTL.Seconds()),
	})
}
