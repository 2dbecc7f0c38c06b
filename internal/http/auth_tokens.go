package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// TokenController issues and revokes API bearer tokens.
type TokenController struct {
	auth     *auth.Service
	throttle *auth.LoginThrottle
	expiry   time.Duration
}

func NewTokenController(service *auth.Service, throttle *auth.LoginThrottle, expiry time.Duration) *TokenController {
	if throttle == nil {
		throttle = auth.NewLoginThrottle(auth.DefaultThrottleConfig())
	}
	return &TokenController{
		auth:     service,
		throttle: throttle,
		expiry:   expiry,
	}
}

type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in,omitempty"` // seconds, omitted when tokens never expire
}

// IssueToken handles POST /api/auth/token. A new token replaces any token
// the user held before.
func (tc *TokenController) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ip := c.ClientIP()
	if allowed, wait := tc.throttle.Allow(ip, req.Username); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respondError(c, http.StatusTooManyRequests, "too many failed attempts, try again later")
		return
	}

	ctx := c.Request.Context()
	user, err := tc.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) {
			if locked := tc.throttle.RecordFailure(ip, req.Username); locked {
				requestLogger(c).Warn("token requests locked out",
					zap.String("username", req.Username),
					zap.String("client_ip", ip))
			}
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		respondInternalError(c, err, "authenticate")
		return
	}
	tc.throttle.RecordSuccess(ip, req.Username)

	token, err := tc.auth.IssueToken(ctx, user.ID)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(tc.expiry.Seconds()),
	})
}

// RevokeToken handles DELETE /api/auth/token for the authenticated caller.
func (tc *TokenController) RevokeToken(c *gin.Context) {
	if err := tc.auth.RevokeToken(c.Request.Context(), auth.GetUserID(c)); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "revoke token")
		return
	}
	c.Status(http.StatusNoContent)
}
