package service

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/tidecast/tidecast/internal/config"
)

// AuthService guards the operational API. Callers authenticate with either
// the static bearer token (for machine callers like the cron trigger) or a
// TOTP code (for a human operator). When neither is configured the API is
// open, which is only sane for local development.
type AuthService struct {
	logger     *zap.Logger
	token      string
	totpSecret string
}

func NewAuthService(cfg *config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		logger:     logger,
		token:      cfg.Token,
		totpSecret: cfg.TOTPSecret,
	}
}

func (a *AuthService) Enabled() bool {
	return a.token != "" || a.totpSecret != ""
}

func (a *AuthService) ValidateToken(token string) bool {
	if a.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) == 1
}

func (a *AuthService) ValidateCode(code string) bool {
	if a.totpSecret == "" {
		return false
	}
	valid := totp.Validate(code, a.totpSecret)
	if !valid {
		a.logger.Warn("TOTP code validation failed")
	}
	return valid
}

func (a *AuthService) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}

		if header := c.GetHeader("Authorization"); header != "" {
			token := strings.TrimPrefix(header, "Bearer ")
			if a.ValidateToken(token) {
				c.Next()
				return
			}
		}

		if code := c.GetHeader("X-Auth-Code"); code != "" {
			if a.ValidateCode(code) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
}
