package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"habit-server/internal/auth"
	"habit-server/internal/domain"
	"habit-server/internal/repository"
)

const principalKey = "auth.principal"

// AuthConfig configures the bearer-token middleware.
type AuthConfig struct {
	// Tokens parses and validates presented bearer tokens.
	Tokens *auth.TokenCodec
	// Users resolves a token subject to a live user record.
	Users repository.UserRepository
	// PublicPaths are exact request paths served without a token.
	PublicPaths []string
}

// AuthRequired returns a middleware that guards every route outside the
// public allowlist. It extracts the bearer token, validates it, resolves the
// subject to a user record and attaches that record to the request context.
// Missing header, malformed header, bad token and unknown subject are all
// the same 401 to the caller.
func AuthRequired(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimSuffix(c.Request.URL.Path, "/")
		for _, public := range cfg.PublicPaths {
			if path == public {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			rejectUnauthorized(c)
			return
		}

		subject, err := cfg.Tokens.Parse(parts[1])
		if err != nil {
			rejectUnauthorized(c)
			return
		}

		// A token for a since-deleted user is as invalid as a forged one.
		user, err := cfg.Users.GetByUsername(c.Request.Context(), subject)
		if err != nil {
			rejectUnauthorized(c)
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

func rejectUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED"})
}

// PrincipalFrom returns the authenticated user attached by AuthRequired.
func PrincipalFrom(c *gin.Context) (*domain.User, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}
