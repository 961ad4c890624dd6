package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
	// IdentityKey is the context key for the resolved identity.
	IdentityKey = "identity"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID             uuid.UUID
	Username           string
	PreferredLanguages []string
}

// IdentityResolver loads the identity behind a token's user id. It returns
// ErrIdentityNotFound or ErrAccountDisabled when the user may not sign in.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uuid.UUID) (*Identity, error)
}

// Middleware authenticates requests with bearer tokens.
type Middleware struct {
	jwt      *JWTManager
	resolver IdentityResolver
	logger   *zap.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(jwt *JWTManager, resolver IdentityResolver, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{jwt: jwt, resolver: resolver, logger: logger.Named("auth")}
}

// RequireAuth rejects requests without a valid token for an active user.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "access token required"})
			return
		}

		identity, err := m.authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrAccountDisabled):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "account disabled"})
			case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidTokenClaims), errors.Is(err, ErrIdentityNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			default:
				m.logger.Error("resolve identity failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
			}
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractBearerToken(c); token != "" {
			identity, err := m.authenticate(c.Request.Context(), token)
			if err == nil {
				setIdentity(c, identity)
			} else {
				m.logger.Debug("optional auth ignored token", zap.Error(err))
			}
		}
		c.Next()
	}
}

func (m *Middleware) authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return m.resolver.ResolveIdentity(ctx, claims.UserID)
}

func setIdentity(c *gin.Context, identity *Identity) {
	c.Set(UserIDKey, identity.UserID)
	c.Set(IdentityKey, identity)
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
}

// GetUserID returns the user ID from context.
// Returns uuid.Nil if not found.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

// GetIdentity returns the authenticated identity, or nil.
func GetIdentity(c *gin.Context) *Identity {
	if val, exists := c.Get(IdentityKey); exists {
		if identity, ok := val.(*Identity); ok {
			return identity
		}
	}
	return nil
}

// GetPreferredLanguages returns the caller's preferred languages, or nil
// for anonymous requests.
func GetPreferredLanguages(c *gin.Context) []string {
	if identity := GetIdentity(c); identity != nil && len(identity.PreferredLanguages) > 0 {
		return identity.PreferredLanguages
	}
	return nil
}
