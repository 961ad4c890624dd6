package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockIdentityResolver is a mock implementation of IdentityResolver.
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) ResolveIdentity(ctx context.Context, userID uuid.UUID) (*Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Identity), args.Error(1)
}

func newTestRouter(t *testing.T, resolver IdentityResolver, optional bool) (*gin.Engine, *JWTManager) {
	t.Helper()
	jwt := NewJWTManager(&JWTConfig{Secret: testSecret, TokenExpiry: time.Hour})
	mw := NewMiddleware(jwt, resolver, nil)

	handler := mw.RequireAuth()
	if optional {
		handler = mw.OptionalAuth()
	}

	router := gin.New()
	router.GET("/test", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":    GetUserID(c).String(),
			"languages": GetPreferredLanguages(c),
		})
	})
	return router, jwt
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/test", nil)
	if token != "" {
		req.Header.Set(AuthorizationHeader, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()

	t.Run("missing token", func(t *testing.T) {
		router, _ := newTestRouter(t, new(MockIdentityResolver), false)

		w := doRequest(router, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "access token required")
	})

	t.Run("invalid token", func(t *testing.T) {
		router, _ := newTestRouter(t, new(MockIdentityResolver), false)

		w := doRequest(router, "garbage")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		resolver.On("ResolveIdentity", mock.Anything, userID).
			Return(&Identity{UserID: userID, PreferredLanguages: []string{"fr"}}, nil)
		router, jwt := newTestRouter(t, resolver, false)
		token, _, err := jwt.GenerateToken(userID)
		require.NoError(t, err)

		w := doRequest(router, token)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":"`+userID.String()+`","languages":["fr"]}`, w.Body.String())
	})

	t.Run("disabled account", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		resolver.On("ResolveIdentity", mock.Anything, userID).Return(nil, ErrAccountDisabled)
		router, jwt := newTestRouter(t, resolver, false)
		token, _, _ := jwt.GenerateToken(userID)

		w := doRequest(router, token)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "account disabled")
	})

	t.Run("unknown user", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		resolver.On("ResolveIdentity", mock.Anything, userID).Return(nil, ErrIdentityNotFound)
		router, jwt := newTestRouter(t, resolver, false)
		token, _, _ := jwt.GenerateToken(userID)

		w := doRequest(router, token)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("resolver failure", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		resolver.On("ResolveIdentity", mock.Anything, userID).Return(nil, errors.New("db down"))
		router, jwt := newTestRouter(t, resolver, false)
		token, _, _ := jwt.GenerateToken(userID)

		w := doRequest(router, token)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	userID := uuid.New()

	t.Run("anonymous request passes", func(t *testing.T) {
		router, _ := newTestRouter(t, new(MockIdentityResolver), true)

		w := doRequest(router, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":"`+uuid.Nil.String()+`","languages":null}`, w.Body.String())
	})

	t.Run("invalid token is ignored", func(t *testing.T) {
		router, _ := newTestRouter(t, new(MockIdentityResolver), true)

		w := doRequest(router, "garbage")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		resolver.On("ResolveIdentity", mock.Anything, userID).
			Return(&Identity{UserID: userID, PreferredLanguages: []string{"en", "ar"}}, nil)
		router, jwt := newTestRouter(t, resolver, true)
		token, _, _ := jwt.GenerateToken(userID)

		w := doRequest(router, token)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"languages":["en","ar"]`)
	})
}

func TestMiddleware_LoggerName(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	jwt := NewJWTManager(&JWTConfig{Secret: testSecret, TokenExpiry: time.Hour})
	mw := NewMiddleware(jwt, new(MockIdentityResolver), zap.New(core))

	router := gin.New()
	router.GET("/test", mw.OptionalAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(router, "garbage")

	assert.Equal(t, http.StatusOK, w.Code)
	entries := logs.FilterMessage("optional auth ignored token").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "auth", entries[0].LoggerName)
}
