package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"alphastore/models"
)

var secret = []byte("test-secret")

type revoked struct {
	set map[string]bool
	err error
}

func (r revoked) IsRevoked(_ context.Context, token string) (bool, error) {
	return r.set[token], r.err
}

// countingRevocations records how often the blacklist is consulted.
type countingRevocations struct{ lookups int }

func (r *countingRevocations) IsRevoked(context.Context, string) (bool, error) {
	r.lookups++
	return false, nil
}

func newUser(role string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Role: role}
}

func router(tokens Revocations, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{Auth(secret, tokens, zap.NewNop())}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		id, err := UserID(c)
		if err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, id.Hex())
	})
	r.GET("/", chain...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueParse(t *testing.T) {
	u := newUser(models.RoleAdmin)
	tok, err := IssueToken(secret, u, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)

	_, err = ParseToken([]byte("other"), tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := IssueToken(secret, u, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsNone(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(secret, s)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth(t *testing.T) {
	u := newUser(models.RoleCustomer)
	tok, err := IssueToken(secret, u, time.Hour)
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		w := do(router(revoked{}), tok)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, u.ID.Hex(), w.Body.String())
	})
	t.Run("Missing", func(t *testing.T) {
		w := do(router(revoked{}), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
	t.Run("Garbage", func(t *testing.T) {
		w := do(router(revoked{}), "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
	t.Run("Revoked", func(t *testing.T) {
		w := do(router(revoked{set: map[string]bool{tok: true}}), tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "blacklisted")
	})
	t.Run("StoreDown", func(t *testing.T) {
		w := do(router(revoked{err: errors.New("timeout")}), tok)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
	t.Run("UnsignedTokensSkipBlacklist", func(t *testing.T) {
		forged, err := IssueToken([]byte("attacker"), u, time.Hour)
		require.NoError(t, err)

		tokens := &countingRevocations{}
		r := router(tokens)
		assert.Equal(t, http.StatusUnauthorized, do(r, forged).Code)
		assert.Equal(t, http.StatusUnauthorized, do(r, "not-a-token").Code)
		assert.Zero(t, tokens.lookups)

		assert.Equal(t, http.StatusOK, do(r, tok).Code)
		assert.Equal(t, 1, tokens.lookups)
	})
	t.Run("GarbageWhileStoreDown", func(t *testing.T) {
		w := do(router(revoked{err: errors.New("timeout")}), "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdmin(t *testing.T) {
	customer, err := IssueToken(secret, newUser(models.RoleCustomer), time.Hour)
	require.NoError(t, err)
	admin, err := IssueToken(secret, newUser(models.RoleAdmin), time.Hour)
	require.NoError(t, err)

	r := router(revoked{}, Admin())
	assert.Equal(t, http.StatusForbidden, do(r, customer).Code)
	assert.Equal(t, http.StatusOK, do(r, admin).Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)), Recovery(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["request_id"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, 1, logs.FilterMessage("Panic").Len())
}
