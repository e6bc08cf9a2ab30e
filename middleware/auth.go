package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
)

const (
	keyUserID = "userId"
	keyRole   = "role"
	keyToken  = "token"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Revocations reports whether a token was logged out.
type Revocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Claims is what an auth token carries.
type Claims struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// IssueToken signs an HS256 token for the user valid for ttl.
func IssueToken(secret []byte, u *models.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": u.ID.Hex(),
		"role":   u.Role,
		"exp":    time.Now().Add(ttl).Unix(),
	})
	s, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return s, nil
}

// ParseToken verifies the signature and expiry of a token.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, _ := mc["userId"].(string)
	role, _ := mc["role"].(string)
	exp, _ := mc["exp"].(float64)
	if userID == "" || exp == 0 {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: userID, Role: role, ExpiresAt: time.Unix(int64(exp), 0)}, nil
}

// BearerToken returns the token from the Authorization header, with or
// without the Bearer prefix.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// Auth rejects requests without a valid, unrevoked token and stores the
// caller's id and role on the context.
func Auth(secret []byte, tokens Revocations, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}

		// Only signed tokens reach the blacklist lookup.
		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		revoked, err := tokens.IsRevoked(c.Request.Context(), tokenString)
		if err != nil {
			lg.Error("Check token revocation", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been blacklisted"})
			return
		}

		c.Set(keyUserID, claims.UserID)
		c.Set(keyRole, claims.Role)
		c.Set(keyToken, tokenString)
		c.Next()
	}
}

func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(keyRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: admin only"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id.
func UserID(c *gin.Context) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.GetString(keyUserID))
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(keyRole) == models.RoleAdmin
}
