package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"alphastore/database"
	"alphastore/middleware"
	"alphastore/models"
	"alphastore/users"
)

type Users interface {
	Create(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

type AuthController struct {
	base
	users  Users
	tokens TokenRevoker
	secret []byte
	ttl    time.Duration
}

func NewAuthController(users Users, tokens TokenRevoker, secret []byte, ttl time.Duration, lg *zap.Logger, timeout time.Duration) *AuthController {
	return &AuthController{
		base:   newBase(lg, timeout),
		users:  users,
		tokens: tokens,
		secret: secret,
		ttl:    ttl,
	}
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID.Hex(),
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

func (a *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	hashed, err := users.HashPassword(input.Password)
	if err != nil {
		a.respondError(c, err, "Failed to register")
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	user := models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashed,
		Role:     models.RoleCustomer,
	}
	if err := a.users.Create(ctx, &user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		a.respondError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": userJSON(&user)})
}

func (a *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	user, err := a.users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		a.respondError(c, err, "Failed to log in")
		return
	}
	if !users.CheckPassword(user.Password, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := middleware.IssueToken(a.secret, user, a.ttl)
	if err != nil {
		a.respondError(c, err, "Failed to log in")
		return
	}

	out := userJSON(user)
	out["token"] = token
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": out})
}

// Logout blacklists the presented token until it would have expired.
func (a *AuthController) Logout(c *gin.Context) {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" {
		badRequest(c, "Token required")
		return
	}
	claims, err := middleware.ParseToken(a.secret, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	if err := a.tokens.Revoke(ctx, tokenString, claims.ExpiresAt); err != nil && !errors.Is(err, database.ErrDuplicate) {
		a.respondError(c, err, "Failed to blacklist token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
