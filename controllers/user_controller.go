package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/database"
	"alphastore/middleware"
	"alphastore/models"
	"alphastore/users"
)

type UserService interface {
	Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in users.ProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, id primitive.ObjectID, oldPassword, newPassword string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context) ([]models.User, error)
	VerifyDetails(ctx context.Context, in users.VerifyInput) error
}

type UserController struct {
	base
	svc    UserService
	tokens TokenRevoker
	secret []byte
}

func NewUserController(svc UserService, tokens TokenRevoker, secret []byte, lg *zap.Logger, timeout time.Duration) *UserController {
	return &UserController{base: newBase(lg, timeout), svc: svc, tokens: tokens, secret: secret}
}

func profileJSON(u *models.User) gin.H {
	out := userJSON(u)
	out["contactNumber"] = u.ContactNumber
	out["address"] = u.SavedAddress
	return out
}

func (uc *UserController) Me(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := uc.ctx(c)
	defer cancel()

	u, err := uc.svc.Profile(ctx, id)
	if err != nil {
		uc.respondError(c, err, "Failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": profileJSON(u)})
}

func (uc *UserController) UpdateMe(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	var in users.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	ctx, cancel := uc.ctx(c)
	defer cancel()

	u, err := uc.svc.UpdateProfile(ctx, id, in)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		uc.respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "data": profileJSON(u)})
}

// ChangePassword takes {"oldPassword", "newPassword"} and logs the caller out.
func (uc *UserController) ChangePassword(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	var body struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "oldPassword and newPassword are required")
		return
	}
	ctx, cancel := uc.ctx(c)
	defer cancel()

	if err := uc.svc.ChangePassword(ctx, id, body.OldPassword, body.NewPassword); err != nil {
		uc.respondError(c, err, "Failed to change password")
		return
	}
	uc.revokeCurrent(ctx, c)
	c.JSON(http.StatusOK, gin.H{"message": "Password changed, please log in again", "logout": true})
}

func (uc *UserController) DeleteMe(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := uc.ctx(c)
	defer cancel()

	if err := uc.svc.Delete(ctx, id); err != nil {
		uc.respondError(c, err, "Failed to delete account")
		return
	}
	uc.revokeCurrent(ctx, c)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted", "logout": true})
}

func (uc *UserController) List(c *gin.Context) {
	ctx, cancel := uc.ctx(c)
	defer cancel()

	list, err := uc.svc.List(ctx)
	if err != nil {
		uc.respondError(c, err, "Failed to fetch users")
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, profileJSON(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": out})
}

func (uc *UserController) VerifyDetails(c *gin.Context) {
	var in users.VerifyInput
	if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" || in.Name == "" {
		badRequest(c, "name and email are required")
		return
	}
	ctx, cancel := uc.ctx(c)
	defer cancel()

	if err := uc.svc.VerifyDetails(ctx, in); err != nil {
		uc.respondError(c, err, "Failed to verify details")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Details verified"})
}

// revokeCurrent blacklists the bearer token of the request. The account
// change already succeeded, so a failure is only logged.
func (uc *UserController) revokeCurrent(ctx context.Context, c *gin.Context) {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" {
		return
	}
	claims, err := middleware.ParseToken(uc.secret, tokenString)
	if err != nil {
		return
	}
	if err := uc.tokens.Revoke(ctx, tokenString, claims.ExpiresAt); err != nil && !errors.Is(err, database.ErrDuplicate) {
		uc.lg.Warn("revoke token", zap.Error(err))
	}
}
