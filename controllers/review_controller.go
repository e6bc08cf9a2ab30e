package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
	"alphastore/reviews"
)

type ReviewService interface {
	Submit(ctx context.Context, userID primitive.ObjectID, in reviews.SubmitInput) (*models.Review, error)
	ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error)
	ListApproved(ctx context.Context) ([]models.Review, error)
	ListAll(ctx context.Context) ([]models.Review, error)
	Update(ctx context.Context, userID, id primitive.ObjectID, in reviews.UpdateInput) (*models.Review, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
	Moderate(ctx context.Context, id primitive.ObjectID, action string) (*models.Review, error)
}

type ReviewController struct {
	base
	svc ReviewService
}

func NewReviewController(svc ReviewService, lg *zap.Logger, timeout time.Duration) *ReviewController {
	return &ReviewController{base: newBase(lg, timeout), svc: svc}
}

func (rc *ReviewController) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	createJSON(rc.base, c, func(ctx context.Context, in reviews.SubmitInput) (*models.Review, error) {
		return rc.svc.Submit(ctx, userID, in)
	}, "review")
}

func (rc *ReviewController) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listAll(rc.base, c, func(ctx context.Context) ([]models.Review, error) {
		return rc.svc.ListMine(ctx, userID)
	}, "reviews")
}

func (rc *ReviewController) ListApproved(c *gin.Context) {
	listAll(rc.base, c, rc.svc.ListApproved, "reviews")
}

func (rc *ReviewController) ListAll(c *gin.Context) {
	listAll(rc.base, c, rc.svc.ListAll, "reviews")
}

func (rc *ReviewController) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	updateJSON(rc.base, c, func(ctx context.Context, id primitive.ObjectID, in reviews.UpdateInput) (*models.Review, error) {
		return rc.svc.Update(ctx, userID, id, in)
	}, "review")
}

func (rc *ReviewController) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	deleteByID(rc.base, c, func(ctx context.Context, id primitive.ObjectID) error {
		return rc.svc.Delete(ctx, userID, id)
	}, "review")
}

// Moderate takes {"action": "approved"|"rejected"|"deleted"}.
func (rc *ReviewController) Moderate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "action is required")
		return
	}
	ctx, cancel := rc.ctx(c)
	defer cancel()

	r, err := rc.svc.Moderate(ctx, id, body.Action)
	if err != nil {
		rc.respondError(c, err, "Failed to moderate review")
		return
	}
	if r == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Review removed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review approved", "data": r})
}
