package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/faq"
	"alphastore/models"
)

type FAQService interface {
	Create(ctx context.Context, in faq.Input) (*models.FAQ, error)
	List(ctx context.Context) ([]models.FAQ, error)
	Update(ctx context.Context, id primitive.ObjectID, in faq.Input) (*models.FAQ, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	View(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error)
}

type FAQController struct {
	base
	svc FAQService
}

func NewFAQController(svc FAQService, lg *zap.Logger, timeout time.Duration) *FAQController {
	return &FAQController{base: newBase(lg, timeout), svc: svc}
}

func (fc *FAQController) List(c *gin.Context) {
	listAll(fc.base, c, fc.svc.List, "FAQs")
}

func (fc *FAQController) Create(c *gin.Context) {
	createJSON(fc.base, c, fc.svc.Create, "FAQ")
}

func (fc *FAQController) Update(c *gin.Context) {
	updateJSON(fc.base, c, fc.svc.Update, "FAQ")
}

func (fc *FAQController) Delete(c *gin.Context) {
	deleteByID(fc.base, c, fc.svc.Delete, "FAQ")
}

// View counts a read and returns the entry.
func (fc *FAQController) View(c *gin.Context) {
	getByID(fc.base, c, fc.svc.View, "FAQ")
}
