package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
)

type PreBuilds interface {
	Create(ctx context.Context, p *models.PreBuild) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.PreBuild, error)
	List(ctx context.Context, category string) ([]models.PreBuild, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.PreBuild, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.PreBuild, error)
}

type PreBuildController struct {
	base
	prebuilds PreBuilds
}

func NewPreBuildController(prebuilds PreBuilds, lg *zap.Logger, timeout time.Duration) *PreBuildController {
	return &PreBuildController{base: newBase(lg, timeout), prebuilds: prebuilds}
}

type preBuildInput struct {
	Name        string        `json:"name" binding:"required"`
	Category    string        `json:"category" binding:"required"`
	Price       float64       `json:"price"`
	Components  []models.Spec `json:"components"`
	Image       string        `json:"image"`
	Description string        `json:"description"`
}

func (in *preBuildInput) bind(c *gin.Context) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		badRequest(c, "Name and category are required")
		return false
	}
	if !validPrice(in.Price) || in.Price == 0 {
		badRequest(c, "Price must be a positive number")
		return false
	}
	if in.Components == nil {
		in.Components = []models.Spec{}
	}
	return true
}

func (pc *PreBuildController) Create(c *gin.Context) {
	var in preBuildInput
	if !in.bind(c) {
		return
	}
	p := models.PreBuild{
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Components:  in.Components,
		Image:       in.Image,
		Description: in.Description,
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	if err := pc.prebuilds.Create(ctx, &p); err != nil {
		pc.respondError(c, err, "Failed to create pre-build")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Pre-build created", "data": p})
}

func (pc *PreBuildController) List(c *gin.Context) {
	ctx, cancel := pc.ctx(c)
	defer cancel()

	list, err := pc.prebuilds.List(ctx, c.Query("category"))
	if err != nil {
		pc.respondError(c, err, "Failed to fetch pre-builds")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": list})
}

func (pc *PreBuildController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := pc.ctx(c)
	defer cancel()

	p, err := pc.prebuilds.Get(ctx, id)
	if err != nil {
		pc.respondError(c, err, "Failed to fetch pre-build")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": p})
}

func (pc *PreBuildController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in preBuildInput
	if !in.bind(c) {
		return
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	p, err := pc.prebuilds.Update(ctx, id, bson.M{
		"name":        strings.TrimSpace(in.Name),
		"category":    strings.TrimSpace(in.Category),
		"price":       in.Price,
		"components":  in.Components,
		"image":       in.Image,
		"description": in.Description,
	})
	if err != nil {
		pc.respondError(c, err, "Failed to update pre-build")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pre-build updated", "data": p})
}

func (pc *PreBuildController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := pc.ctx(c)
	defer cancel()

	if _, err := pc.prebuilds.Delete(ctx, id); err != nil {
		pc.respondError(c, err, "Failed to delete pre-build")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pre-build deleted"})
}
