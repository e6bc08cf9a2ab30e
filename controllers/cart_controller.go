package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/cart"
	"alphastore/models"
)

type CartService interface {
	Add(ctx context.Context, userID primitive.ObjectID, in cart.AddLine) (*cart.View, error)
	UpdateQuantity(ctx context.Context, userID primitive.ObjectID, lineID, typ string) (*cart.View, error)
	Remove(ctx context.Context, userID primitive.ObjectID, lineID string) (*cart.View, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
	View(ctx context.Context, userID primitive.ObjectID) (*cart.View, error)
}

type CartController struct {
	base
	carts CartService
}

func NewCartController(carts CartService, lg *zap.Logger, timeout time.Duration) *CartController {
	return &CartController{base: newBase(lg, timeout), carts: carts}
}

func (cc *CartController) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	view, err := cc.carts.View(ctx, userID)
	if err != nil {
		cc.respondError(c, err, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": view})
}

func (cc *CartController) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var body struct {
		ItemID   string        `json:"itemId" binding:"required"`
		ItemType string        `json:"itemType"`
		Specs    []models.Spec `json:"specs"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	itemID, err := primitive.ObjectIDFromHex(body.ItemID)
	if err != nil {
		badRequest(c, "Invalid itemId")
		return
	}
	if body.ItemType == "" {
		body.ItemType = models.ItemTypeProduct
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	view, err := cc.carts.Add(ctx, userID, cart.AddLine{ItemID: itemID, ItemType: body.ItemType, Specs: body.Specs})
	if err != nil {
		cc.respondError(c, err, "Failed to add to cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Added to cart", "data": view})
}

// UpdateQuantity takes {"type": "increment"|"decrement"}.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var body struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "type is required")
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	view, err := cc.carts.UpdateQuantity(ctx, userID, c.Param("lineId"), body.Type)
	if err != nil {
		cc.respondError(c, err, "Failed to update cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "data": view})
}

func (cc *CartController) Remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	view, err := cc.carts.Remove(ctx, userID, c.Param("lineId"))
	if err != nil {
		cc.respondError(c, err, "Failed to remove item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart", "data": view})
}

func (cc *CartController) Clear(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	if err := cc.carts.Clear(ctx, userID); err != nil {
		cc.respondError(c, err, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
