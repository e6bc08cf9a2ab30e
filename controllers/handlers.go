package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The helpers below serve the plain CRUD endpoints of the back office.

func createJSON[I, O any](b base, c *gin.Context, fn func(context.Context, I) (*O, error), what string) {
	var in I
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	ctx, cancel := b.ctx(c)
	defer cancel()

	out, err := fn(ctx, in)
	if err != nil {
		b.respondError(c, err, "Failed to create "+what)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Created " + what, "data": out})
}

func listAll[O any](b base, c *gin.Context, fn func(context.Context) ([]O, error), what string) {
	ctx, cancel := b.ctx(c)
	defer cancel()

	out, err := fn(ctx)
	if err != nil {
		b.respondError(c, err, "Failed to fetch "+what)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": out})
}

func getByID[O any](b base, c *gin.Context, fn func(context.Context, primitive.ObjectID) (*O, error), what string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := b.ctx(c)
	defer cancel()

	out, err := fn(ctx, id)
	if err != nil {
		b.respondError(c, err, "Failed to fetch "+what)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": out})
}

func updateJSON[I, O any](b base, c *gin.Context, fn func(context.Context, primitive.ObjectID, I) (*O, error), what string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in I
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	ctx, cancel := b.ctx(c)
	defer cancel()

	out, err := fn(ctx, id, in)
	if err != nil {
		b.respondError(c, err, "Failed to update "+what)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated " + what, "data": out})
}

func deleteByID(b base, c *gin.Context, fn func(context.Context, primitive.ObjectID) error, what string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := b.ctx(c)
	defer cancel()

	if err := fn(ctx, id); err != nil {
		b.respondError(c, err, "Failed to delete "+what)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted " + what})
}
