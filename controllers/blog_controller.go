package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/blog"
	"alphastore/models"
)

type BlogService interface {
	Create(ctx context.Context, in blog.Input, image *multipart.FileHeader) (*models.Blog, error)
	List(ctx context.Context, publishedOnly bool) ([]models.Blog, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	Update(ctx context.Context, id primitive.ObjectID, in blog.Input, image *multipart.FileHeader) (*models.Blog, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type BlogController struct {
	base
	svc BlogService
}

func NewBlogController(svc BlogService, lg *zap.Logger, timeout time.Duration) *BlogController {
	return &BlogController{base: newBase(lg, timeout), svc: svc}
}

// form reads the multipart fields title, content, published and the
// optional file field image.
func form(c *gin.Context) (blog.Input, *multipart.FileHeader) {
	published, _ := strconv.ParseBool(c.PostForm("published"))
	in := blog.Input{
		Title:     c.PostForm("title"),
		Content:   c.PostForm("content"),
		Published: published,
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return in, nil
	}
	return in, fh
}

func (bc *BlogController) Create(c *gin.Context) {
	in, image := form(c)
	ctx, cancel := bc.ctx(c)
	defer cancel()

	b, err := bc.svc.Create(ctx, in, image)
	if err != nil {
		bc.respondError(c, err, "Failed to create blog")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Blog created", "data": b})
}

// ListPublished serves the public blog.
func (bc *BlogController) ListPublished(c *gin.Context) {
	listAll(bc.base, c, func(ctx context.Context) ([]models.Blog, error) {
		return bc.svc.List(ctx, true)
	}, "blogs")
}

func (bc *BlogController) ListAll(c *gin.Context) {
	listAll(bc.base, c, func(ctx context.Context) ([]models.Blog, error) {
		return bc.svc.List(ctx, false)
	}, "blogs")
}

// Get serves a published post; drafts are hidden from the public.
func (bc *BlogController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := bc.ctx(c)
	defer cancel()

	b, err := bc.svc.Get(ctx, id)
	if err != nil {
		bc.respondError(c, err, "Failed to fetch blog")
		return
	}
	if !b.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blog not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": b})
}

func (bc *BlogController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, image := form(c)
	ctx, cancel := bc.ctx(c)
	defer cancel()

	b, err := bc.svc.Update(ctx, id, in, image)
	if err != nil {
		bc.respondError(c, err, "Failed to update blog")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blog updated", "data": b})
}

func (bc *BlogController) Delete(c *gin.Context) {
	deleteByID(bc.base, c, bc.svc.Delete, "blog")
}
