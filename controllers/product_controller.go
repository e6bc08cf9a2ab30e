package controllers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/database"
	"alphastore/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	relatedLimit    = 4
)

type Products interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, f database.ProductFilter) ([]models.Product, int64, error)
	Related(ctx context.Context, p *models.Product, limit int64) ([]models.Product, error)
	LowStock(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	PatchInventory(ctx context.Context, id primitive.ObjectID, change int) (*models.Product, error)
}

type ProductController struct {
	base
	products Products
}

func NewProductController(products Products, lg *zap.Logger, timeout time.Duration) *ProductController {
	return &ProductController{base: newBase(lg, timeout), products: products}
}

// productInput is shared by create and partial update; nil fields are
// left untouched on update.
type productInput struct {
	Name              *string       `json:"name"`
	Category          *string       `json:"category"`
	Price             *float64      `json:"price"`
	DiscountPrice     *float64      `json:"discountPrice"`
	Stock             *int          `json:"stock"`
	LowStockThreshold *int          `json:"lowStockThreshold"`
	Availability      *string       `json:"availability"`
	State             *string       `json:"state"`
	Specs             []models.Spec `json:"specs"`
	Image             *string       `json:"image"`
	Description       *string       `json:"description"`
}

func (in productInput) set() (bson.M, string) {
	set := bson.M{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, "Name must not be empty"
		}
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		set["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		if !validPrice(*in.Price) {
			return nil, "Price must be a non-negative number"
		}
		set["price"] = *in.Price
	}
	if in.DiscountPrice != nil {
		if !validPrice(*in.DiscountPrice) {
			return nil, "Discount price must be a non-negative number"
		}
		set["discountPrice"] = *in.DiscountPrice
	}
	if in.Stock != nil {
		set["stock"] = *in.Stock
	}
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return nil, "Low stock threshold must not be negative"
		}
		set["lowStockThreshold"] = *in.LowStockThreshold
	}
	if in.Availability != nil {
		if !models.ValidAvailability(*in.Availability) {
			return nil, "Invalid availability"
		}
		set["availability"] = *in.Availability
	}
	if in.State != nil {
		if !models.ValidState(*in.State) {
			return nil, "Invalid state"
		}
		set["state"] = *in.State
	}
	if in.Specs != nil {
		set["specs"] = in.Specs
	}
	if in.Image != nil {
		set["image"] = *in.Image
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	return set, ""
}

func validPrice(p float64) bool {
	return p >= 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

func (pc *ProductController) Create(c *gin.Context) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	if in.Name == nil || in.Category == nil || in.Price == nil {
		badRequest(c, "Name, category and price are required")
		return
	}
	if _, msg := in.set(); msg != "" {
		badRequest(c, msg)
		return
	}

	p := models.Product{
		Name:          strings.TrimSpace(*in.Name),
		Category:      strings.TrimSpace(*in.Category),
		Price:         *in.Price,
		DiscountPrice: in.DiscountPrice,
		Availability:  models.AvailabilityInStock,
		State:         models.StateNew,
		Specs:         in.Specs,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.LowStockThreshold != nil {
		p.LowStockThreshold = *in.LowStockThreshold
	}
	if in.Availability != nil {
		p.Availability = *in.Availability
	}
	if in.State != nil {
		p.State = *in.State
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if p.Specs == nil {
		p.Specs = []models.Spec{}
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	if err := pc.products.Create(ctx, &p); err != nil {
		pc.respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "data": p})
}

func queryFloat(c *gin.Context, key string) (float64, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

func queryInt(c *gin.Context, key string, def int64) (int64, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// List serves the catalog with optional filters and pagination.
func (pc *ProductController) List(c *gin.Context) {
	f := database.ProductFilter{
		Category:     c.Query("category"),
		Availability: c.Query("availability"),
		State:        c.Query("state"),
	}
	var ok1, ok2, ok3, ok4 bool
	f.MinPrice, ok1 = queryFloat(c, "minPrice")
	f.MaxPrice, ok2 = queryFloat(c, "maxPrice")
	f.Page, ok3 = queryInt(c, "page", 1)
	f.Limit, ok4 = queryInt(c, "limit", defaultPageSize)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		badRequest(c, "Invalid query parameters")
		return
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	products, total, err := pc.products.List(ctx, f)
	if err != nil {
		pc.respondError(c, err, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Fetch success",
		"data":    products,
		"pagination": gin.H{
			"page":  f.Page,
			"limit": f.Limit,
			"total": total,
			"pages": (total + f.Limit - 1) / f.Limit,
		},
	})
}

func (pc *ProductController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := pc.ctx(c)
	defer cancel()

	p, err := pc.products.Get(ctx, id)
	if err != nil {
		pc.respondError(c, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": p})
}

func (pc *ProductController) Related(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := pc.ctx(c)
	defer cancel()

	p, err := pc.products.Get(ctx, id)
	if err != nil {
		pc.respondError(c, err, "Failed to fetch product")
		return
	}
	related, err := pc.products.Related(ctx, p, relatedLimit)
	if err != nil {
		pc.respondError(c, err, "Failed to fetch related products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": related})
}

func (pc *ProductController) LowStock(c *gin.Context) {
	ctx, cancel := pc.ctx(c)
	defer cancel()

	products, err := pc.products.LowStock(ctx)
	if err != nil {
		pc.respondError(c, err, "Failed to fetch low stock products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": products})
}

func (pc *ProductController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	set, msg := in.set()
	if msg != "" {
		badRequest(c, msg)
		return
	}
	if len(set) == 0 {
		badRequest(c, "Nothing to update")
		return
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	p, err := pc.products.Update(ctx, id, set)
	if err != nil {
		pc.respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "data": p})
}

func (pc *ProductController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := pc.ctx(c)
	defer cancel()

	if _, err := pc.products.Delete(ctx, id); err != nil {
		pc.respondError(c, err, "Failed to delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// PatchInventory applies {change} to the displayed stock.
func (pc *ProductController) PatchInventory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Change *int `json:"change" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "change is required")
		return
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	p, err := pc.products.PatchInventory(ctx, id, *body.Change)
	if err != nil {
		pc.respondError(c, err, "Failed to update inventory")
		return
	}
	if p.LowStock() {
		pc.lg.Warn("Low stock", zap.String("product", p.ID.Hex()), zap.Int("stock", p.Stock))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory updated", "data": p})
}
