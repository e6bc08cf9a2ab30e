package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/database"
	"alphastore/models"
)

type fakeProducts struct {
	filter  database.ProductFilter
	created *models.Product
	set     bson.M
	change  int
	items   map[primitive.ObjectID]*models.Product
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	f.created = p
	return nil
}

func (f *fakeProducts) Get(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) List(_ context.Context, filter database.ProductFilter) ([]models.Product, int64, error) {
	f.filter = filter
	return []models.Product{{Name: "CPU"}}, 41, nil
}

func (f *fakeProducts) Related(_ context.Context, p *models.Product, _ int64) ([]models.Product, error) {
	return []models.Product{{Name: "other", Category: p.Category}}, nil
}

func (f *fakeProducts) LowStock(context.Context) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (f *fakeProducts) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	f.set = set
	return &models.Product{ID: id}, nil
}

func (f *fakeProducts) Delete(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	return f.Get(context.Background(), id)
}

func (f *fakeProducts) PatchInventory(_ context.Context, id primitive.ObjectID, change int) (*models.Product, error) {
	f.change = change
	p, err := f.Get(context.Background(), id)
	if err != nil {
		return nil, err
	}
	cp := *p
	cp.Stock += change
	return &cp, nil
}

func productRouter(f *fakeProducts) *gin.Engine {
	pc := NewProductController(f, nil, 0)
	r := gin.New()
	r.GET("/products", pc.List)
	r.GET("/products/:id", pc.Get)
	r.GET("/products/:id/related", pc.Related)
	r.POST("/products", pc.Create)
	r.PATCH("/products/:id", pc.Update)
	r.DELETE("/products/:id", pc.Delete)
	r.PATCH("/products/:id/inventory", pc.PatchInventory)
	return r
}

func TestProductController_List(t *testing.T) {
	f := &fakeProducts{}
	r := productRouter(f)

	code, body := send(t, r, http.MethodGet, "/products?category=GPU&minPrice=100&maxPrice=500&page=2&limit=20&state=new", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, database.ProductFilter{
		Category: "GPU", State: "new", MinPrice: 100, MaxPrice: 500, Page: 2, Limit: 20,
	}, f.filter)
	pg := body["pagination"].(map[string]any)
	assert.EqualValues(t, 41, pg["total"])
	assert.EqualValues(t, 3, pg["pages"])

	code, _ = send(t, r, http.MethodGet, "/products?limit=1000", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, maxPageSize, f.filter.Limit)

	for _, q := range []string{"minPrice=cheap", "page=0", "limit=-1", "maxPrice=-5"} {
		code, _ = send(t, r, http.MethodGet, "/products?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
}

func TestProductController_Write(t *testing.T) {
	id := primitive.NewObjectID()
	f := &fakeProducts{items: map[primitive.ObjectID]*models.Product{
		id: {ID: id, Name: "RAM", Category: "Memory", Stock: 5, LowStockThreshold: 3},
	}}
	r := productRouter(f)

	code, _ := send(t, r, http.MethodPost, "/products", map[string]any{"name": "SSD", "category": "Storage", "price": 80.5, "stock": 10})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.AvailabilityInStock, f.created.Availability)
	assert.Equal(t, 10, f.created.Stock)

	code, _ = send(t, r, http.MethodPost, "/products", map[string]any{"name": "SSD"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = send(t, r, http.MethodPost, "/products", map[string]any{"name": "SSD", "category": "Storage", "price": 1, "state": "mint"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = send(t, r, http.MethodPatch, "/products/"+id.Hex(), map[string]any{"price": 99.0, "availability": "pre-order"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, bson.M{"price": 99.0, "availability": "pre-order"}, f.set)

	code, _ = send(t, r, http.MethodPatch, "/products/"+id.Hex(), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := send(t, r, http.MethodPatch, "/products/"+id.Hex()+"/inventory", map[string]any{"change": -3})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, -3, f.change)
	assert.EqualValues(t, 2, body["data"].(map[string]any)["stock"])

	code, _ = send(t, r, http.MethodPatch, "/products/"+id.Hex()+"/inventory", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = send(t, r, http.MethodPatch, "/products/"+primitive.NewObjectID().Hex()+"/inventory", map[string]any{"change": 1})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = send(t, r, http.MethodGet, "/products/"+id.Hex()+"/related", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, _ = send(t, r, http.MethodDelete, "/products/nope", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
