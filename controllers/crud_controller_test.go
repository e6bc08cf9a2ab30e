package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/appointments"
	"alphastore/blog"
	"alphastore/cart"
	"alphastore/database"
	"alphastore/finance"
	"alphastore/models"
	"alphastore/reviews"
	"alphastore/validation"
)

type fakeCart struct {
	CartService
	added cart.AddLine
}

func (f *fakeCart) Add(_ context.Context, _ primitive.ObjectID, in cart.AddLine) (*cart.View, error) {
	f.added = in
	return &cart.View{Items: 1}, nil
}

func (f *fakeCart) UpdateQuantity(_ context.Context, _ primitive.ObjectID, _, typ string) (*cart.View, error) {
	if typ != cart.Increment && typ != cart.Decrement {
		return nil, cart.ErrUpdateType
	}
	return nil, cart.ErrLineNotFound
}

func (f *fakeCart) View(context.Context, primitive.ObjectID) (*cart.View, error) {
	return &cart.View{Lines: []models.CartLine{}}, nil
}

func TestCartController(t *testing.T) {
	f := &fakeCart{}
	cc := NewCartController(f, nil, 0)

	anon := gin.New()
	anon.GET("/cart", cc.Get)
	code, _ := send(t, anon, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	r := gin.New()
	r.Use(customer(primitive.NewObjectID()))
	r.GET("/cart", cc.Get)
	r.POST("/cart", cc.Add)
	r.PATCH("/cart/:lineId", cc.UpdateQuantity)

	code, _ = send(t, r, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, code)

	item := primitive.NewObjectID()
	code, _ = send(t, r, http.MethodPost, "/cart", map[string]any{"itemId": item.Hex()})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, item, f.added.ItemID)
	assert.Equal(t, models.ItemTypeProduct, f.added.ItemType)

	code, _ = send(t, r, http.MethodPost, "/cart", map[string]any{"itemId": "zzz"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = send(t, r, http.MethodPatch, "/cart/l1", map[string]any{"type": "double"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = send(t, r, http.MethodPatch, "/cart/l1", map[string]any{"type": cart.Increment})
	assert.Equal(t, http.StatusNotFound, code)
}

type fakeFinance struct {
	FinanceService
	tx finance.TransactionInput
}

func (f *fakeFinance) CreateTransaction(_ context.Context, in finance.TransactionInput) (*models.Transaction, error) {
	f.tx = in
	if in.Amount <= 0 {
		return nil, validation.New("amount must be a positive number")
	}
	return &models.Transaction{ID: primitive.NewObjectID(), Amount: in.Amount, IsSuspicious: in.Amount > finance.TransactionRule.MaxAmount}, nil
}

func (f *fakeFinance) DeleteInvoice(context.Context, primitive.ObjectID) error {
	return database.ErrNotFound
}

func (f *fakeFinance) Summary(context.Context) (*finance.Summary, error) {
	return &finance.Summary{TotalIncome: 100, TotalExpense: 40, Net: 60}, nil
}

func TestFinanceController(t *testing.T) {
	fc := NewFinanceController(&fakeFinance{}, nil, 0)
	r := gin.New()
	r.POST("/transactions", fc.CreateTransaction)
	r.DELETE("/invoices/:id", fc.DeleteInvoice)
	r.GET("/summary", fc.Summary)

	code, body := send(t, r, http.MethodPost, "/transactions", map[string]any{"amount": 12000, "type": "Expense", "category": "rent"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["data"].(map[string]any)["isSuspicious"])

	code, _ = send(t, r, http.MethodPost, "/transactions", map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = send(t, r, http.MethodPost, "/transactions", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = send(t, r, http.MethodDelete, "/invoices/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = send(t, r, http.MethodGet, "/summary", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 60, body["data"].(map[string]any)["net"])
}

type fakeAppointments struct {
	AppointmentService
	owner primitive.ObjectID
}

func (f *fakeAppointments) Create(context.Context, primitive.ObjectID, appointments.CreateInput) (*models.Appointment, error) {
	return nil, appointments.ErrSlotTaken
}

func (f *fakeAppointments) Get(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	return &models.Appointment{ID: id, UserID: f.owner}, nil
}

func TestAppointmentController(t *testing.T) {
	owner := primitive.NewObjectID()
	ac := NewAppointmentController(&fakeAppointments{owner: owner}, nil, 0)
	path := "/appointments/" + primitive.NewObjectID().Hex()

	for _, tt := range []struct {
		name string
		who  gin.HandlerFunc
		want int
	}{
		{"Owner", customer(owner), http.StatusOK},
		{"Stranger", customer(primitive.NewObjectID()), http.StatusForbidden},
		{"Admin", as(primitive.NewObjectID(), models.RoleAdmin), http.StatusOK},
	} {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/appointments/:id", tt.who, ac.Get)
			code, _ := send(t, r, http.MethodGet, path, nil)
			assert.Equal(t, tt.want, code)
		})
	}

	r := gin.New()
	r.POST("/appointments", customer(owner), ac.Create)
	code, _ := send(t, r, http.MethodPost, "/appointments", map[string]any{"date": "2030-01-01", "timeSlot": "10:00"})
	assert.Equal(t, http.StatusConflict, code)
}

type fakeReviews struct {
	ReviewService
}

func (fakeReviews) Submit(context.Context, primitive.ObjectID, reviews.SubmitInput) (*models.Review, error) {
	return nil, reviews.ErrNotVerifiedBuyer
}

func (fakeReviews) Moderate(_ context.Context, id primitive.ObjectID, action string) (*models.Review, error) {
	if action == "approved" {
		return &models.Review{ID: id, Status: models.ReviewApproved}, nil
	}
	return nil, nil
}

func TestReviewController(t *testing.T) {
	rc := NewReviewController(fakeReviews{}, nil, 0)
	r := gin.New()
	r.POST("/reviews", customer(primitive.NewObjectID()), rc.Submit)
	r.PUT("/reviews/:id/moderate", rc.Moderate)

	code, _ := send(t, r, http.MethodPost, "/reviews", map[string]any{"rating": 5})
	assert.Equal(t, http.StatusForbidden, code)

	path := "/reviews/" + primitive.NewObjectID().Hex() + "/moderate"
	code, body := send(t, r, http.MethodPut, path, map[string]any{"action": "approved"})
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, body["data"])

	code, body = send(t, r, http.MethodPut, path, map[string]any{"action": "deleted"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Review removed", body["message"])
}

type fakeBlog struct {
	BlogService
	in    blog.Input
	image *multipart.FileHeader
	post  models.Blog
}

func (f *fakeBlog) Create(_ context.Context, in blog.Input, image *multipart.FileHeader) (*models.Blog, error) {
	f.in, f.image = in, image
	if image == nil {
		return nil, validation.New("image is required")
	}
	return &models.Blog{ID: primitive.NewObjectID(), Title: in.Title}, nil
}

func (f *fakeBlog) Get(context.Context, primitive.ObjectID) (*models.Blog, error) {
	return &f.post, nil
}

func multipartRequest(t *testing.T, path string, fields map[string]string, field, file string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != "" {
		fw, err := mw.CreateFormFile(field, file)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBlogController(t *testing.T) {
	f := &fakeBlog{}
	bc := NewBlogController(f, nil, 0)
	r := gin.New()
	r.POST("/blogs", bc.Create)
	r.GET("/blogs/:id", bc.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/blogs", map[string]string{"title": "Build guide", "content": "...", "published": "true"}, "image", "cover.png"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Build guide", f.in.Title)
	assert.True(t, f.in.Published)
	require.NotNil(t, f.image)
	assert.Equal(t, "cover.png", f.image.Filename)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/blogs", map[string]string{"title": "No image", "content": "..."}, "image", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := "/blogs/" + primitive.NewObjectID().Hex()
	code, _ := send(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, code)

	f.post.Published = true
	code, _ = send(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, code)
}
