package controllers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
	"alphastore/orders"
)

type OrderService interface {
	Place(ctx context.Context, req orders.PlaceRequest) (*models.Order, error)
	ChangeStatus(ctx context.Context, id primitive.ObjectID, req orders.ChangeStatusRequest) (*models.Order, []string, error)
	Cancel(ctx context.Context, customerID, id primitive.ObjectID) (*models.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	AttachFile(ctx context.Context, id primitive.ObjectID, fh *multipart.FileHeader) (*models.Order, error)
	Stats(ctx context.Context) ([]models.OrderStat, error)
}

type OrderController struct {
	base
	orders OrderService
}

func NewOrderController(svc OrderService, lg *zap.Logger, timeout time.Duration) *OrderController {
	return &OrderController{base: newBase(lg, timeout), orders: svc}
}

// checkoutRequest is the body of POST /api/orders. Dates accept RFC 3339 or
// YYYY-MM-DD.
type checkoutRequest struct {
	Name          string            `json:"name"`
	PhoneNo       string            `json:"phoneNo"`
	Email         string            `json:"email"`
	PaymentMethod string            `json:"paymentMethod"`
	SaveAddress   bool              `json:"saveAddress"`
	Items         []models.CartLine `json:"items"`
	TotalAmount   json.RawMessage   `json:"totalAmount"`
	CODDetails    *struct {
		Address      string `json:"address"`
		DeliveryDate string `json:"deliveryDate"`
		DeliveryTime string `json:"deliveryTime"`
	} `json:"codDetails"`
	PickupDetails *struct {
		PickupDate string `json:"pickupDate"`
		PickupTime string `json:"pickupTime"`
	} `json:"pickupDetails"`

	// Flat form of the delivery fields, used when the nested objects are absent.
	Address      string `json:"address"`
	DeliveryDate string `json:"deliveryDate"`
	DeliveryTime string `json:"deliveryTime"`
	PickupDate   string `json:"pickupDate"`
	PickupTime   string `json:"pickupTime"`
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseTotal reads a client total that may be a JSON number or a string
// such as "NaN". Absent or null yields nil.
func parseTotal(raw json.RawMessage) (*float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func (r checkoutRequest) toPlace(customerID primitive.ObjectID) (orders.PlaceRequest, string) {
	req := orders.PlaceRequest{
		CustomerID:    customerID,
		Name:          r.Name,
		PhoneNo:       r.PhoneNo,
		Email:         r.Email,
		PaymentMethod: r.PaymentMethod,
		SaveAddress:   r.SaveAddress,
		Items:         r.Items,
	}
	total, ok := parseTotal(r.TotalAmount)
	if !ok {
		return req, "totalAmount must be a number"
	}
	req.ClientTotal = total

	address, deliveryDate, deliveryTime := r.Address, r.DeliveryDate, r.DeliveryTime
	if d := r.CODDetails; d != nil {
		address, deliveryDate, deliveryTime = d.Address, d.DeliveryDate, d.DeliveryTime
	}
	if address != "" || deliveryDate != "" || deliveryTime != "" {
		date, ok := parseDate(deliveryDate)
		if !ok {
			return req, "Invalid delivery date"
		}
		req.COD = &models.CODDetails{Address: address, DeliveryDate: date, DeliveryTime: deliveryTime}
	}

	pickupDate, pickupTime := r.PickupDate, r.PickupTime
	if d := r.PickupDetails; d != nil {
		pickupDate, pickupTime = d.PickupDate, d.PickupTime
	}
	if pickupDate != "" || pickupTime != "" {
		date, ok := parseDate(pickupDate)
		if !ok {
			return req, "Invalid pickup date"
		}
		req.Pickup = &models.PickupDetails{PickupDate: date, PickupTime: pickupTime}
	}
	return req, ""
}

// Place checks out the caller's order. An empty items list falls back to
// the server-side cart.
func (oc *OrderController) Place(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var body checkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req, msg := body.toPlace(userID)
	if msg != "" {
		badRequest(c, msg)
		return
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	o, err := oc.orders.Place(ctx, req)
	if err != nil {
		oc.respondError(c, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "data": o})
}

func (oc *OrderController) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	list, err := oc.orders.ListByCustomer(ctx, userID)
	if err != nil {
		oc.respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": list})
}

func (oc *OrderController) Cancel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	o, err := oc.orders.Cancel(ctx, userID, id)
	if err != nil {
		oc.respondError(c, err, "Failed to cancel order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "data": o})
}
