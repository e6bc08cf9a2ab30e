package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/appointments"
	"alphastore/cart"
	"alphastore/database"
	"alphastore/inquiries"
	"alphastore/middleware"
	"alphastore/orders"
	"alphastore/reviews"
	"alphastore/uploads"
	"alphastore/validation"
)

// base carries what every controller needs.
type base struct {
	lg      *zap.Logger
	timeout time.Duration
}

func newBase(lg *zap.Logger, timeout time.Duration) base {
	if lg == nil {
		lg = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return base{lg: lg, timeout: timeout}
}

func (b base) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), b.timeout)
}

// status maps a domain error to an HTTP status code.
func status(err error) int {
	var (
		transition *orders.TransitionError
		fraud      *orders.FraudConfirmationError
		stock      *cart.InsufficientStockError
	)
	switch {
	case validation.Is(err),
		errors.Is(err, database.ErrInvalidID),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrNonFiniteTotal),
		errors.Is(err, cart.ErrItemType),
		errors.Is(err, cart.ErrUpdateType),
		errors.Is(err, uploads.ErrFileType):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrForbidden),
		errors.Is(err, reviews.ErrNotOwner),
		errors.Is(err, reviews.ErrEditWindow),
		errors.Is(err, reviews.ErrNotVerifiedBuyer),
		errors.Is(err, inquiries.ErrNotOwner),
		errors.Is(err, inquiries.ErrEditWindow):
		return http.StatusForbidden
	case errors.Is(err, database.ErrDuplicate),
		errors.Is(err, appointments.ErrSlotTaken),
		errors.Is(err, inquiries.ErrSimilarExists),
		errors.As(err, &transition),
		errors.As(err, &fraud),
		errors.As(err, &stock):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. Unexpected errors are
// logged and answered with a generic message.
func (b base) respondError(c *gin.Context, err error, msg string) {
	code := status(err)
	if code == http.StatusInternalServerError {
		b.lg.Error(msg,
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(code, gin.H{"error": msg})
		return
	}
	body := gin.H{"error": err.Error()}
	var fraud *orders.FraudConfirmationError
	if errors.As(err, &fraud) {
		body["requiresConfirmation"] = true
		body["fraudReason"] = fraud.Reason
	}
	c.JSON(code, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID parses the named path parameter as an object id, answering 400
// when it is malformed.
func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := database.ParseID(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUser returns the authenticated caller, answering 401 when the
// token carried no usable id.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
		return primitive.NilObjectID, false
	}
	return id, true
}
