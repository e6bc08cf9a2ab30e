package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/appointments"
	"alphastore/middleware"
	"alphastore/models"
)

type AppointmentService interface {
	Create(ctx context.Context, userID primitive.ObjectID, in appointments.CreateInput) (*models.Appointment, error)
	List(ctx context.Context) ([]models.Appointment, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Appointment, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	Update(ctx context.Context, id primitive.ObjectID, in appointments.UpdateInput) (*models.Appointment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AppointmentController struct {
	base
	svc AppointmentService
}

func NewAppointmentController(svc AppointmentService, lg *zap.Logger, timeout time.Duration) *AppointmentController {
	return &AppointmentController{base: newBase(lg, timeout), svc: svc}
}

func (ac *AppointmentController) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	createJSON(ac.base, c, func(ctx context.Context, in appointments.CreateInput) (*models.Appointment, error) {
		return ac.svc.Create(ctx, userID, in)
	}, "appointment")
}

func (ac *AppointmentController) List(c *gin.Context) {
	listAll(ac.base, c, ac.svc.List, "appointments")
}

func (ac *AppointmentController) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listAll(ac.base, c, func(ctx context.Context) ([]models.Appointment, error) {
		return ac.svc.ListByUser(ctx, userID)
	}, "appointments")
}

// Get serves an appointment to its owner or an admin.
func (ac *AppointmentController) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := ac.ctx(c)
	defer cancel()

	a, err := ac.svc.Get(ctx, id)
	if err != nil {
		ac.respondError(c, err, "Failed to fetch appointment")
		return
	}
	if a.UserID != userID && !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": a})
}

func (ac *AppointmentController) Update(c *gin.Context) {
	updateJSON(ac.base, c, ac.svc.Update, "appointment")
}

func (ac *AppointmentController) Delete(c *gin.Context) {
	deleteByID(ac.base, c, ac.svc.Delete, "appointment")
}
