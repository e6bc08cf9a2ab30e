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

	"alphastore/inquiries"
	"alphastore/models"
)

type InquiryService interface {
	Submit(ctx context.Context, userID primitive.ObjectID, in inquiries.SubmitInput, attachment *multipart.FileHeader) (*models.Inquiry, error)
	ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.Inquiry, error)
	ListAll(ctx context.Context) (*inquiries.Listing, error)
	Update(ctx context.Context, userID, id primitive.ObjectID, in inquiries.UpdateInput) (*models.Inquiry, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
	Resolve(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error)
	AddToFAQ(ctx context.Context, id primitive.ObjectID, answer string) (*models.FAQ, error)
}

type InquiryController struct {
	base
	svc InquiryService
}

func NewInquiryController(svc InquiryService, lg *zap.Logger, timeout time.Duration) *InquiryController {
	return &InquiryController{base: newBase(lg, timeout), svc: svc}
}

// Submit reads a multipart form with an optional "attachment" image.
func (ic *InquiryController) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	approval, _ := strconv.ParseBool(c.PostForm("userApproval"))
	in := inquiries.SubmitInput{
		FullName:          c.PostForm("fullName"),
		Email:             c.PostForm("email"),
		ContactNumber:     c.PostForm("contactNumber"),
		InquiryType:       c.PostForm("inquiryType"),
		ProductName:       c.PostForm("productName"),
		InquirySubject:    c.PostForm("inquirySubject"),
		AdditionalDetails: c.PostForm("additionalDetails"),
		UserApproval:      approval,
	}
	attachment, err := c.FormFile("attachment")
	if err != nil {
		attachment = nil
	}

	ctx, cancel := ic.ctx(c)
	defer cancel()

	q, err := ic.svc.Submit(ctx, userID, in, attachment)
	if err != nil {
		ic.respondError(c, err, "Failed to submit inquiry")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Inquiry submitted successfully", "data": q})
}

func (ic *InquiryController) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listAll(ic.base, c, func(ctx context.Context) ([]models.Inquiry, error) {
		return ic.svc.ListMine(ctx, userID)
	}, "inquiries")
}

// ListAll returns every inquiry plus the same set grouped by type.
func (ic *InquiryController) ListAll(c *gin.Context) {
	ctx, cancel := ic.ctx(c)
	defer cancel()

	l, err := ic.svc.ListAll(ctx)
	if err != nil {
		ic.respondError(c, err, "Failed to fetch inquiries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": l})
}

func (ic *InquiryController) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	updateJSON(ic.base, c, func(ctx context.Context, id primitive.ObjectID, in inquiries.UpdateInput) (*models.Inquiry, error) {
		return ic.svc.Update(ctx, userID, id, in)
	}, "inquiry")
}

func (ic *InquiryController) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	deleteByID(ic.base, c, func(ctx context.Context, id primitive.ObjectID) error {
		return ic.svc.Delete(ctx, userID, id)
	}, "inquiry")
}

func (ic *InquiryController) Resolve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := ic.ctx(c)
	defer cancel()

	q, err := ic.svc.Resolve(ctx, id)
	if err != nil {
		ic.respondError(c, err, "Failed to resolve inquiry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inquiry marked as resolved", "data": q})
}

// AddToFAQ takes {"answer": "..."}.
func (ic *InquiryController) AddToFAQ(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Answer string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	ctx, cancel := ic.ctx(c)
	defer cancel()

	f, err := ic.svc.AddToFAQ(ctx, id, body.Answer)
	if err != nil {
		ic.respondError(c, err, "Failed to add inquiry to FAQ")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Inquiry added to FAQ", "data": f})
}
