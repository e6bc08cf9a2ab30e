package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alphastore/models"
	"alphastore/orders"
)

// AdminList serves every order, optionally filtered by ?status=.
func (oc *OrderController) AdminList(c *gin.Context) {
	ctx, cancel := oc.ctx(c)
	defer cancel()

	list, err := oc.orders.List(ctx, models.OrderStatus(c.Query("status")))
	if err != nil {
		oc.respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": list})
}

func (oc *OrderController) AdminGet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	o, err := oc.orders.Get(ctx, id)
	if err != nil {
		oc.respondError(c, err, "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": o})
}

func (oc *OrderController) Stats(c *gin.Context) {
	ctx, cancel := oc.ctx(c)
	defer cancel()

	stats, err := oc.orders.Stats(ctx)
	if err != nil {
		oc.respondError(c, err, "Failed to fetch order stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": stats})
}

// UpdateStatus takes {"status", "confirmFraud"}. A fraud-flagged order
// without confirmation is answered with 409 and requiresConfirmation.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status       string `json:"status" binding:"required"`
		ConfirmFraud bool   `json:"confirmFraud"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "status is required")
		return
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	o, warnings, err := oc.orders.ChangeStatus(ctx, id, orders.ChangeStatusRequest{
		Status:       models.OrderStatus(body.Status),
		ConfirmFraud: body.ConfirmFraud,
	})
	if err != nil {
		oc.respondError(c, err, "Failed to update order status")
		return
	}
	resp := gin.H{"message": "Order status updated", "data": o}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func (oc *OrderController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	if _, err := oc.orders.Delete(ctx, id); err != nil {
		oc.respondError(c, err, "Failed to delete order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// Attach stores the multipart "file" field on the order.
func (oc *OrderController) Attach(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	o, err := oc.orders.AttachFile(ctx, id, fh)
	if err != nil {
		oc.respondError(c, err, "Failed to attach file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File attached", "data": o})
}
