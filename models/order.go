package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderApproved   OrderStatus = "Approved"
	OrderCancelled  OrderStatus = "Cancelled"
	OrderHandedOver OrderStatus = "handedOver"
)

const (
	PaymentCOD    = "COD"
	PaymentPickup = "Pickup"
)

type CODDetails struct {
	Address      string    `bson:"address" json:"address"`
	DeliveryDate time.Time `bson:"deliveryDate" json:"deliveryDate"`
	DeliveryTime string    `bson:"deliveryTime" json:"deliveryTime"`
}

type PickupDetails struct {
	PickupDate time.Time `bson:"pickupDate" json:"pickupDate"`
	PickupTime string    `bson:"pickupTime" json:"pickupTime"`
}

// Order is the persisted checkout record (a "success order").
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	Name          string             `bson:"name" json:"name"`
	PhoneNo       string             `bson:"phoneNo" json:"phoneNo"`
	Email         string             `bson:"email" json:"email"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	CODDetails    *CODDetails        `bson:"codDetails,omitempty" json:"codDetails,omitempty"`
	PickupDetails *PickupDetails     `bson:"pickupDetails,omitempty" json:"pickupDetails,omitempty"`
	SaveAddress   bool               `bson:"saveAddress" json:"saveAddress"`
	Items         []CartLine         `bson:"items" json:"items"`
	Subtotal      float64            `bson:"subtotal" json:"subtotal"`
	Tax           float64            `bson:"tax" json:"tax"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	Status        OrderStatus        `bson:"status" json:"status"`
	IsFraudulent  bool               `bson:"isFraudulent" json:"isFraudulent"`
	FraudReason   string             `bson:"fraudReason" json:"fraudReason"`
	Attachments   []string           `bson:"attachments" json:"attachments"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderStat aggregates the orders sharing one status.
type OrderStat struct {
	Status  OrderStatus `bson:"_id" json:"status"`
	Count   int64       `bson:"count" json:"count"`
	Revenue float64     `bson:"revenue" json:"revenue"`
}
