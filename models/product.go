package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AvailabilityInStock    = "in stock"
	AvailabilityOutOfStock = "out of stock"
	AvailabilityPreOrder   = "pre-order"
)

const (
	StateNew         = "new"
	StateUsed        = "used"
	StateRefurbished = "refurbished"
)

// Spec is a single labelled attribute of a product or a cart line.
type Spec struct {
	Label string `bson:"label" json:"label"`
	Value string `bson:"value" json:"value"`
}

// Product is a catalog item. Stock is the displayed stock checked by the
// storefront; it is adjusted by inventory patches and never reserved.
type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Category          string             `bson:"category" json:"category"`
	Price             float64            `bson:"price" json:"price"`
	DiscountPrice     *float64           `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	Stock             int                `bson:"stock" json:"stock"`
	LowStockThreshold int                `bson:"lowStockThreshold" json:"lowStockThreshold"`
	Availability      string             `bson:"availability" json:"availability"`
	State             string             `bson:"state" json:"state"`
	Specs             []Spec             `bson:"specs" json:"specs"`
	Image             string             `bson:"image" json:"image"`
	Description       string             `bson:"description" json:"description"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LowStock reports whether the displayed stock reached the alert threshold.
func (p *Product) LowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

func ValidAvailability(s string) bool {
	switch s {
	case AvailabilityInStock, AvailabilityOutOfStock, AvailabilityPreOrder:
		return true
	}
	return false
}

func ValidState(s string) bool {
	switch s {
	case StateNew, StateUsed, StateRefurbished:
		return true
	}
	return false
}

// PreBuild is a pre-assembled custom PC offered as a single cart item.
type PreBuild struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Price       float64            `bson:"price" json:"price"`
	Components  []Spec             `bson:"components" json:"components"`
	Image       string             `bson:"image" json:"image"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
